package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rediscommon "propertypal/common/redis"

	"go.uber.org/zap"
)

const (
	TypePropertyCreated = "property.created"
	TypePropertyUpdated = "property.updated"
	TypePropertyRemoved = "property.removed"
	TypeOccupancySynced = "occupancy.synced"
)

// Event change notification emitted by the hierarchy store.
type Event struct {
	Type       string    `json:"type"`
	PropertyID string    `json:"propertyId,omitempty"`
	At         time.Time `json:"at"`
	Data       any       `json:"data,omitempty"`
}

// Publisher delivers events. Callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// mqttClient subset of common/mqtt.Client
type mqttClient interface {
	Publish(topic string, retained bool, payload []byte) error
}

// MQTTPublisher publishes each event as JSON on <topic>/<type>.
type MQTTPublisher struct {
	client mqttClient
	topic  string
}

func NewMQTTPublisher(client mqttClient, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

func (p *MQTTPublisher) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.client.Publish(p.topic+"/"+ev.Type, false, payload)
}

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	client *rediscommon.Client
	stream string
	logger *zap.Logger
}

func NewStreamPublisher(client *rediscommon.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, logger: logger}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev Event) error {
	values := map[string]interface{}{
		"type": ev.Type,
		"at":   ev.At.UTC().Format(time.RFC3339),
	}
	if ev.PropertyID != "" {
		values["property_id"] = ev.PropertyID
	}
	if ev.Data != nil {
		values["data"] = ev.Data
	}
	id, err := rediscommon.PublishToStream(ctx, p.client, p.stream, values)
	if err != nil {
		return err
	}
	p.logger.Debug("Event published to stream",
		zap.String("stream", p.stream),
		zap.String("type", ev.Type),
		zap.String("message_id", id),
	)
	return nil
}
