package client

import (
	"context"
	"net/http"
	"net/url"

	"propertypal/internal/domain"
)

// PropertiesClient remote Properties API.
// Legacy payload shapes are normalized by domain.Property's decoder.
type PropertiesClient struct {
	api *APIClient
}

func NewPropertiesClient(api *APIClient) *PropertiesClient {
	return &PropertiesClient{api: api}
}

func (c *PropertiesClient) List(ctx context.Context) ([]domain.Property, error) {
	var out []domain.Property
	if err := c.api.Do(ctx, http.MethodGet, "/properties", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PropertiesClient) Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error) {
	var out domain.Property
	if err := c.api.Do(ctx, http.MethodPost, "/properties", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PropertiesClient) Update(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	var out domain.Property
	if err := c.api.Do(ctx, http.MethodPatch, "/properties/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PropertiesClient) Remove(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/properties/"+url.PathEscape(id), nil, nil)
}
