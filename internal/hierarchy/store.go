package hierarchy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"propertypal/internal/domain"
	"propertypal/internal/events"

	"go.uber.org/zap"
)

// PropertiesAPI backend the store reads from and writes through.
type PropertiesAPI interface {
	List(ctx context.Context) ([]domain.Property, error)
	Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error)
	Remove(ctx context.Context, id string) error
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher sends change events to p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// Store canonical in-memory property hierarchy plus the active property.
//
// Reads never touch the network. LoadProperties degrades to an empty
// collection on failure; create/update/remove return backend errors.
// Network operations are serialized so at most one is in flight.
type Store struct {
	api       PropertiesAPI
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time

	opMu sync.Mutex

	mu         sync.RWMutex
	properties []domain.Property
	activeID   string
}

// New creates an empty Store.
func New(api PropertiesAPI, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		api:       api,
		publisher: events.Nop{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================
// Network operations
// ============================================

// LoadProperties replaces the collection with the backend's. On failure the
// collection and active id are cleared and an empty list is returned.
func (s *Store) LoadProperties(ctx context.Context) []domain.Property {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	list, err := s.api.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load properties", zap.Error(err))
		s.mu.Lock()
		s.properties = nil
		s.activeID = ""
		s.mu.Unlock()
		return []domain.Property{}
	}

	loaded := make([]domain.Property, 0, len(list))
	for _, p := range list {
		loaded = append(loaded, normalize(p))
	}

	s.mu.Lock()
	s.properties = loaded
	if s.indexOf(s.activeID) < 0 {
		s.activeID = ""
		if len(loaded) > 0 {
			s.activeID = loaded[0].ID
		}
	}
	out := s.snapshot()
	s.mu.Unlock()

	s.logger.Info("Properties loaded", zap.Int("count", len(out)))
	return out
}

// AddProperty creates a property on the backend and appends the result.
// It becomes active when no property was active.
func (s *Store) AddProperty(ctx context.Context, in domain.PropertyInput) (*domain.Property, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	in.Type = domain.NormalizePropertyType(in.Type)
	in.TotalRooms, in.TotalBeds = domain.CountRoomsAndBeds(in.Buildings)
	if in.BedPricing == nil {
		in.BedPricing = []domain.BedPricing{}
	}

	created, err := s.api.Create(ctx, in)
	if err != nil {
		s.logger.Error("Failed to add property", zap.String("name", in.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to add property: %w", err)
	}
	p := normalize(*created)

	s.mu.Lock()
	s.properties = append(s.properties, p)
	if s.activeID == "" {
		s.activeID = p.ID
	}
	s.mu.Unlock()

	s.publish(ctx, events.TypePropertyCreated, p.ID, domain.Summarize(&p))
	out := p.Clone()
	return &out, nil
}

// RemoveProperty deletes on the backend, then locally. When the removed
// property was active the first remaining one (or none) becomes active.
func (s *Store) RemoveProperty(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.api.Remove(ctx, id); err != nil {
		s.logger.Error("Failed to remove property", zap.String("property_id", id), zap.Error(err))
		return fmt.Errorf("failed to remove property: %w", err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.properties = append(s.properties[:i], s.properties[i+1:]...)
	}
	if s.activeID == id {
		s.activeID = ""
		if len(s.properties) > 0 {
			s.activeID = s.properties[0].ID
		}
	}
	s.mu.Unlock()

	s.publish(ctx, events.TypePropertyRemoved, id, nil)
	return nil
}

// UpdateProperty sends patch to the backend and replaces the local entry with
// the server's response. Nothing is merged locally.
func (s *Store) UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("Failed to update property", zap.String("property_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	p := normalize(*updated)

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.properties[i] = p
	}
	s.mu.Unlock()

	s.publish(ctx, events.TypePropertyUpdated, p.ID, domain.Summarize(&p))
	out := p.Clone()
	return &out, nil
}

// ============================================
// Local operations
// ============================================

// SetActiveProperty switches the active property; "" clears it.
func (s *Store) SetActiveProperty(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
}

// UpdateBedOccupancy sets one bed's flag. A miss anywhere along path is a
// no-op and returns false.
func (s *Store) UpdateBedOccupancy(path domain.BedPath, occupied bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(path.PropertyID)
	if i < 0 {
		return false
	}
	bed, ok := s.properties[i].FindBed(path)
	if !ok {
		return false
	}
	bed.Occupied = occupied
	return true
}

// SyncBedOccupancyWithMembers marks exactly the beds referenced by a full
// member assignment as occupied. Members with partial assignments are ignored.
func (s *Store) SyncBedOccupancyWithMembers(ctx context.Context, members []domain.Member) {
	assigned := make(map[domain.BedPath]struct{}, len(members))
	for _, m := range members {
		if path, ok := m.Assignment(); ok {
			assigned[path] = struct{}{}
		}
	}

	changed, occupied := 0, 0
	s.mu.Lock()
	for i := range s.properties {
		s.properties[i].WalkBeds(func(path domain.BedPath, _ *domain.Room, bed *domain.Bed) {
			_, want := assigned[path]
			if bed.Occupied != want {
				bed.Occupied = want
				changed++
			}
			if want {
				occupied++
			}
		})
	}
	s.mu.Unlock()

	if changed > 0 {
		s.logger.Debug("Bed occupancy synced", zap.Int("changed", changed), zap.Int("occupied", occupied))
		s.publish(ctx, events.TypeOccupancySynced, "", map[string]int{
			"changed":  changed,
			"occupied": occupied,
		})
	}
}

// ============================================
// Reads
// ============================================

// Properties returns a deep copy of the collection in backend order.
func (s *Store) Properties() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Property returns a copy of one property.
func (s *Store) Property(id string) (domain.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Property{}, false
	}
	return s.properties[i].Clone(), true
}

func (s *Store) ActivePropertyID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveProperty returns nil when no property is active or the active id is unknown.
func (s *Store) ActiveProperty() *domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(s.activeID)
	if i < 0 {
		return nil
	}
	p := s.properties[i].Clone()
	return &p
}

// Summary counts buildings, floors, rooms and beds of one property.
func (s *Store) Summary(id string) (domain.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Summary{}, false
	}
	return domain.Summarize(&s.properties[i]), true
}

// AvailableBeds lists the unoccupied beds of one property in hierarchy order.
func (s *Store) AvailableBeds(id string) []domain.BedPath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.BedPath{}
	i := s.indexOf(id)
	if i < 0 {
		return out
	}
	s.properties[i].WalkBeds(func(path domain.BedPath, _ *domain.Room, bed *domain.Bed) {
		if !bed.Occupied {
			out = append(out, path)
		}
	})
	return out
}

// BedOccupied reports the bed's flag; found is false when the path does not resolve.
func (s *Store) BedOccupied(path domain.BedPath) (occupied, found bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(path.PropertyID)
	if i < 0 {
		return false, false
	}
	bed, ok := s.properties[i].FindBed(path)
	if !ok {
		return false, false
	}
	return bed.Occupied, true
}

// indexOf callers hold mu.
func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.properties {
		if s.properties[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshot callers hold mu.
func (s *Store) snapshot() []domain.Property {
	out := make([]domain.Property, len(s.properties))
	for i, p := range s.properties {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) publish(ctx context.Context, typ, propertyID string, data any) {
	ev := events.Event{Type: typ, PropertyID: propertyID, At: s.now().UTC(), Data: data}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("type", typ),
			zap.String("property_id", propertyID),
			zap.Error(err),
		)
	}
}

// normalize returns a detached copy with canonical type, non-nil pricing and
// recomputed totals.
func normalize(p domain.Property) domain.Property {
	out := p.Clone()
	out.Type = domain.NormalizePropertyType(out.Type)
	if p.BedPricing == nil {
		out.BedPricing = []domain.BedPricing{}
	}
	if out.Buildings == nil {
		out.Buildings = []domain.Building{}
	}
	domain.Recompute(&out)
	return out
}
