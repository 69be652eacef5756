package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"propertypal/internal/domain"
	"propertypal/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultKey KV slot holding the single draft.
const DefaultKey = "propertypal:wizard:draft"

// Committer receives the finished draft.
type Committer interface {
	AddProperty(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error)
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithKey overrides the draft KV key.
func WithKey(key string) Option {
	return func(w *Wizard) { w.key = key }
}

// Wizard ordered, resumable property builder. Every mutation persists the
// whole draft; persistence failures are logged and do not fail the mutation.
type Wizard struct {
	kv        store.KV
	committer Committer
	logger    *zap.Logger
	key       string
	newID     func() string

	mu    sync.Mutex
	state State
}

// New creates a wizard with an empty draft. Call Load to resume a saved one.
func New(kv store.KV, committer Committer, logger *zap.Logger, opts ...Option) *Wizard {
	w := &Wizard{
		kv:        kv,
		committer: committer,
		logger:    logger,
		key:       DefaultKey,
		newID:     uuid.NewString,
		state:     initialState(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ============================================
// Persistence
// ============================================

// Load restores the persisted draft. A missing or unreadable draft leaves the
// current state untouched.
func (w *Wizard) Load(ctx context.Context) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, err := w.kv.Get(ctx, w.key)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			w.logger.Error("Failed to load wizard state", zap.String("key", w.key), zap.Error(err))
		}
		return w.state.Clone()
	}

	loaded := initialState()
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		w.logger.Error("Failed to decode wizard state", zap.String("key", w.key), zap.Error(err))
		return w.state.Clone()
	}
	loaded.CurrentStep = clampStep(loaded.CurrentStep)
	if loaded.Buildings == nil {
		loaded.Buildings = []domain.Building{}
	}
	if loaded.AllowedBedCounts == nil {
		loaded.AllowedBedCounts = []int{}
	}
	if loaded.BedPricing == nil {
		loaded.BedPricing = []domain.BedPricing{}
	}
	w.state = loaded
	return w.state.Clone()
}

// Save writes the current draft.
func (w *Wizard) Save(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.persist(ctx)
}

// persist callers hold mu.
func (w *Wizard) persist(ctx context.Context) {
	data, err := json.Marshal(w.state)
	if err != nil {
		w.logger.Error("Failed to encode wizard state", zap.Error(err))
		return
	}
	if err := w.kv.Set(ctx, w.key, string(data), 0); err != nil {
		w.logger.Error("Failed to save wizard state", zap.String("key", w.key), zap.Error(err))
	}
}

// State returns a copy of the draft.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

// mutate applies fn under the lock and persists on success.
func (w *Wizard) mutate(ctx context.Context, fn func(s *State) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	w.state = next
	w.persist(ctx)
	return nil
}

// ============================================
// Navigation
// ============================================

// NextStep advances one step when the current step's gate passes.
func (w *Wizard) NextStep(ctx context.Context) error {
	return w.mutate(ctx, func(s *State) error {
		if s.CurrentStep >= lastStep {
			return ErrLastStep
		}
		if err := s.validate(s.CurrentStep); err != nil {
			return err
		}
		s.CurrentStep++
		return nil
	})
}

// PreviousStep goes back one step, never below the first.
func (w *Wizard) PreviousStep(ctx context.Context) {
	_ = w.mutate(ctx, func(s *State) error {
		s.CurrentStep = clampStep(s.CurrentStep - 1)
		return nil
	})
}

// SetCurrentStep jumps to step, clamped to the valid range.
func (w *Wizard) SetCurrentStep(ctx context.Context, step Step) {
	_ = w.mutate(ctx, func(s *State) error {
		s.CurrentStep = clampStep(step)
		return nil
	})
}

// ============================================
// Details
// ============================================

// UpdatePropertyDetails merges patch into the details without validating.
func (w *Wizard) UpdatePropertyDetails(ctx context.Context, patch PropertyDetailsPatch) {
	_ = w.mutate(ctx, func(s *State) error {
		s.applyDetails(patch)
		return nil
	})
}

// ============================================
// Buildings
// ============================================

func (w *Wizard) AddBuilding(ctx context.Context, name string) (domain.Building, error) {
	b := domain.Building{ID: w.newID(), Name: strings.TrimSpace(name), Floors: []domain.Floor{}}
	err := w.mutate(ctx, func(s *State) error {
		s.Buildings = append(s.Buildings, b)
		return nil
	})
	return b, err
}

func (w *Wizard) UpdateBuilding(ctx context.Context, id, name string) error {
	return w.mutate(ctx, func(s *State) error {
		b, err := s.building(id)
		if err != nil {
			return err
		}
		b.Name = strings.TrimSpace(name)
		return nil
	})
}

func (w *Wizard) RemoveBuilding(ctx context.Context, id string) error {
	return w.mutate(ctx, func(s *State) error {
		for i := range s.Buildings {
			if s.Buildings[i].ID == id {
				s.Buildings = append(s.Buildings[:i], s.Buildings[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: building %s", ErrNotFound, id)
	})
}

// ============================================
// Floors
// ============================================

// AddFloor appends a floor. Labels are free text and may repeat; floors are
// addressed by ID.
func (w *Wizard) AddFloor(ctx context.Context, buildingID, label string) (domain.Floor, error) {
	f := domain.Floor{ID: w.newID(), Label: strings.TrimSpace(label), Rooms: []domain.Room{}}
	err := w.mutate(ctx, func(s *State) error {
		b, err := s.building(buildingID)
		if err != nil {
			return err
		}
		b.Floors = append(b.Floors, f)
		return nil
	})
	return f, err
}

func (w *Wizard) UpdateFloor(ctx context.Context, buildingID, floorID, label string) error {
	label = strings.TrimSpace(label)
	return w.mutate(ctx, func(s *State) error {
		f, err := s.floor(buildingID, floorID)
		if err != nil {
			return err
		}
		f.Label = label
		return nil
	})
}

func (w *Wizard) RemoveFloor(ctx context.Context, buildingID, floorID string) error {
	return w.mutate(ctx, func(s *State) error {
		b, err := s.building(buildingID)
		if err != nil {
			return err
		}
		for i := range b.Floors {
			if b.Floors[i].ID == floorID {
				b.Floors = append(b.Floors[:i], b.Floors[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: floor %s in building %s", ErrNotFound, floorID, buildingID)
	})
}

// ============================================
// Rooms
// ============================================

// AddRoom appends a room with beds "B1".."Bn" derived from share. The bed list
// is fixed at creation.
func (w *Wizard) AddRoom(ctx context.Context, buildingID, floorID, roomNumber string, share domain.ShareType) (domain.Room, error) {
	rooms, err := w.AddRooms(ctx, buildingID, floorID, []string{roomNumber}, share)
	if err != nil {
		return domain.Room{}, err
	}
	return rooms[0], nil
}

// AddRooms appends several rooms of one share type. Either all are added or none.
func (w *Wizard) AddRooms(ctx context.Context, buildingID, floorID string, roomNumbers []string, share domain.ShareType) ([]domain.Room, error) {
	if len(roomNumbers) == 0 {
		return nil, fmt.Errorf("%w: no room numbers", ErrValidation)
	}
	rooms := make([]domain.Room, 0, len(roomNumbers))
	for _, number := range roomNumbers {
		number = strings.TrimSpace(number)
		if number == "" {
			return nil, fmt.Errorf("%w: room number is required", ErrValidation)
		}
		beds, err := domain.GenerateBeds(share)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, domain.Room{ID: w.newID(), RoomNumber: number, ShareType: share, Beds: beds})
	}

	err := w.mutate(ctx, func(s *State) error {
		f, err := s.floor(buildingID, floorID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(f.Rooms)+len(rooms))
		for _, r := range f.Rooms {
			seen[r.RoomNumber] = true
		}
		for _, r := range rooms {
			if seen[r.RoomNumber] {
				return fmt.Errorf("%w: room %s on floor %s", ErrDuplicate, r.RoomNumber, f.Label)
			}
			seen[r.RoomNumber] = true
		}
		f.Rooms = append(f.Rooms, rooms...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// RenameRoom changes a room number, keeping it unique on the floor.
func (w *Wizard) RenameRoom(ctx context.Context, buildingID, floorID, roomID, roomNumber string) error {
	roomNumber = strings.TrimSpace(roomNumber)
	if roomNumber == "" {
		return fmt.Errorf("%w: room number is required", ErrValidation)
	}
	return w.mutate(ctx, func(s *State) error {
		f, err := s.floor(buildingID, floorID)
		if err != nil {
			return err
		}
		var target *domain.Room
		for i := range f.Rooms {
			r := &f.Rooms[i]
			if r.ID == roomID {
				target = r
				continue
			}
			if r.RoomNumber == roomNumber {
				return fmt.Errorf("%w: room %s on floor %s", ErrDuplicate, roomNumber, f.Label)
			}
		}
		if target == nil {
			return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
		}
		target.RoomNumber = roomNumber
		return nil
	})
}

func (w *Wizard) RemoveRoom(ctx context.Context, buildingID, floorID, roomID string) error {
	return w.mutate(ctx, func(s *State) error {
		f, err := s.floor(buildingID, floorID)
		if err != nil {
			return err
		}
		for i := range f.Rooms {
			if f.Rooms[i].ID == roomID {
				f.Rooms = append(f.Rooms[:i], f.Rooms[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	})
}

// ============================================
// Share types and pricing
// ============================================

// UpdateAllowedBedCounts replaces the allowed share sizes. Values must be 1..7.
func (w *Wizard) UpdateAllowedBedCounts(ctx context.Context, counts []int) error {
	for _, n := range counts {
		if n < minBedCount || n > maxBedCount {
			return fmt.Errorf("%w: bed count %d outside %d..%d", ErrValidation, n, minBedCount, maxBedCount)
		}
	}
	return w.mutate(ctx, func(s *State) error {
		s.AllowedBedCounts = append([]int{}, counts...)
		return nil
	})
}

// UpdateBedPricing replaces the draft's pricing table.
func (w *Wizard) UpdateBedPricing(ctx context.Context, pricing []domain.BedPricing) error {
	for _, p := range pricing {
		if p.BedCount < minBedCount || p.BedCount > maxBedCount {
			return fmt.Errorf("%w: bed count %d outside %d..%d", ErrValidation, p.BedCount, minBedCount, maxBedCount)
		}
		if p.DailyPrice < 0 || p.MonthlyPrice < 0 {
			return fmt.Errorf("%w: negative price for %d-bed share", ErrValidation, p.BedCount)
		}
	}
	return w.mutate(ctx, func(s *State) error {
		s.BedPricing = append([]domain.BedPricing{}, pricing...)
		return nil
	})
}

// ============================================
// Lifecycle
// ============================================

// EditProperty replaces the draft with an existing property. Commit then
// updates that property instead of creating a new one.
func (w *Wizard) EditProperty(ctx context.Context, p domain.Property) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = State{
		CurrentStep:       firstStep,
		PropertyDetails:   p.Details(),
		Buildings:         domain.CloneBuildings(p.Buildings),
		AllowedBedCounts:  bedCountsOf(p),
		BedPricing:        append([]domain.BedPricing{}, p.BedPricing...),
		EditingPropertyID: p.ID,
	}
	w.persist(ctx)
	return w.state.Clone()
}

// Reset restores the initial draft and deletes the persisted one.
func (w *Wizard) Reset(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset(ctx)
}

func (w *Wizard) reset(ctx context.Context) {
	w.state = initialState()
	if err := w.kv.Delete(ctx, w.key); err != nil {
		w.logger.Error("Failed to delete wizard state", zap.String("key", w.key), zap.Error(err))
	}
}

// Commit creates (or, in edit mode, updates) the property from the draft.
// Only allowed at the confirm step with a fully valid draft. The draft is
// cleared on success and kept on failure.
func (w *Wizard) Commit(ctx context.Context) (*domain.Property, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.CurrentStep != lastStep {
		return nil, &ValidationError{
			Step:    w.state.CurrentStep,
			Reasons: []string{fmt.Sprintf("commit is only allowed at the %s step", lastStep)},
		}
	}
	if err := w.state.validate(lastStep); err != nil {
		return nil, err
	}

	var (
		p   *domain.Property
		err error
	)
	if w.state.Editing() {
		p, err = w.committer.UpdateProperty(ctx, w.state.EditingPropertyID, w.state.patch())
	} else {
		p, err = w.committer.AddProperty(ctx, w.state.input())
	}
	if err != nil {
		w.logger.Error("Wizard commit failed",
			zap.String("editing_property_id", w.state.EditingPropertyID),
			zap.Error(err),
		)
		return nil, err
	}

	w.logger.Info("Wizard committed",
		zap.String("property_id", p.ID),
		zap.Int("total_rooms", p.TotalRooms),
		zap.Int("total_beds", p.TotalBeds),
	)
	w.reset(ctx)
	return p, nil
}

// bedCountsOf distinct room sizes of p, ascending.
func bedCountsOf(p domain.Property) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, b := range p.Buildings {
		for _, f := range b.Floors {
			for _, r := range f.Rooms {
				n := len(r.Beds)
				if n > 0 && !seen[n] {
					seen[n] = true
					out = append(out, n)
				}
			}
		}
	}
	sort.Ints(out)
	return out
}
