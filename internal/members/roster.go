package members

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"propertypal/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrBedUnavailable = errors.New("bed unavailable")
	ErrInvalidMember  = errors.New("invalid member")
	ErrNotFound       = errors.New("member not found")
)

// MembersAPI backend for the member list.
type MembersAPI interface {
	List(ctx context.Context, propertyID string) ([]domain.Member, error)
	Create(ctx context.Context, in domain.MemberInput) (*domain.Member, error)
	Update(ctx context.Context, id string, patch domain.MemberPatch) (*domain.Member, error)
	Remove(ctx context.Context, id string) error
}

// Occupancy the hierarchy view the roster checks and keeps in sync.
type Occupancy interface {
	BedOccupied(path domain.BedPath) (occupied, found bool)
	SyncBedOccupancyWithMembers(ctx context.Context, members []domain.Member)
}

// Roster member list and bed assignments. Member assignments are the source
// of truth for bed occupancy; every change re-syncs the hierarchy from the
// full roster, so the roster should be loaded unfiltered.
type Roster struct {
	api       MembersAPI
	occupancy Occupancy
	logger    *zap.Logger

	mu      sync.Mutex
	members []domain.Member
}

func New(api MembersAPI, occupancy Occupancy, logger *zap.Logger) *Roster {
	return &Roster{api: api, occupancy: occupancy, logger: logger}
}

// Load fetches members ("" = all properties) and re-syncs occupancy. On
// failure the roster is emptied and an empty list returned.
func (r *Roster) Load(ctx context.Context, propertyID string) []domain.Member {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.api.List(ctx, propertyID)
	if err != nil {
		r.logger.Error("Failed to load members", zap.String("property_id", propertyID), zap.Error(err))
		list = nil
	}
	r.members = append([]domain.Member{}, list...)
	r.syncLocked(ctx)
	return r.copyLocked("")
}

// AssignBed creates a member on a free bed.
func (r *Roster) AssignBed(ctx context.Context, in domain.MemberInput) (*domain.Member, error) {
	if err := domain.ValidateMemberInput(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMember, err)
	}
	path, ok := in.Assignment()
	if !ok {
		return nil, fmt.Errorf("%w: property, building, floor, room and bed are required", ErrBedUnavailable)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFree(path, ""); err != nil {
		return nil, err
	}

	created, err := r.api.Create(ctx, in)
	if err != nil {
		r.logger.Error("Failed to add member", zap.String("name", in.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	r.members = append(r.members, *created)
	r.syncLocked(ctx)

	r.logger.Info("Bed assigned",
		zap.String("member_id", created.ID),
		zap.String("property_id", path.PropertyID),
		zap.String("room_id", path.RoomID),
		zap.String("bed_id", path.BedID),
	)
	out := *created
	return &out, nil
}

// UpdateMember applies patch. Moving to another bed requires it to be free;
// an empty bed path releases the current bed.
func (r *Roster) UpdateMember(ctx context.Context, id string, patch domain.MemberPatch) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if patch.Bed != nil && *patch.Bed != (domain.BedPath{}) {
		if !patch.Bed.Complete() {
			return nil, fmt.Errorf("%w: incomplete bed path", ErrBedUnavailable)
		}
		if err := r.checkFree(*patch.Bed, id); err != nil {
			return nil, err
		}
	}

	updated, err := r.api.Update(ctx, id, patch)
	if err != nil {
		r.logger.Error("Failed to update member", zap.String("member_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	if i := r.indexOf(id); i >= 0 {
		r.members[i] = *updated
	} else {
		r.members = append(r.members, *updated)
	}
	r.syncLocked(ctx)

	out := *updated
	return &out, nil
}

// RemoveMember deletes the member and frees its bed.
func (r *Roster) RemoveMember(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.api.Remove(ctx, id); err != nil {
		r.logger.Error("Failed to remove member", zap.String("member_id", id), zap.Error(err))
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if i := r.indexOf(id); i >= 0 {
		r.members = append(r.members[:i], r.members[i+1:]...)
	}
	r.syncLocked(ctx)
	return nil
}

// Members returns a copy of the roster, optionally limited to one property.
func (r *Roster) Members(propertyID string) []domain.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyLocked(propertyID)
}

// Member returns one member by id.
func (r *Roster) Member(id string) (domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return domain.Member{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.members[i], nil
}

// checkFree fails unless path resolves to a bed that is empty or already
// held by memberID.
func (r *Roster) checkFree(path domain.BedPath, memberID string) error {
	occupied, found := r.occupancy.BedOccupied(path)
	if !found {
		return fmt.Errorf("%w: bed %s in room %s does not exist", ErrBedUnavailable, path.BedID, path.RoomID)
	}
	if !occupied {
		return nil
	}
	if memberID != "" {
		if i := r.indexOf(memberID); i >= 0 {
			if current, ok := r.members[i].Assignment(); ok && current == path {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: bed %s in room %s is occupied", ErrBedUnavailable, path.BedID, path.RoomID)
}

func (r *Roster) syncLocked(ctx context.Context) {
	r.occupancy.SyncBedOccupancyWithMembers(ctx, r.members)
}

func (r *Roster) indexOf(id string) int {
	for i := range r.members {
		if r.members[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Roster) copyLocked(propertyID string) []domain.Member {
	out := make([]domain.Member, 0, len(r.members))
	for _, m := range r.members {
		if propertyID == "" || m.PropertyID == propertyID {
			out = append(out, m)
		}
	}
	return out
}
