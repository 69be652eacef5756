package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"propertypal/internal/domain"
	"propertypal/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyService local properties backend. It satisfies the same contract as
// the remote REST API.
type PropertyService interface {
	List(ctx context.Context) ([]domain.Property, error)
	Get(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error)
	Remove(ctx context.Context, id string) error
}

type propertyService struct {
	repo   repository.PropertiesRepository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewPropertyService creates a PropertyService over repo.
func NewPropertyService(repo repository.PropertiesRepository, logger *zap.Logger) PropertyService {
	return &propertyService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *propertyService) List(ctx context.Context) ([]domain.Property, error) {
	list, err := s.repo.ListProperties(ctx)
	if err != nil {
		s.logger.Error("ListProperties failed", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *propertyService) Get(ctx context.Context, id string) (*domain.Property, error) {
	return s.repo.GetProperty(ctx, id)
}

// Create stores a new property. Ids missing anywhere in the hierarchy are
// generated, rooms without beds get beds from their share type, and totals
// are recomputed regardless of the input.
func (s *propertyService) Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error) {
	// 1. Build
	p := domain.Property{
		ID:         s.newID(),
		Name:       strings.TrimSpace(in.Name),
		Type:       domain.NormalizePropertyType(in.Type),
		City:       strings.TrimSpace(in.City),
		Area:       strings.TrimSpace(in.Area),
		Buildings:  domain.CloneBuildings(in.Buildings),
		BedPricing: append([]domain.BedPricing{}, in.BedPricing...),
		CreatedAt:  s.now().UTC().Format(time.RFC3339Nano),
	}

	// 2. Validate
	if reasons := domain.ValidateDetails(p.Details()); len(reasons) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(reasons, "; "))
	}
	if err := s.fillHierarchy(p.Buildings); err != nil {
		return nil, err
	}
	domain.Recompute(&p)

	// 3. Persist
	if err := s.repo.SaveProperty(ctx, &p); err != nil {
		s.logger.Error("SaveProperty failed", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Property created",
		zap.String("property_id", p.ID),
		zap.Int("total_rooms", p.TotalRooms),
		zap.Int("total_beds", p.TotalBeds),
	)
	return &p, nil
}

// Update applies patch to the stored property. ID and CreatedAt never change.
func (s *propertyService) Update(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(patch)
	p.Name = strings.TrimSpace(p.Name)
	p.City = strings.TrimSpace(p.City)

	if reasons := domain.ValidateDetails(p.Details()); len(reasons) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(reasons, "; "))
	}
	if err := s.fillHierarchy(p.Buildings); err != nil {
		return nil, err
	}
	domain.Recompute(p)

	if err := s.repo.SaveProperty(ctx, p); err != nil {
		s.logger.Error("SaveProperty failed", zap.String("property_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *propertyService) Remove(ctx context.Context, id string) error {
	if err := s.repo.DeleteProperty(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Property removed", zap.String("property_id", id))
	return nil
}

// fillHierarchy assigns missing ids in place and derives missing beds.
func (s *propertyService) fillHierarchy(buildings []domain.Building) error {
	for bi := range buildings {
		b := &buildings[bi]
		if b.ID == "" {
			b.ID = s.newID()
		}
		if b.Floors == nil {
			b.Floors = []domain.Floor{}
		}
		for fi := range b.Floors {
			f := &b.Floors[fi]
			if f.ID == "" {
				f.ID = s.newID()
			}
			if f.Rooms == nil {
				f.Rooms = []domain.Room{}
			}
			for ri := range f.Rooms {
				r := &f.Rooms[ri]
				if r.ID == "" {
					r.ID = s.newID()
				}
				if len(r.Beds) == 0 {
					beds, err := domain.GenerateBeds(r.ShareType)
					if err != nil {
						return fmt.Errorf("%w: room %s: %v", ErrInvalidInput, r.RoomNumber, err)
					}
					r.Beds = beds
				}
				for i := range r.Beds {
					if r.Beds[i].ID == "" {
						r.Beds[i].ID = fmt.Sprintf("B%d", i+1)
					}
				}
			}
		}
	}
	return nil
}
