package service

import (
	"context"
	"fmt"
	"time"

	"propertypal/internal/domain"
	"propertypal/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberService local members backend.
type MemberService interface {
	List(ctx context.Context, propertyID string) ([]domain.Member, error)
	Get(ctx context.Context, id string) (*domain.Member, error)
	Create(ctx context.Context, in domain.MemberInput) (*domain.Member, error)
	Update(ctx context.Context, id string, patch domain.MemberPatch) (*domain.Member, error)
	Remove(ctx context.Context, id string) error
}

type memberService struct {
	members    repository.MembersRepository
	properties repository.PropertiesRepository
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewMemberService creates a MemberService. properties is used to check that
// assigned beds exist.
func NewMemberService(members repository.MembersRepository, properties repository.PropertiesRepository, logger *zap.Logger) MemberService {
	return &memberService{
		members:    members,
		properties: properties,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *memberService) List(ctx context.Context, propertyID string) ([]domain.Member, error) {
	return s.members.ListMembers(ctx, propertyID)
}

func (s *memberService) Get(ctx context.Context, id string) (*domain.Member, error) {
	return s.members.GetMember(ctx, id)
}

// Create validates in and, when a bed is given, checks that it exists and no
// other member holds it.
func (s *memberService) Create(ctx context.Context, in domain.MemberInput) (*domain.Member, error) {
	if err := domain.ValidateMemberInput(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	m := in.ToMember()
	if err := s.checkBed(ctx, m, ""); err != nil {
		return nil, err
	}

	m.ID = s.newID()
	m.CreatedAt = s.now().UTC().Format(time.RFC3339Nano)
	if err := s.members.SaveMember(ctx, &m); err != nil {
		s.logger.Error("SaveMember failed", zap.String("name", m.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Member created", zap.String("member_id", m.ID), zap.String("property_id", m.PropertyID))
	return &m, nil
}

func (s *memberService) Update(ctx context.Context, id string, patch domain.MemberPatch) (*domain.Member, error) {
	m, err := s.members.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Apply(patch)
	if err := domain.ValidateMemberInput(toInput(*m)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if patch.Bed != nil {
		if err := s.checkBed(ctx, *m, id); err != nil {
			return nil, err
		}
	}
	if err := s.members.SaveMember(ctx, m); err != nil {
		s.logger.Error("SaveMember failed", zap.String("member_id", id), zap.Error(err))
		return nil, err
	}
	return m, nil
}

func (s *memberService) Remove(ctx context.Context, id string) error {
	if err := s.members.DeleteMember(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Member removed", zap.String("member_id", id))
	return nil
}

// checkBed accepts a member with no assignment at all. A partial assignment,
// an unknown bed, or a bed held by anyone but selfID is rejected.
func (s *memberService) checkBed(ctx context.Context, m domain.Member, selfID string) error {
	path, ok := m.Assignment()
	if path == (domain.BedPath{}) {
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: property, building, floor, room and bed are required together", ErrInvalidInput)
	}

	p, err := s.properties.GetProperty(ctx, path.PropertyID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBedNotFound, err)
	}
	if _, found := p.FindBed(path); !found {
		return fmt.Errorf("%w: bed %s in room %s", ErrBedNotFound, path.BedID, path.RoomID)
	}

	others, err := s.members.ListMembers(ctx, path.PropertyID)
	if err != nil {
		return err
	}
	for _, o := range others {
		if o.ID == selfID {
			continue
		}
		if held, ok := o.Assignment(); ok && held == path {
			return fmt.Errorf("%w: bed %s in room %s", ErrBedOccupied, path.BedID, path.RoomID)
		}
	}
	return nil
}

func toInput(m domain.Member) domain.MemberInput {
	return domain.MemberInput{
		Name:          m.Name,
		Phone:         m.Phone,
		BillingPeriod: m.BillingPeriod,
	}
}
