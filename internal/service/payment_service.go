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

// PaymentService local payments backend.
type PaymentService interface {
	List(ctx context.Context, memberID string) ([]domain.Payment, error)
	Get(ctx context.Context, id string) (*domain.Payment, error)
	Create(ctx context.Context, in domain.PaymentInput) (*domain.Payment, error)
	Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error)
	Remove(ctx context.Context, id string) error
}

type paymentService struct {
	payments repository.PaymentsRepository
	members  repository.MembersRepository
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewPaymentService creates a PaymentService. members is used to check that
// the paying member exists.
func NewPaymentService(payments repository.PaymentsRepository, members repository.MembersRepository, logger *zap.Logger) PaymentService {
	return &paymentService{
		payments: payments,
		members:  members,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *paymentService) List(ctx context.Context, memberID string) ([]domain.Payment, error) {
	return s.payments.ListPayments(ctx, memberID)
}

func (s *paymentService) Get(ctx context.Context, id string) (*domain.Payment, error) {
	return s.payments.GetPayment(ctx, id)
}

// Create records a payment for an existing member. An empty date and status
// default to now and "paid".
func (s *paymentService) Create(ctx context.Context, in domain.PaymentInput) (*domain.Payment, error) {
	if err := domain.ValidatePaymentInput(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.members.GetMember(ctx, in.MemberID); err != nil {
		return nil, err
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	p := domain.Payment{
		ID:        s.newID(),
		MemberID:  in.MemberID,
		Amount:    in.Amount,
		Date:      in.Date,
		Method:    in.Method,
		Status:    in.Status,
		Notes:     in.Notes,
		CreatedAt: now,
	}
	if p.Date == "" {
		p.Date = now
	}
	if p.Status == "" {
		p.Status = "paid"
	}
	if err := s.payments.SavePayment(ctx, &p); err != nil {
		s.logger.Error("SavePayment failed", zap.String("member_id", p.MemberID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Payment recorded",
		zap.String("payment_id", p.ID),
		zap.String("member_id", p.MemberID),
		zap.Float64("amount", float64(p.Amount)),
	)
	return &p, nil
}

func (s *paymentService) Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	p, err := s.payments.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(patch)
	if err := domain.ValidatePaymentInput(p.Input()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.payments.SavePayment(ctx, p); err != nil {
		s.logger.Error("SavePayment failed", zap.String("payment_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *paymentService) Remove(ctx context.Context, id string) error {
	if err := s.payments.DeletePayment(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Payment removed", zap.String("payment_id", id))
	return nil
}
