package repository

import (
	"context"
	"errors"

	"propertypal/internal/domain"
)

var ErrNotFound = errors.New("not found")

// PropertiesRepository persistence for the local properties backend.
// List order is creation order.
type PropertiesRepository interface {
	ListProperties(ctx context.Context) ([]domain.Property, error)
	GetProperty(ctx context.Context, id string) (*domain.Property, error)
	SaveProperty(ctx context.Context, p *domain.Property) error
	DeleteProperty(ctx context.Context, id string) error
}

// MembersRepository persistence for the local members backend.
type MembersRepository interface {
	// ListMembers returns all members when propertyID is empty.
	ListMembers(ctx context.Context, propertyID string) ([]domain.Member, error)
	GetMember(ctx context.Context, id string) (*domain.Member, error)
	SaveMember(ctx context.Context, m *domain.Member) error
	DeleteMember(ctx context.Context, id string) error
}

// PaymentsRepository persistence for the local payments backend.
type PaymentsRepository interface {
	// ListPayments returns all payments when memberID is empty.
	ListPayments(ctx context.Context, memberID string) ([]domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	SavePayment(ctx context.Context, p *domain.Payment) error
	DeletePayment(ctx context.Context, id string) error
}
