package service

import (
	"context"
	"testing"
	"time"

	"propertypal/internal/domain"
	"propertypal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupPayments(t *testing.T) *paymentService {
	t.Helper()
	members := repository.NewMemoryMembers()
	require.NoError(t, members.SaveMember(context.Background(), &domain.Member{ID: "m1", Name: "Asha", Phone: "9876543210"}))
	svc := NewPaymentService(repository.NewMemoryPayments(), members, zap.NewNop()).(*paymentService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestPaymentService_CreateDefaults(t *testing.T) {
	svc := setupPayments(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.PaymentInput{MemberID: "m1", Amount: 8000})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "2026-03-01T09:00:00Z", p.Date)
	assert.Equal(t, p.Date, p.CreatedAt)
	assert.Equal(t, "paid", p.Status)

	explicit, err := svc.Create(ctx, domain.PaymentInput{MemberID: "m1", Amount: 500, Date: "2026-02-28", Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", explicit.Date)

	list, err := svc.List(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPaymentService_CreateRejects(t *testing.T) {
	svc := setupPayments(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.PaymentInput{MemberID: "m1", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, domain.PaymentInput{MemberID: "ghost", Amount: 100})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPaymentService_UpdateAndRemove(t *testing.T) {
	svc := setupPayments(t)
	ctx := context.Background()
	p, err := svc.Create(ctx, domain.PaymentInput{MemberID: "m1", Amount: 8000, Status: "pending"})
	require.NoError(t, err)

	status := "paid"
	updated, err := svc.Update(ctx, p.ID, domain.PaymentPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "paid", updated.Status)
	assert.Equal(t, domain.Money(8000), updated.Amount)

	bad := domain.Money(-5)
	_, err = svc.Update(ctx, p.ID, domain.PaymentPatch{Amount: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.Remove(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
