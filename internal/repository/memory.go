package repository

import (
	"context"
	"fmt"
	"sync"

	"propertypal/internal/domain"
)

// MemoryProperties supports the local backend when no database is configured.
type MemoryProperties struct {
	mu    sync.RWMutex
	order []string
	items map[string]domain.Property
}

func NewMemoryProperties() *MemoryProperties {
	return &MemoryProperties{items: map[string]domain.Property{}}
}

var _ PropertiesRepository = (*MemoryProperties)(nil)

func (r *MemoryProperties) ListProperties(_ context.Context) ([]domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Property, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *MemoryProperties) GetProperty(_ context.Context, id string) (*domain.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	out := p.Clone()
	return &out, nil
}

func (r *MemoryProperties) SaveProperty(_ context.Context, p *domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.items[p.ID] = p.Clone()
	return nil
}

func (r *MemoryProperties) DeleteProperty(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	r.order = removeID(r.order, id)
	return nil
}

// MemoryMembers in-memory MembersRepository
type MemoryMembers struct {
	mu    sync.RWMutex
	order []string
	items map[string]domain.Member
}

func NewMemoryMembers() *MemoryMembers {
	return &MemoryMembers{items: map[string]domain.Member{}}
}

var _ MembersRepository = (*MemoryMembers)(nil)

func (r *MemoryMembers) ListMembers(_ context.Context, propertyID string) ([]domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Member, 0, len(r.order))
	for _, id := range r.order {
		m := r.items[id]
		if propertyID != "" && m.PropertyID != propertyID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryMembers) GetMember(_ context.Context, id string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
	}
	return &m, nil
}

func (r *MemoryMembers) SaveMember(_ context.Context, m *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.ID]; !ok {
		r.order = append(r.order, m.ID)
	}
	r.items[m.ID] = *m
	return nil
}

func (r *MemoryMembers) DeleteMember(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("member %s: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	r.order = removeID(r.order, id)
	return nil
}

// MemoryPayments in-memory PaymentsRepository
type MemoryPayments struct {
	mu    sync.RWMutex
	order []string
	items map[string]domain.Payment
}

func NewMemoryPayments() *MemoryPayments {
	return &MemoryPayments{items: map[string]domain.Payment{}}
}

var _ PaymentsRepository = (*MemoryPayments)(nil)

func (r *MemoryPayments) ListPayments(_ context.Context, memberID string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Payment, 0, len(r.order))
	for _, id := range r.order {
		p := r.items[id]
		if memberID != "" && p.MemberID != memberID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryPayments) GetPayment(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (r *MemoryPayments) SavePayment(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.items[p.ID] = *p
	return nil
}

func (r *MemoryPayments) DeletePayment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("payment %s: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	r.order = removeID(r.order, id)
	return nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
