package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// MemoryVisitorRepository implements VisitorRepository in process memory
type MemoryVisitorRepository struct {
	t    *table[domain.Visitor]
	byQR map[string]string
}

// NewMemoryVisitorRepository creates an empty visitor store
func NewMemoryVisitorRepository() *MemoryVisitorRepository {
	return &MemoryVisitorRepository{
		t:    newTable((*domain.Visitor).Clone),
		byQR: make(map[string]string),
	}
}

// Create inserts a new visitor
func (r *MemoryVisitorRepository) Create(ctx context.Context, v *domain.Visitor) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, exists := r.t.rows[v.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrVisitorExists, v.ID)
	}
	if _, exists := r.byQR[v.QRCode]; exists {
		return fmt.Errorf("%w: %s", domain.ErrQRCodeIssued, v.QRCode)
	}
	r.t.insertLocked(v.ID, v)
	r.byQR[v.QRCode] = v.ID
	return nil
}

// GetByID returns a copy of the visitor
func (r *MemoryVisitorRepository) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	v, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrVisitorNotFound
	}
	return v, nil
}

// GetByQRCode looks a visitor up by gate pass
func (r *MemoryVisitorRepository) GetByQRCode(ctx context.Context, code string) (*domain.Visitor, error) {
	r.t.mu.RLock()
	id, ok := r.byQR[code]
	r.t.mu.RUnlock()
	if !ok {
		return nil, domain.ErrVisitorNotFound
	}
	return r.GetByID(ctx, id)
}

// List returns matching visitors in registration order
func (r *MemoryVisitorRepository) List(ctx context.Context, filter VisitorFilter) ([]*domain.Visitor, error) {
	return r.t.list(filter.Matches), nil
}

// Update applies fn atomically
func (r *MemoryVisitorRepository) Update(ctx context.Context, id string, fn func(v *domain.Visitor) error) (*domain.Visitor, error) {
	return r.t.update(id, domain.ErrVisitorNotFound, func(v *domain.Visitor) error {
		if v.ID != id {
			return fmt.Errorf("visitor id is immutable")
		}
		return fn(v)
	})
}

// ExpireStale expires every stale pass under one lock
func (r *MemoryVisitorRepository) ExpireStale(ctx context.Context, now time.Time) ([]*domain.Visitor, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	var expired []*domain.Visitor
	for _, id := range r.t.order {
		v := r.t.rows[id]
		if !v.IsStale(now) {
			continue
		}
		v.ExpireIfStale(now)
		expired = append(expired, v.Clone())
	}
	return expired, nil
}
