package repository

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// MemoryAlertRepository implements AlertRepository in process memory
type MemoryAlertRepository struct {
	t *table[domain.EmergencyAlert]
}

// NewMemoryAlertRepository creates an empty alert store
func NewMemoryAlertRepository() *MemoryAlertRepository {
	return &MemoryAlertRepository{t: newTable((*domain.EmergencyAlert).Clone)}
}

func (r *MemoryAlertRepository) Create(ctx context.Context, a *domain.EmergencyAlert) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, exists := r.t.rows[a.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrAlertExists, a.ID)
	}
	r.t.insertLocked(a.ID, a)
	return nil
}

func (r *MemoryAlertRepository) GetByID(ctx context.Context, id string) (*domain.EmergencyAlert, error) {
	a, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrAlertNotFound
	}
	return a, nil
}

// List returns alerts newest first
func (r *MemoryAlertRepository) List(ctx context.Context, activeOnly bool) ([]*domain.EmergencyAlert, error) {
	alerts := r.t.list(func(a *domain.EmergencyAlert) bool {
		return !activeOnly || a.IsActive
	})
	for i, j := 0, len(alerts)-1; i < j; i, j = i+1, j-1 {
		alerts[i], alerts[j] = alerts[j], alerts[i]
	}
	return alerts, nil
}

func (r *MemoryAlertRepository) Update(ctx context.Context, id string, fn func(a *domain.EmergencyAlert) error) (*domain.EmergencyAlert, error) {
	return r.t.update(id, domain.ErrAlertNotFound, fn)
}
