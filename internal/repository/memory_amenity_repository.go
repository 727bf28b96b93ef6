package repository

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// MemoryAmenityRepository implements AmenityRepository in process memory
type MemoryAmenityRepository struct {
	t *table[domain.Amenity]
}

// NewMemoryAmenityRepository creates an empty amenity store
func NewMemoryAmenityRepository() *MemoryAmenityRepository {
	return &MemoryAmenityRepository{t: newTable((*domain.Amenity).Clone)}
}

func (r *MemoryAmenityRepository) Create(ctx context.Context, a *domain.Amenity) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	if _, exists := r.t.rows[a.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrAmenityExists, a.ID)
	}
	r.t.insertLocked(a.ID, a)
	return nil
}

func (r *MemoryAmenityRepository) GetByID(ctx context.Context, id string) (*domain.Amenity, error) {
	a, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrAmenityNotFound
	}
	return a, nil
}

func (r *MemoryAmenityRepository) List(ctx context.Context) ([]*domain.Amenity, error) {
	return r.t.list(nil), nil
}

func (r *MemoryAmenityRepository) Update(ctx context.Context, id string, fn func(a *domain.Amenity) error) (*domain.Amenity, error) {
	return r.t.update(id, domain.ErrAmenityNotFound, fn)
}

func (r *MemoryAmenityRepository) Delete(ctx context.Context, id string) error {
	if !r.t.delete(id) {
		return domain.ErrAmenityNotFound
	}
	return nil
}
