package repository

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// MemoryBookingRepository implements BookingRepository in process memory.
// One lock covers the whole calendar so the overlap check and insert cannot interleave.
type MemoryBookingRepository struct {
	t *table[domain.Booking]
}

// NewMemoryBookingRepository creates an empty booking store
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{t: newTable((*domain.Booking).Clone)}
}

// Reserve inserts b unless it collides with a booking that still holds its slot
func (r *MemoryBookingRepository) Reserve(ctx context.Context, b *domain.Booking) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, exists := r.t.rows[b.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrBookingExists, b.ID)
	}
	for _, id := range r.t.order {
		other := r.t.rows[id]
		if other.BlocksCalendar() && b.Overlaps(other) {
			return fmt.Errorf("%w: %s %s-%s is taken", domain.ErrBookingOverlap, other.Date, other.StartTime, other.EndTime)
		}
	}
	r.t.insertLocked(b.ID, b)
	return nil
}

func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, ok := r.t.get(id)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}

func (r *MemoryBookingRepository) List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error) {
	return r.t.list(filter.Matches), nil
}

func (r *MemoryBookingRepository) Update(ctx context.Context, id string, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	return r.t.update(id, domain.ErrBookingNotFound, fn)
}
