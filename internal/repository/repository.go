package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// VisitorFilter narrows ListVisitors; empty fields match everything
type VisitorFilter struct {
	Status    domain.VisitorStatus
	HostID    string
	VisitDate string
}

// Matches reports whether v passes the filter
func (f VisitorFilter) Matches(v *domain.Visitor) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.HostID != "" && v.HostID != f.HostID {
		return false
	}
	if f.VisitDate != "" && v.VisitDate != f.VisitDate {
		return false
	}
	return true
}

// BookingFilter narrows ListBookings; empty fields match everything
type BookingFilter struct {
	AmenityID string
	UserID    string
	Date      string
	Status    domain.BookingStatus
}

// Matches reports whether b passes the filter
func (f BookingFilter) Matches(b *domain.Booking) bool {
	if f.AmenityID != "" && b.AmenityID != f.AmenityID {
		return false
	}
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	if f.Date != "" && b.Date != f.Date {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

// VisitorRepository stores visitor records; they are never deleted
type VisitorRepository interface {
	// Create inserts a new visitor; the QR code must be unique
	Create(ctx context.Context, v *domain.Visitor) error

	// GetByID returns a copy of the visitor
	GetByID(ctx context.Context, id string) (*domain.Visitor, error)

	// GetByQRCode looks a visitor up by gate pass
	GetByQRCode(ctx context.Context, code string) (*domain.Visitor, error)

	// List returns copies of matching visitors in registration order
	List(ctx context.Context, filter VisitorFilter) ([]*domain.Visitor, error)

	// Update applies fn to a copy and commits it only when fn succeeds
	Update(ctx context.Context, id string, fn func(v *domain.Visitor) error) (*domain.Visitor, error)

	// ExpireStale expires every stale pass and returns the changed visitors
	ExpireStale(ctx context.Context, now time.Time) ([]*domain.Visitor, error)
}

// AmenityRepository stores amenity records
type AmenityRepository interface {
	Create(ctx context.Context, a *domain.Amenity) error
	GetByID(ctx context.Context, id string) (*domain.Amenity, error)
	List(ctx context.Context) ([]*domain.Amenity, error)
	Update(ctx context.Context, id string, fn func(a *domain.Amenity) error) (*domain.Amenity, error)
	Delete(ctx context.Context, id string) error
}

// BookingRepository stores bookings and guards each amenity calendar
type BookingRepository interface {
	// Reserve inserts the booking unless it overlaps a booking that still blocks the calendar
	Reserve(ctx context.Context, b *domain.Booking) error

	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error)
	Update(ctx context.Context, id string, fn func(b *domain.Booking) error) (*domain.Booking, error)
}

// AlertRepository stores emergency alerts
type AlertRepository interface {
	Create(ctx context.Context, a *domain.EmergencyAlert) error
	GetByID(ctx context.Context, id string) (*domain.EmergencyAlert, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.EmergencyAlert, error)
	Update(ctx context.Context, id string, fn func(a *domain.EmergencyAlert) error) (*domain.EmergencyAlert, error)
}

// OccupancyCounter tracks open-access headcounts
type OccupancyCounter interface {
	// Increment adds one unless the count already reached capacity
	Increment(ctx context.Context, amenityID string, capacity int) (int, error)

	// Decrement removes one, never going below zero
	Decrement(ctx context.Context, amenityID string) (int, error)

	// Set overwrites the count
	Set(ctx context.Context, amenityID string, value int) error

	// SetIfAbsent initialises the count only when no value is stored yet
	SetIfAbsent(ctx context.Context, amenityID string, value int) (bool, error)

	// Get returns the stored count; ok is false when the amenity has none
	Get(ctx context.Context, amenityID string) (n int, ok bool, err error)
}

// AuditRepository persists the domain event trail
type AuditRepository interface {
	Append(ctx context.Context, event *domain.DomainEvent) error
	ListByAggregate(ctx context.Context, aggregateType, aggregateID string, limit int) ([]*AuditEntry, error)
}
