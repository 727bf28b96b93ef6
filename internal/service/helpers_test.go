package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/pkg/kafka"
)

var (
	adminActor    = domain.Actor{UserID: "1", Name: "Sarah Johnson", Role: domain.RoleAdmin}
	residentActor = domain.Actor{UserID: "2", Name: "Michael Chen", Apartment: "A-101", Role: domain.RoleResident}
	securityActor = domain.Actor{UserID: "3", Name: "David Rodriguez", Role: domain.RoleSecurity}
	facilityActor = domain.Actor{UserID: "4", Name: "Emily Davis", Role: domain.RoleFacilityManager}
	visitorActor  = domain.Actor{UserID: "5", Name: "Alex Thompson", Role: domain.RoleVisitor}
	otherResident = domain.Actor{UserID: "9", Name: "Priya Nair", Apartment: "B-204", Role: domain.RoleResident}
)

// fakeClock is a settable clock for services under test
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingPublisher captures every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType)
	}
	return types
}

// mockProducer records produced messages
type mockProducer struct {
	ProduceFunc func(ctx context.Context, msg *kafka.Message) error
	messages    []*kafka.Message
	closed      bool
}

func (m *mockProducer) Produce(ctx context.Context, msg *kafka.Message) error {
	m.messages = append(m.messages, msg)
	if m.ProduceFunc != nil {
		return m.ProduceFunc(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() { m.closed = true }

var errBroker = errors.New("broker unavailable")

func validRegistration() *domain.VisitorRegistration {
	return &domain.VisitorRegistration{
		Name:      "Jane Doe",
		Phone:     "+15550001111",
		Email:     "jane@example.com",
		IDNumber:  "ID-1234",
		Purpose:   "Family visit",
		VisitDate: "2025-03-14",
		VisitTime: "10:00",
	}
}

func cinemaHall() *domain.Amenity {
	return &domain.Amenity{
		ID:                "cinema",
		Name:              "Cinema Hall",
		Code:              "CIN",
		Location:          domain.LocationBasement,
		Type:              domain.AmenityTypePaymentRequired,
		Capacity:          20,
		IsAvailable:       true,
		RequiresPayment:   true,
		PricePerHour:      decimal.NewFromInt(25),
		MaintenanceStatus: domain.MaintenanceOperational,
	}
}

func socialHall() *domain.Amenity {
	return &domain.Amenity{
		ID:                "social",
		Name:              "Social Hall",
		Code:              "SOC",
		Location:          domain.LocationGroundFloor,
		Type:              domain.AmenityTypeReservation,
		Capacity:          100,
		IsAvailable:       true,
		RequiresApproval:  true,
		RequiresPayment:   true,
		PricePerHour:      decimal.NewFromInt(100),
		MaintenanceStatus: domain.MaintenanceOperational,
	}
}

func library(capacity int) *domain.Amenity {
	return &domain.Amenity{
		ID:                "library",
		Name:              "Library",
		Code:              "LIB",
		Location:          domain.LocationGroundFloor,
		Type:              domain.AmenityTypeOpenAccess,
		Capacity:          capacity,
		IsAvailable:       true,
		MaintenanceStatus: domain.MaintenanceOperational,
	}
}
