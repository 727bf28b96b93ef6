package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/metrics"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// AmenityView is an amenity with its derived occupancy projection
type AmenityView struct {
	*domain.Amenity
	OccupancyRate   float64                `json:"occupancy_rate"`
	OccupancyStatus domain.OccupancyStatus `json:"occupancy_status"`
}

// NewAmenityView projects occupancy onto the amenity
func NewAmenityView(a *domain.Amenity) *AmenityView {
	return &AmenityView{
		Amenity:         a,
		OccupancyRate:   a.OccupancyRate(),
		OccupancyStatus: a.OccupancyStatus(),
	}
}

// AmenityService defines amenity management and open-access occupancy
type AmenityService interface {
	// Create adds an amenity to the catalogue
	Create(ctx context.Context, actor domain.Actor, a *domain.Amenity) (*AmenityView, error)

	// Get retrieves an amenity by ID
	Get(ctx context.Context, amenityID string) (*AmenityView, error)

	// List returns the catalogue
	List(ctx context.Context) ([]*AmenityView, error)

	// Update merges a partial update without cross-field checks
	Update(ctx context.Context, actor domain.Actor, amenityID string, patch *domain.AmenityPatch) (*AmenityView, error)

	// Delete removes an amenity
	Delete(ctx context.Context, actor domain.Actor, amenityID string) error

	// CheckIn admits one person to an open-access amenity
	CheckIn(ctx context.Context, actor domain.Actor, amenityID string) (*AmenityView, error)

	// CheckOut releases one person from an open-access amenity
	CheckOut(ctx context.Context, actor domain.Actor, amenityID string) (*AmenityView, error)
}

// AmenityServiceConfig contains configuration for the amenity service
type AmenityServiceConfig struct {
	Clock func() time.Time
}

type amenityService struct {
	repo           repository.AmenityRepository
	counter        repository.OccupancyCounter
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewAmenityService creates a new amenity service; a nil counter keeps counts in memory
func NewAmenityService(repo repository.AmenityRepository, counter repository.OccupancyCounter, eventPublisher EventPublisher, cfg *AmenityServiceConfig) AmenityService {
	now := time.Now
	if cfg != nil && cfg.Clock != nil {
		now = cfg.Clock
	}
	if counter == nil {
		counter = repository.NewMemoryOccupancyCounter()
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &amenityService{
		repo:           repo,
		counter:        counter,
		eventPublisher: eventPublisher,
		now:            now,
	}
}

func (s *amenityService) Create(ctx context.Context, actor domain.Actor, a *domain.Amenity) (*AmenityView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.amenity.create")
	defer span.End()

	if err := actor.Authorize(domain.OpAmenityCreate); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}
	if a == nil {
		a = &domain.Amenity{}
	}
	if err := a.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	amenity := a.Clone()
	if amenity.ID == "" {
		amenity.ID = uuid.New().String()
	}
	if amenity.MaintenanceStatus == "" {
		amenity.MaintenanceStatus = domain.MaintenanceOperational
	}
	now := s.now()
	amenity.CreatedAt = now
	amenity.UpdatedAt = now

	if err := s.repo.Create(ctx, amenity); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.counter.Set(ctx, amenity.ID, amenity.CurrentOccupancy); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("amenity_id", amenity.ID))
	publish(ctx, s.eventPublisher, domain.NewAmenityEvent(uuid.New().String(), domain.EventAmenityCreated, amenity, actor.UserID))
	span.SetStatus(codes.Ok, "")
	return NewAmenityView(amenity), nil
}

func (s *amenityService) Get(ctx context.Context, amenityID string) (*AmenityView, error) {
	a, err := s.repo.GetByID(ctx, amenityID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, a)
}

func (s *amenityService) List(ctx context.Context) ([]*AmenityView, error) {
	amenities, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*AmenityView, 0, len(amenities))
	for _, a := range amenities {
		v, err := s.view(ctx, a)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// view projects the amenity with the headcount held by the shared counter
func (s *amenityService) view(ctx context.Context, a *domain.Amenity) (*AmenityView, error) {
	n, ok, err := s.counter.Get(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if ok && n != a.CurrentOccupancy {
		a = a.Clone()
		a.CurrentOccupancy = n
	}
	return NewAmenityView(a), nil
}

func (s *amenityService) Update(ctx context.Context, actor domain.Actor, amenityID string, patch *domain.AmenityPatch) (*AmenityView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.amenity.update")
	defer span.End()
	span.SetAttributes(attribute.String("amenity_id", amenityID))

	if err := actor.Authorize(domain.OpAmenityUpdate); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}
	if patch == nil {
		patch = &domain.AmenityPatch{}
	}

	now := s.now()
	a, err := s.repo.Update(ctx, amenityID, func(a *domain.Amenity) error {
		patch.Apply(a, now)
		if patch.CurrentOccupancy != nil {
			return s.counter.Set(ctx, a.ID, a.CurrentOccupancy)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publish(ctx, s.eventPublisher, domain.NewAmenityEvent(uuid.New().String(), domain.EventAmenityUpdated, a, actor.UserID))
	span.SetStatus(codes.Ok, "")
	return s.view(ctx, a)
}

func (s *amenityService) Delete(ctx context.Context, actor domain.Actor, amenityID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.amenity.delete")
	defer span.End()

	if err := actor.Authorize(domain.OpAmenityDelete); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return err
	}
	a, err := s.repo.GetByID(ctx, amenityID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, amenityID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	publish(ctx, s.eventPublisher, domain.NewAmenityEvent(uuid.New().String(), domain.EventAmenityDeleted, a, actor.UserID))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *amenityService) CheckIn(ctx context.Context, actor domain.Actor, amenityID string) (*AmenityView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.amenity.check_in")
	defer span.End()
	span.SetAttributes(attribute.String("amenity_id", amenityID))

	if err := actor.Authorize(domain.OpAmenityCheckIn); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	now := s.now()
	a, err := s.repo.Update(ctx, amenityID, func(a *domain.Amenity) error {
		if err := a.CanCheckIn(); err != nil {
			return err
		}
		// the shared counter is the only capacity gate across instances
		n, err := s.counter.Increment(ctx, a.ID, a.Capacity)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Name, err)
		}
		a.RecordOccupancy(n, now)
		return nil
	})
	if err != nil {
		metrics.RecordAmenityRejected(ctx, amenityID, rejectionReason(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordAmenityCheckIn(ctx, a.ID)
	publish(ctx, s.eventPublisher, domain.NewAmenityEvent(uuid.New().String(), domain.EventAmenityCheckedIn, a, actor.UserID))
	span.SetAttributes(attribute.Int("occupancy", a.CurrentOccupancy))
	span.SetStatus(codes.Ok, "")
	return NewAmenityView(a), nil
}

func (s *amenityService) CheckOut(ctx context.Context, actor domain.Actor, amenityID string) (*AmenityView, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.amenity.check_out")
	defer span.End()
	span.SetAttributes(attribute.String("amenity_id", amenityID))

	if err := actor.Authorize(domain.OpAmenityCheckOut); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	now := s.now()
	a, err := s.repo.Update(ctx, amenityID, func(a *domain.Amenity) error {
		if err := a.CanCheckOut(); err != nil {
			return err
		}
		n, err := s.counter.Decrement(ctx, a.ID)
		if err != nil {
			return err
		}
		a.RecordOccupancy(n, now)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordAmenityCheckOut(ctx, a.ID)
	publish(ctx, s.eventPublisher, domain.NewAmenityEvent(uuid.New().String(), domain.EventAmenityCheckedOut, a, actor.UserID))
	span.SetStatus(codes.Ok, "")
	return NewAmenityView(a), nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, domain.ErrAmenityUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrUnsupportedAmenityMode):
		return "mode"
	case errors.Is(err, domain.ErrBookingOverlap):
		return "overlap"
	case domain.IsNotFoundError(err):
		return "not_found"
	case domain.IsValidationError(err):
		return "validation"
	}
	return "error"
}
