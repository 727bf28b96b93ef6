package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/gateway"
	"github.com/prohmpiriya/residence-gate/internal/metrics"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// BookingService defines amenity reservation operations
type BookingService interface {
	// Create validates, prices and reserves a time slot
	Create(ctx context.Context, actor domain.Actor, req *domain.BookingRequest) (*domain.Booking, error)

	// Get retrieves a booking by ID
	Get(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error)

	// List returns bookings matching the filter
	List(ctx context.Context, actor domain.Actor, filter repository.BookingFilter) ([]*domain.Booking, error)

	// Transition applies approve, cancel, complete or no-show
	Transition(ctx context.Context, actor domain.Actor, bookingID string, action domain.BookingAction) (*domain.Booking, error)

	// Pay charges the booking total through the payment gateway
	Pay(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error)
}

// BookingServiceConfig contains configuration for the booking service
type BookingServiceConfig struct {
	Hours    domain.OperatingHours
	Currency string
	Clock    func() time.Time
}

type bookingService struct {
	repo           repository.BookingRepository
	amenities      repository.AmenityRepository
	payments       gateway.PaymentGateway
	eventPublisher EventPublisher
	hours          domain.OperatingHours
	currency       string
	now            func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	repo repository.BookingRepository,
	amenities repository.AmenityRepository,
	payments gateway.PaymentGateway,
	eventPublisher EventPublisher,
	cfg *BookingServiceConfig,
) BookingService {
	hours := domain.DefaultOperatingHours()
	currency := "USD"
	now := time.Now
	if cfg != nil {
		if cfg.Hours.Open != "" && cfg.Hours.Close != "" {
			hours = cfg.Hours
		}
		if cfg.Currency != "" {
			currency = cfg.Currency
		}
		if cfg.Clock != nil {
			now = cfg.Clock
		}
	}
	if payments == nil {
		payments = gateway.NewMockGateway(nil)
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		repo:           repo,
		amenities:      amenities,
		payments:       payments,
		eventPublisher: eventPublisher,
		hours:          hours,
		currency:       currency,
		now:            now,
	}
}

func (s *bookingService) Create(ctx context.Context, actor domain.Actor, req *domain.BookingRequest) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if err := actor.Authorize(domain.OpBookingCreate); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}
	if req == nil {
		req = &domain.BookingRequest{}
	}
	span.SetAttributes(
		attribute.String("user_id", actor.UserID),
		attribute.String("amenity_id", req.AmenityID),
		attribute.String("date", req.Date),
	)

	if err := req.Validate(s.hours); err != nil {
		metrics.RecordBookingRejected(ctx, req.AmenityID, "validation")
		telemetry.RecordError(span, err)
		return nil, err
	}

	amenity, err := s.amenities.GetByID(ctx, req.AmenityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	booking, err := domain.NewBooking(uuid.New().String(), amenity, actor, req, s.now())
	if err != nil {
		metrics.RecordBookingRejected(ctx, amenity.ID, rejectionReason(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.Reserve(ctx, booking); err != nil {
		metrics.RecordBookingRejected(ctx, amenity.ID, rejectionReason(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	amount, _ := booking.TotalAmount.Float64()
	metrics.RecordBookingCreated(ctx, amenity.ID, string(booking.Status), amount)
	publish(ctx, s.eventPublisher, domain.NewBookingEvent(uuid.New().String(), domain.EventBookingCreated, booking, actor.UserID))

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("status", string(booking.Status)),
		attribute.String("total_amount", booking.TotalAmount.StringFixed(2)),
	)
	span.SetStatus(codes.Ok, "")
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !seesAllBookings(actor) && b.UserID != actor.UserID {
		// other people's bookings are reported as missing
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}

func (s *bookingService) List(ctx context.Context, actor domain.Actor, filter repository.BookingFilter) ([]*domain.Booking, error) {
	if !seesAllBookings(actor) {
		filter.UserID = actor.UserID
	}
	return s.repo.List(ctx, filter)
}

// seesAllBookings reports whether the actor manages the calendar rather than only their own bookings
func seesAllBookings(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleFacilityManager, domain.RoleSecurity:
		return true
	}
	return false
}

func (s *bookingService) Transition(ctx context.Context, actor domain.Actor, bookingID string, action domain.BookingAction) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.transition")
	defer span.End()
	span.SetAttributes(attribute.String("booking_id", bookingID), attribute.String("action", string(action)))

	op := action.Operation()
	if op == "" {
		verr := domain.NewValidationError()
		verr.Add("action", fmt.Sprintf("Unknown action %q", action))
		return nil, verr
	}
	if err := actor.Authorize(op); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	now := s.now()
	refunded := false
	b, err := s.repo.Update(ctx, bookingID, func(b *domain.Booking) error {
		if action == domain.BookingActionCancel && !actor.IsAdmin() && b.UserID != actor.UserID {
			return fmt.Errorf("%w: only the owner can cancel this booking", domain.ErrForbidden)
		}
		wasPaid := b.PaymentStatus == domain.PaymentStatusPaid
		if err := b.Apply(action, now); err != nil {
			return err
		}
		if action != domain.BookingActionCancel || !wasPaid {
			return nil
		}
		// refund inside the update so a failed refund leaves the booking untouched
		if err := s.payments.Refund(ctx, b.PaymentReference, b.TotalAmount); err != nil {
			return fmt.Errorf("%w: refund: %v", domain.ErrPaymentFailed, err)
		}
		refunded = true
		return b.MarkRefunded(now)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publish(ctx, s.eventPublisher, domain.NewBookingEvent(uuid.New().String(), domain.BookingEventFor(action), b, actor.UserID))
	if refunded {
		publish(ctx, s.eventPublisher, domain.NewBookingEvent(uuid.New().String(), domain.EventBookingRefunded, b, actor.UserID))
	}
	span.SetStatus(codes.Ok, "")
	return b, nil
}

func (s *bookingService) Pay(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.pay")
	defer span.End()
	span.SetAttributes(attribute.String("booking_id", bookingID))

	if err := actor.Authorize(domain.OpBookingPay); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	now := s.now()
	b, err := s.repo.Update(ctx, bookingID, func(b *domain.Booking) error {
		if !actor.IsAdmin() && b.UserID != actor.UserID {
			return fmt.Errorf("%w: only the owner can pay for this booking", domain.ErrForbidden)
		}
		// check the payment state before charging
		probe := b.Clone()
		if err := probe.MarkPaid("probe", now); err != nil {
			return err
		}

		resp, err := s.payments.Charge(ctx, &gateway.ChargeRequest{
			Reference:   b.ID,
			Amount:      b.TotalAmount,
			Currency:    s.currency,
			Description: fmt.Sprintf("%s %s %s-%s", b.AmenityName, b.Date, b.StartTime, b.EndTime),
			CustomerID:  b.UserID,
			Metadata:    map[string]string{"booking_id": b.ID, "amenity_id": b.AmenityID},
		})
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
		}
		if !resp.Success {
			return fmt.Errorf("%w: %s", domain.ErrPaymentFailed, resp.FailureReason)
		}
		return b.MarkPaid(resp.TransactionID, now)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publish(ctx, s.eventPublisher, domain.NewBookingEvent(uuid.New().String(), domain.EventBookingPaid, b, actor.UserID))
	span.SetAttributes(attribute.String("payment_reference", b.PaymentReference))
	span.SetStatus(codes.Ok, "")
	return b, nil
}
