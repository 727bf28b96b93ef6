package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/metrics"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// AlertService coordinates emergency alerts
type AlertService interface {
	// Trigger raises a new active alert
	Trigger(ctx context.Context, actor domain.Actor, trigger *domain.AlertTrigger) (*domain.EmergencyAlert, error)

	// Acknowledge records the actor once; repeats are no-ops
	Acknowledge(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error)

	// Resolve deactivates an alert
	Resolve(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error)

	// Get retrieves an alert by ID
	Get(ctx context.Context, alertID string) (*domain.EmergencyAlert, error)

	// List returns alerts newest first
	List(ctx context.Context, activeOnly bool) ([]*domain.EmergencyAlert, error)
}

// AlertServiceConfig contains configuration for the alert service
type AlertServiceConfig struct {
	Clock func() time.Time
}

type alertService struct {
	repo           repository.AlertRepository
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(repo repository.AlertRepository, eventPublisher EventPublisher, cfg *AlertServiceConfig) AlertService {
	now := time.Now
	if cfg != nil && cfg.Clock != nil {
		now = cfg.Clock
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &alertService{repo: repo, eventPublisher: eventPublisher, now: now}
}

func (s *alertService) Trigger(ctx context.Context, actor domain.Actor, trigger *domain.AlertTrigger) (*domain.EmergencyAlert, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.alert.trigger")
	defer span.End()

	if err := actor.Authorize(domain.OpAlertTrigger); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}
	if trigger == nil {
		trigger = &domain.AlertTrigger{}
	}
	if err := trigger.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	alert := domain.NewEmergencyAlert(uuid.New().String(), trigger, actor.UserID, s.now())
	if err := s.repo.Create(ctx, alert); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordAlertTriggered(ctx, string(alert.Type), string(alert.Severity))
	publish(ctx, s.eventPublisher, domain.NewAlertEvent(uuid.New().String(), domain.EventAlertTriggered, alert, actor.UserID))
	span.SetAttributes(
		attribute.String("alert_id", alert.ID),
		attribute.String("type", string(alert.Type)),
		attribute.String("severity", string(alert.Severity)),
	)
	span.SetStatus(codes.Ok, "")
	return alert, nil
}

func (s *alertService) Acknowledge(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.alert.acknowledge")
	defer span.End()
	span.SetAttributes(attribute.String("alert_id", alertID))

	if err := actor.Authorize(domain.OpAlertAcknowledge); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	changed := false
	alert, err := s.repo.Update(ctx, alertID, func(a *domain.EmergencyAlert) error {
		var err error
		changed, err = a.Acknowledge(actor.UserID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if changed {
		metrics.RecordAlertAcknowledged(ctx, string(alert.Type))
		publish(ctx, s.eventPublisher, domain.NewAlertEvent(uuid.New().String(), domain.EventAlertAcknowledged, alert, actor.UserID))
	}
	span.SetAttributes(attribute.Int("acknowledged_by", len(alert.AcknowledgedBy)))
	span.SetStatus(codes.Ok, "")
	return alert, nil
}

func (s *alertService) Resolve(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.alert.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("alert_id", alertID))

	if err := actor.Authorize(domain.OpAlertResolve); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	now := s.now()
	alert, err := s.repo.Update(ctx, alertID, func(a *domain.EmergencyAlert) error {
		return a.Resolve(actor.UserID, now)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordAlertResolved(ctx, string(alert.Type))
	publish(ctx, s.eventPublisher, domain.NewAlertEvent(uuid.New().String(), domain.EventAlertResolved, alert, actor.UserID))
	span.SetStatus(codes.Ok, "")
	return alert, nil
}

func (s *alertService) Get(ctx context.Context, alertID string) (*domain.EmergencyAlert, error) {
	return s.repo.GetByID(ctx, alertID)
}

func (s *alertService) List(ctx context.Context, activeOnly bool) ([]*domain.EmergencyAlert, error) {
	return s.repo.List(ctx, activeOnly)
}
