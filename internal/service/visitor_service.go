package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/metrics"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// BulkRow is one registration in a bulk request
type BulkRow struct {
	// Row is the 1-based position among the data rows
	Row int
	// Line is the source line when the rows came from a file, header being line 1
	Line         int
	Registration *domain.VisitorRegistration
}

// RowRejection reports every problem found in one rejected row
type RowRejection struct {
	Row    int      `json:"row"`
	Line   int      `json:"line,omitempty"`
	Errors []string `json:"errors"`
}

// BulkResult is the outcome of a bulk registration; partial success is normal
type BulkResult struct {
	Total    int               `json:"total"`
	Accepted []*domain.Visitor `json:"accepted"`
	Rejected []RowRejection    `json:"rejected"`
}

// VisitorService defines the visitor lifecycle operations
type VisitorService interface {
	// Register validates and stores a new pending visitor with a QR pass
	Register(ctx context.Context, actor domain.Actor, reg *domain.VisitorRegistration) (*domain.Visitor, error)

	// BulkRegister validates each row independently
	BulkRegister(ctx context.Context, actor domain.Actor, rows []BulkRow) (*BulkResult, error)

	// Transition applies approve, reject, check-in or check-out
	Transition(ctx context.Context, actor domain.Actor, visitorID string, action domain.VisitorAction) (*domain.Visitor, error)

	// SetBlacklisted flags or clears a visitor
	SetBlacklisted(ctx context.Context, actor domain.Actor, visitorID string, blacklisted bool) (*domain.Visitor, error)

	// Get retrieves a visitor by ID
	Get(ctx context.Context, actor domain.Actor, visitorID string) (*domain.Visitor, error)

	// GetByQRCode retrieves a visitor by gate pass
	GetByQRCode(ctx context.Context, actor domain.Actor, code string) (*domain.Visitor, error)

	// List returns visitors matching the filter
	List(ctx context.Context, actor domain.Actor, filter repository.VisitorFilter) ([]*domain.Visitor, error)

	// CheckZoneAccess reports whether a checked-in visitor may enter the zone
	CheckZoneAccess(ctx context.Context, actor domain.Actor, visitorID, zone string) (bool, error)

	// ExpireStale promotes every past-validity pass to expired
	ExpireStale(ctx context.Context) (int, error)

	// CountOnSite returns the number of checked-in visitors
	CountOnSite(ctx context.Context) (int, error)
}

// VisitorServiceConfig contains configuration for the visitor service
type VisitorServiceConfig struct {
	PassValidity time.Duration
	Clock        func() time.Time
}

type visitorService struct {
	repo           repository.VisitorRepository
	eventPublisher EventPublisher
	passValidity   time.Duration
	now            func() time.Time
}

// NewVisitorService creates a new visitor service
func NewVisitorService(repo repository.VisitorRepository, eventPublisher EventPublisher, cfg *VisitorServiceConfig) VisitorService {
	validity := 24 * time.Hour
	now := time.Now
	if cfg != nil {
		if cfg.PassValidity > 0 {
			validity = cfg.PassValidity
		}
		if cfg.Clock != nil {
			now = cfg.Clock
		}
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &visitorService{
		repo:           repo,
		eventPublisher: eventPublisher,
		passValidity:   validity,
		now:            now,
	}
}

// NewQRCode returns a gate pass token of the form QR<unix-millis>_<random>
func NewQRCode(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("QR%d_%s", now.UnixMilli(), random)
}

func (s *visitorService) Register(ctx context.Context, actor domain.Actor, reg *domain.VisitorRegistration) (*domain.Visitor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.register")
	defer span.End()

	if err := actor.Authorize(domain.OpVisitorRegister); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}
	if reg == nil {
		reg = &domain.VisitorRegistration{}
	}
	v, err := s.create(ctx, actor, reg)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("visitor_id", v.ID), attribute.String("host_id", v.HostID))
	span.SetStatus(codes.Ok, "")
	return v, nil
}

// create validates, stores and announces one visitor; callers have authorized the actor
func (s *visitorService) create(ctx context.Context, actor domain.Actor, reg *domain.VisitorRegistration) (*domain.Visitor, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	r := *reg
	// Residents always host their own visitors
	if actor.Role == domain.RoleResident || r.HostID == "" {
		r.HostID = actor.UserID
		r.HostName = actor.Name
		r.HostApartment = actor.Apartment
	}

	now := s.now()
	v := domain.NewVisitor(uuid.New().String(), NewQRCode(now), &r, now, s.passValidity)
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to store visitor: %w", err)
	}

	metrics.RecordVisitorRegistered(ctx, string(v.Source))
	publish(ctx, s.eventPublisher, domain.NewVisitorEvent(uuid.New().String(), domain.EventVisitorRegistered, v, actor.UserID))
	return v, nil
}

func (s *visitorService) BulkRegister(ctx context.Context, actor domain.Actor, rows []BulkRow) (*BulkResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.bulk_register")
	defer span.End()

	if err := actor.Authorize(domain.OpVisitorBulkRegister); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	result := &BulkResult{
		Total:    len(rows),
		Accepted: make([]*domain.Visitor, 0, len(rows)),
		Rejected: make([]RowRejection, 0),
	}
	for i, row := range rows {
		rowNum := row.Row
		if rowNum == 0 {
			rowNum = i + 1
		}
		var reg domain.VisitorRegistration
		if row.Registration != nil {
			reg = *row.Registration
		}
		if reg.Source == "" {
			reg.Source = domain.SourceBulkImport
		}

		v, err := s.create(ctx, actor, &reg)
		if err != nil {
			result.Rejected = append(result.Rejected, RowRejection{
				Row:    rowNum,
				Line:   row.Line,
				Errors: errorMessages(err),
			})
			continue
		}
		result.Accepted = append(result.Accepted, v)
	}

	metrics.RecordBulkRejected(ctx, len(result.Rejected))
	span.SetAttributes(
		attribute.Int("total", result.Total),
		attribute.Int("accepted", len(result.Accepted)),
		attribute.Int("rejected", len(result.Rejected)),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// errorMessages flattens a validation error into its messages
func errorMessages(err error) []string {
	if ve, ok := domain.AsValidationError(err); ok {
		return ve.Messages()
	}
	return []string{err.Error()}
}

func (s *visitorService) Transition(ctx context.Context, actor domain.Actor, visitorID string, action domain.VisitorAction) (*domain.Visitor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.transition")
	defer span.End()
	span.SetAttributes(attribute.String("visitor_id", visitorID), attribute.String("action", string(action)))

	op := action.Operation()
	if op == "" {
		err := domain.NewValidationError()
		err.Add("action", fmt.Sprintf("Unknown action %q", action))
		return nil, err
	}
	if err := actor.Authorize(op); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	// Let an outdated pass expire before the action is judged against it
	if _, err := s.expireOne(ctx, visitorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.now()
	v, err := s.repo.Update(ctx, visitorID, func(v *domain.Visitor) error {
		if actor.Role == domain.RoleResident && v.HostID != actor.UserID {
			return fmt.Errorf("%w: visitor is hosted by another resident", domain.ErrForbidden)
		}
		return v.Apply(action, now)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordVisitorTransition(ctx, string(action))
	publish(ctx, s.eventPublisher, domain.NewVisitorEvent(uuid.New().String(), domain.VisitorEventFor(action), v, actor.UserID))
	span.SetStatus(codes.Ok, "")
	return v, nil
}

func (s *visitorService) SetBlacklisted(ctx context.Context, actor domain.Actor, visitorID string, blacklisted bool) (*domain.Visitor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.blacklist")
	defer span.End()

	if err := actor.Authorize(domain.OpVisitorBlacklist); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return nil, err
	}

	now := s.now()
	v, err := s.repo.Update(ctx, visitorID, func(v *domain.Visitor) error {
		v.IsBlacklisted = blacklisted
		v.UpdatedAt = now
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publish(ctx, s.eventPublisher, domain.NewVisitorEvent(uuid.New().String(), domain.EventVisitorBlacklisted, v, actor.UserID))
	span.SetStatus(codes.Ok, "")
	return v, nil
}

func (s *visitorService) Get(ctx context.Context, actor domain.Actor, visitorID string) (*domain.Visitor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.get")
	defer span.End()

	if err := actor.Authorize(domain.OpVisitorRead); err != nil {
		return nil, err
	}
	return s.expireOne(ctx, visitorID)
}

func (s *visitorService) GetByQRCode(ctx context.Context, actor domain.Actor, code string) (*domain.Visitor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.get_by_qr")
	defer span.End()

	if err := actor.Authorize(domain.OpVisitorRead); err != nil {
		return nil, err
	}
	v, err := s.repo.GetByQRCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.expireOne(ctx, v.ID)
}

func (s *visitorService) List(ctx context.Context, actor domain.Actor, filter repository.VisitorFilter) ([]*domain.Visitor, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.visitor.list")
	defer span.End()

	if err := actor.Authorize(domain.OpVisitorRead); err != nil {
		return nil, err
	}
	if _, err := s.ExpireStale(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

func (s *visitorService) CheckZoneAccess(ctx context.Context, actor domain.Actor, visitorID, zone string) (bool, error) {
	v, err := s.Get(ctx, actor, visitorID)
	if err != nil {
		return false, err
	}
	return v.CanAccessZone(zone), nil
}

func (s *visitorService) ExpireStale(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.announceExpired(ctx, expired)
	return len(expired), nil
}

func (s *visitorService) CountOnSite(ctx context.Context) (int, error) {
	if _, err := s.ExpireStale(ctx); err != nil {
		return 0, err
	}
	checkedIn, err := s.repo.List(ctx, repository.VisitorFilter{Status: domain.VisitorStatusCheckedIn})
	if err != nil {
		return 0, err
	}
	now := s.now()
	count := 0
	for _, v := range checkedIn {
		if v.IsOnSite(now) {
			count++
		}
	}
	return count, nil
}

// expireOne reads a visitor and expires it first when its pass is stale
func (s *visitorService) expireOne(ctx context.Context, visitorID string) (*domain.Visitor, error) {
	v, err := s.repo.GetByID(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !v.IsStale(now) {
		return v, nil
	}

	expired := false
	v, err = s.repo.Update(ctx, visitorID, func(v *domain.Visitor) error {
		expired = v.ExpireIfStale(now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		s.announceExpired(ctx, []*domain.Visitor{v})
	}
	return v, nil
}

func (s *visitorService) announceExpired(ctx context.Context, expired []*domain.Visitor) {
	if len(expired) == 0 {
		return
	}
	onSite := 0
	for _, v := range expired {
		// checked in without a check-out means the pass ran out on site
		if v.CheckInTime != nil && v.CheckOutTime == nil {
			onSite++
		}
		publish(ctx, s.eventPublisher, domain.NewVisitorEvent(uuid.New().String(), domain.EventVisitorExpired, v, domain.SystemActor.UserID))
	}
	metrics.RecordVisitorsExpired(ctx, len(expired), onSite)
}
