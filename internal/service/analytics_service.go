package service

import (
	"context"
	"time"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// AmenityUtilisation is the load of one amenity
type AmenityUtilisation struct {
	AmenityID string                 `json:"amenity_id"`
	Name      string                 `json:"name"`
	Rate      float64                `json:"rate"`
	Status    domain.OccupancyStatus `json:"status"`
}

// AnalyticsSummary is the dashboard read model for one day
type AnalyticsSummary struct {
	Date             string                       `json:"date"`
	VisitorsByStatus map[domain.VisitorStatus]int `json:"visitors_by_status"`
	ExpectedVisitors int                          `json:"expected_visitors"`
	ActiveBookings   int                          `json:"active_bookings"`
	Utilisation      []AmenityUtilisation         `json:"utilisation"`
	ActiveAlerts     int                          `json:"active_alerts"`
	TotalOccupancy   int                          `json:"total_occupancy"`
}

// AnalyticsService builds read models across aggregates
type AnalyticsService interface {
	Summary(ctx context.Context, actor domain.Actor, date string) (*AnalyticsSummary, error)
}

type analyticsService struct {
	visitors  VisitorService
	amenities AmenityService
	bookings  repository.BookingRepository
	alerts    AlertService
	occupancy OccupancyService
	now       func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	visitors VisitorService,
	amenities AmenityService,
	bookings repository.BookingRepository,
	alerts AlertService,
	occupancy OccupancyService,
) AnalyticsService {
	return &analyticsService{
		visitors:  visitors,
		amenities: amenities,
		bookings:  bookings,
		alerts:    alerts,
		occupancy: occupancy,
		now:       time.Now,
	}
}

// Summary reports counts for the date, today when empty
func (s *analyticsService) Summary(ctx context.Context, actor domain.Actor, date string) (*AnalyticsSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.analytics.summary")
	defer span.End()

	if err := actor.Authorize(domain.OpAnalyticsRead); err != nil {
		return nil, err
	}
	if date == "" {
		date = s.now().Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		verr := domain.NewValidationError()
		verr.Add("date", "Date must be in YYYY-MM-DD format")
		return nil, verr
	}

	visitors, err := s.visitors.List(ctx, actor, repository.VisitorFilter{})
	if err != nil {
		return nil, err
	}
	summary := &AnalyticsSummary{
		Date:             date,
		VisitorsByStatus: make(map[domain.VisitorStatus]int),
	}
	for _, v := range visitors {
		summary.VisitorsByStatus[v.Status]++
		if v.VisitDate == date {
			summary.ExpectedVisitors++
		}
	}

	bookings, err := s.bookings.List(ctx, repository.BookingFilter{Date: date})
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.Status == domain.BookingStatusPending || b.Status == domain.BookingStatusConfirmed {
			summary.ActiveBookings++
		}
	}

	amenities, err := s.amenities.List(ctx)
	if err != nil {
		return nil, err
	}
	summary.Utilisation = make([]AmenityUtilisation, 0, len(amenities))
	for _, a := range amenities {
		summary.Utilisation = append(summary.Utilisation, AmenityUtilisation{
			AmenityID: a.ID,
			Name:      a.Name,
			Rate:      a.OccupancyRate,
			Status:    a.OccupancyStatus,
		})
	}

	active, err := s.alerts.List(ctx, true)
	if err != nil {
		return nil, err
	}
	summary.ActiveAlerts = len(active)

	if summary.TotalOccupancy, err = s.occupancy.TotalOccupancy(ctx); err != nil {
		return nil, err
	}
	return summary, nil
}
