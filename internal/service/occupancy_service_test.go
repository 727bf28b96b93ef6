package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/repository"
)

// mockVisitorService embeds the interface so a test overrides only what it needs
type mockVisitorService struct {
	VisitorService
	CountOnSiteFunc func(ctx context.Context) (int, error)
}

func (m *mockVisitorService) CountOnSite(ctx context.Context) (int, error) {
	return m.CountOnSiteFunc(ctx)
}

func TestOccupancyService_SiteOccupancy(t *testing.T) {
	ctx := context.Background()
	amenities, _, _ := newTestAmenityService(t, library(30), cinemaHall())
	visitors, _, _, _ := newTestVisitorService()

	for i := 0; i < 4; i++ {
		_, err := amenities.CheckIn(ctx, residentActor, "library")
		require.NoError(t, err)
	}
	v, err := visitors.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)
	_, err = visitors.Transition(ctx, residentActor, v.ID, domain.VisitorActionApprove)
	require.NoError(t, err)
	_, err = visitors.Transition(ctx, securityActor, v.ID, domain.VisitorActionCheckIn)
	require.NoError(t, err)

	svc := NewOccupancyService(amenities, visitors)

	site, err := svc.SiteOccupancy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, site.Total)
	assert.Equal(t, 1, site.Visitors)
	require.Len(t, site.Amenities, 2)

	total, err := svc.TotalOccupancy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestOccupancyService_VisitorCountError(t *testing.T) {
	amenities, _, _ := newTestAmenityService(t)
	visitors := &mockVisitorService{
		CountOnSiteFunc: func(ctx context.Context) (int, error) {
			return 0, errors.New("store unavailable")
		},
	}

	_, err := NewOccupancyService(amenities, visitors).TotalOccupancy(context.Background())
	assert.Error(t, err)
}

func TestAnalyticsService_Summary(t *testing.T) {
	ctx := context.Background()
	amenities, amenityRepo, _ := newTestAmenityService(t, library(10), musicRoom())
	visitors, _, _, _ := newTestVisitorService()
	bookingRepo := repository.NewMemoryBookingRepository()
	bookings := NewBookingService(bookingRepo, amenityRepo, nil, nil, nil)
	alerts, _ := newTestAlertService()
	occupancy := NewOccupancyService(amenities, visitors)

	_, err := visitors.Register(ctx, residentActor, validRegistration())
	require.NoError(t, err)
	later := validRegistration()
	later.VisitDate = "2025-03-15"
	approved, err := visitors.Register(ctx, residentActor, later)
	require.NoError(t, err)
	_, err = visitors.Transition(ctx, residentActor, approved.ID, domain.VisitorActionApprove)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		_, err = amenities.CheckIn(ctx, residentActor, "library")
		require.NoError(t, err)
	}

	booked, err := bookings.Create(ctx, residentActor, &domain.BookingRequest{AmenityID: "music", Date: "2025-03-14", StartTime: "10:00", EndTime: "11:00"})
	require.NoError(t, err)
	cancelled, err := bookings.Create(ctx, residentActor, &domain.BookingRequest{AmenityID: "music", Date: "2025-03-14", StartTime: "12:00", EndTime: "13:00"})
	require.NoError(t, err)
	_, err = bookings.Transition(ctx, residentActor, cancelled.ID, domain.BookingActionCancel)
	require.NoError(t, err)

	_, err = alerts.Trigger(ctx, securityActor, &domain.AlertTrigger{Type: domain.AlertTypeMedical, Message: "Gym"})
	require.NoError(t, err)

	svc := NewAnalyticsService(visitors, amenities, bookingRepo, alerts, occupancy)

	summary, err := svc.Summary(ctx, facilityActor, "2025-03-14")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.VisitorsByStatus[domain.VisitorStatusPending])
	assert.Equal(t, 1, summary.VisitorsByStatus[domain.VisitorStatusApproved])
	assert.Equal(t, 1, summary.ExpectedVisitors)
	assert.Equal(t, 1, summary.ActiveBookings, "cancelled %s is not active, %s is", cancelled.ID, booked.ID)
	assert.Equal(t, 1, summary.ActiveAlerts)
	assert.Equal(t, 8, summary.TotalOccupancy)

	var lib AmenityUtilisation
	for _, u := range summary.Utilisation {
		if u.AmenityID == "library" {
			lib = u
		}
	}
	assert.InDelta(t, 0.8, lib.Rate, 1e-9)
	assert.Equal(t, domain.OccupancyBusy, lib.Status)

	_, err = svc.Summary(ctx, residentActor, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Summary(ctx, adminActor, "March 14")
	assert.True(t, domain.IsValidationError(err))
}
