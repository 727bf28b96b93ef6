package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

var (
	// Visitor counters
	VisitorsRegistered  *telemetry.Counter
	VisitorsRejectedRow *telemetry.Counter
	VisitorTransitions  *telemetry.Counter
	VisitorsExpired     *telemetry.Counter
	VisitorsOnSite      *telemetry.UpDownCounter

	// Amenity counters
	AmenityCheckIns  *telemetry.Counter
	AmenityCheckOuts *telemetry.Counter
	AmenityRejected  *telemetry.Counter

	// Booking counters
	BookingsCreated  *telemetry.Counter
	BookingsRejected *telemetry.Counter
	BookingRevenue   *telemetry.Histogram

	// Alert counters
	AlertsTriggered    *telemetry.Counter
	AlertsAcknowledged *telemetry.Counter
	AlertsResolved     *telemetry.Counter

	// Error tracking
	ErrorsTotal     *telemetry.Counter
	RequestDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all service metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	counters := []struct {
		dst  **telemetry.Counter
		opts telemetry.MetricOpts
	}{
		{&VisitorsRegistered, telemetry.MetricOpts{Name: "visitor_registrations_total", Description: "Total number of visitors registered", Unit: "1"}},
		{&VisitorsRejectedRow, telemetry.MetricOpts{Name: "visitor_bulk_rejected_rows_total", Description: "Total number of bulk import rows rejected", Unit: "1"}},
		{&VisitorTransitions, telemetry.MetricOpts{Name: "visitor_transitions_total", Description: "Total number of visitor lifecycle transitions", Unit: "1"}},
		{&VisitorsExpired, telemetry.MetricOpts{Name: "visitor_expirations_total", Description: "Total number of visitor passes expired", Unit: "1"}},
		{&AmenityCheckIns, telemetry.MetricOpts{Name: "amenity_checkins_total", Description: "Total number of open-access check-ins", Unit: "1"}},
		{&AmenityCheckOuts, telemetry.MetricOpts{Name: "amenity_checkouts_total", Description: "Total number of open-access check-outs", Unit: "1"}},
		{&AmenityRejected, telemetry.MetricOpts{Name: "amenity_checkin_rejections_total", Description: "Total number of refused check-ins", Unit: "1"}},
		{&BookingsCreated, telemetry.MetricOpts{Name: "booking_created_total", Description: "Total number of amenity bookings created", Unit: "1"}},
		{&BookingsRejected, telemetry.MetricOpts{Name: "booking_rejections_total", Description: "Total number of refused booking requests", Unit: "1"}},
		{&AlertsTriggered, telemetry.MetricOpts{Name: "alert_triggered_total", Description: "Total number of emergency alerts triggered", Unit: "1"}},
		{&AlertsAcknowledged, telemetry.MetricOpts{Name: "alert_acknowledgements_total", Description: "Total number of new alert acknowledgements", Unit: "1"}},
		{&AlertsResolved, telemetry.MetricOpts{Name: "alert_resolved_total", Description: "Total number of alerts resolved", Unit: "1"}},
		{&ErrorsTotal, telemetry.MetricOpts{Name: "residence_errors_total", Description: "Total number of errors by type", Unit: "1"}},
	}
	for _, c := range counters {
		counter, err := telemetry.NewCounter(c.opts)
		if err != nil {
			return err
		}
		*c.dst = counter
	}

	var err error
	VisitorsOnSite, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "visitor_on_site",
		Description: "Current number of checked-in visitors",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingRevenue, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "booking_amount",
		Description: "Booking totals charged",
		Unit:        "1",
	}, []float64{0, 10, 25, 50, 100, 200, 500, 1000})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "residence_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	return err
}

// RecordVisitorRegistered records a new visitor
func RecordVisitorRegistered(ctx context.Context, source string) {
	if VisitorsRegistered != nil {
		VisitorsRegistered.Inc(ctx, attribute.String("source", source))
	}
}

// RecordBulkRejected records rows refused by a bulk import
func RecordBulkRejected(ctx context.Context, rows int) {
	if VisitorsRejectedRow != nil && rows > 0 {
		VisitorsRejectedRow.Add(ctx, int64(rows))
	}
}

// RecordVisitorTransition records a lifecycle action and tracks on-site headcount
func RecordVisitorTransition(ctx context.Context, action string) {
	if VisitorTransitions != nil {
		VisitorTransitions.Inc(ctx, attribute.String("action", action))
	}
	if VisitorsOnSite == nil {
		return
	}
	switch action {
	case "check-in":
		VisitorsOnSite.Inc(ctx)
	case "check-out":
		VisitorsOnSite.Dec(ctx)
	}
}

// RecordVisitorsExpired records expired passes; checked-in ones leave the headcount
func RecordVisitorsExpired(ctx context.Context, count, wereOnSite int) {
	if VisitorsExpired != nil && count > 0 {
		VisitorsExpired.Add(ctx, int64(count))
	}
	if VisitorsOnSite != nil && wereOnSite > 0 {
		VisitorsOnSite.Add(ctx, -int64(wereOnSite))
	}
}

// RecordAmenityCheckIn records an open-access check-in
func RecordAmenityCheckIn(ctx context.Context, amenityID string) {
	if AmenityCheckIns != nil {
		AmenityCheckIns.Inc(ctx, attribute.String("amenity_id", amenityID))
	}
}

// RecordAmenityCheckOut records an open-access check-out
func RecordAmenityCheckOut(ctx context.Context, amenityID string) {
	if AmenityCheckOuts != nil {
		AmenityCheckOuts.Inc(ctx, attribute.String("amenity_id", amenityID))
	}
}

// RecordAmenityRejected records a refused check-in
func RecordAmenityRejected(ctx context.Context, amenityID, reason string) {
	if AmenityRejected != nil {
		AmenityRejected.Inc(ctx,
			attribute.String("amenity_id", amenityID),
			attribute.String("reason", reason),
		)
	}
}

// RecordBookingCreated records a booking and its amount
func RecordBookingCreated(ctx context.Context, amenityID, status string, amount float64) {
	if BookingsCreated != nil {
		BookingsCreated.Inc(ctx,
			attribute.String("amenity_id", amenityID),
			attribute.String("status", status),
		)
	}
	if BookingRevenue != nil && amount > 0 {
		BookingRevenue.Record(ctx, amount, attribute.String("amenity_id", amenityID))
	}
}

// RecordBookingRejected records a refused booking request
func RecordBookingRejected(ctx context.Context, amenityID, reason string) {
	if BookingsRejected != nil {
		BookingsRejected.Inc(ctx,
			attribute.String("amenity_id", amenityID),
			attribute.String("reason", reason),
		)
	}
}

// RecordAlertTriggered records a new alert
func RecordAlertTriggered(ctx context.Context, alertType, severity string) {
	if AlertsTriggered != nil {
		AlertsTriggered.Inc(ctx,
			attribute.String("type", alertType),
			attribute.String("severity", severity),
		)
	}
}

// RecordAlertAcknowledged records a first acknowledgement by a user
func RecordAlertAcknowledged(ctx context.Context, alertType string) {
	if AlertsAcknowledged != nil {
		AlertsAcknowledged.Inc(ctx, attribute.String("type", alertType))
	}
}

// RecordAlertResolved records a resolution
func RecordAlertResolved(ctx context.Context, alertType string) {
	if AlertsResolved != nil {
		AlertsResolved.Inc(ctx, attribute.String("type", alertType))
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, route string, status int, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("route", route),
			attribute.Int("status", status),
		)
	}
}
