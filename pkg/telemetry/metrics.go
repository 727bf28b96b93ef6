package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts describes an instrument
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

func meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Counter is a monotonic int64 counter
type Counter struct {
	c metric.Int64Counter
}

// NewCounter creates a counter on the global meter provider
func NewCounter(opts MetricOpts) (*Counter, error) {
	c, err := meter().Int64Counter(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{c: c}, nil
}

// Inc adds one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Add adds n
func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.c.Add(ctx, n, metric.WithAttributes(attrs...))
}

// UpDownCounter tracks a value that can go down
type UpDownCounter struct {
	c metric.Int64UpDownCounter
}

// NewUpDownCounter creates an up-down counter on the global meter provider
func NewUpDownCounter(opts MetricOpts) (*UpDownCounter, error) {
	c, err := meter().Int64UpDownCounter(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &UpDownCounter{c: c}, nil
}

func (u *UpDownCounter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	u.Add(ctx, 1, attrs...)
}

func (u *UpDownCounter) Dec(ctx context.Context, attrs ...attribute.KeyValue) {
	u.Add(ctx, -1, attrs...)
}

func (u *UpDownCounter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	u.c.Add(ctx, n, metric.WithAttributes(attrs...))
}

// Histogram records a distribution of float64 values
type Histogram struct {
	h metric.Float64Histogram
}

// NewHistogram creates a histogram on the global meter provider
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	return NewHistogramWithBuckets(opts, nil)
}

// NewHistogramWithBuckets creates a histogram with explicit bucket boundaries
func NewHistogramWithBuckets(opts MetricOpts, buckets []float64) (*Histogram, error) {
	histOpts := []metric.Float64HistogramOption{
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	}
	if len(buckets) > 0 {
		histOpts = append(histOpts, metric.WithExplicitBucketBoundaries(buckets...))
	}
	h, err := meter().Float64Histogram(opts.Name, histOpts...)
	if err != nil {
		return nil, err
	}
	return &Histogram{h: h}, nil
}

// Record adds one observation
func (h *Histogram) Record(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.h.Record(ctx, v, metric.WithAttributes(attrs...))
}
