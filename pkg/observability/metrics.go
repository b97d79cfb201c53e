package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricSweepsTotal    = "streamgraph.sweeps.total"
	metricSweepDuration  = "streamgraph.sweep.duration.seconds"
	metricEventsTotal    = "streamgraph.sweep.events.total"
	metricErrorsTotal    = "streamgraph.errors.total"
	metricInflightSweeps = "streamgraph.inflight.sweeps"

	attrOp     = "op"
	attrMode   = "mode"
	attrStatus = "status"

	// StatusOK marks a completed operation.
	StatusOK = "ok"
	// StatusError marks a failed operation.
	StatusError = "error"
)

// durationBucketBoundaries covers 100µs to 60s.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60}

// SweepMetrics holds the OTel instruments recording algebra operations.
type SweepMetrics struct {
	sweepsTotal    metric.Int64Counter
	sweepDuration  metric.Float64Histogram
	eventsTotal    metric.Int64Counter
	errorsTotal    metric.Int64Counter
	inflightSweeps metric.Int64UpDownCounter
}

// SweepRecord describes one completed operation.
type SweepRecord struct {
	Op       string
	Mode     string
	Status   string
	Duration time.Duration
	Events   int
}

// NewSweepMetrics creates the sweep instruments from mt.
func NewSweepMetrics(mt metric.Meter) (*SweepMetrics, error) {
	sweeps, err := mt.Int64Counter(metricSweepsTotal,
		metric.WithDescription("Total number of algebra operations"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSweepsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricSweepDuration,
		metric.WithDescription("Algebra operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSweepDuration, err)
	}

	events, err := mt.Int64Counter(metricEventsTotal,
		metric.WithDescription("Total number of swept half-events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricEventsTotal, err)
	}

	errs, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightSweeps,
		metric.WithDescription("Number of running operations"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightSweeps, err)
	}

	return &SweepMetrics{
		sweepsTotal:    sweeps,
		sweepDuration:  duration,
		eventsTotal:    events,
		errorsTotal:    errs,
		inflightSweeps: inflight,
	}, nil
}

// Record records a completed operation. Safe to call on a nil receiver.
func (sm *SweepMetrics) Record(ctx context.Context, rec SweepRecord) {
	if sm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, rec.Op),
		attribute.String(attrMode, rec.Mode),
		attribute.String(attrStatus, rec.Status),
	)

	sm.sweepsTotal.Add(ctx, 1, attrs)
	sm.sweepDuration.Record(ctx, rec.Duration.Seconds(), attrs)
	sm.eventsTotal.Add(ctx, int64(rec.Events), metric.WithAttributes(
		attribute.String(attrOp, rec.Op),
		attribute.String(attrMode, rec.Mode),
	))

	if rec.Status == StatusError {
		sm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, rec.Op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (sm *SweepMetrics) TrackInflight(ctx context.Context, op string) func() {
	if sm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	sm.inflightSweeps.Add(ctx, 1, attrs)

	return func() {
		sm.inflightSweeps.Add(ctx, -1, attrs)
	}
}
