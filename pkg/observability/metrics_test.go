package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/streamgraph/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.SweepMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	sm, err := observability.NewSweepMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return sm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestSweepMetrics_Record(t *testing.T) {
	t.Parallel()

	sm, reader := setupTestMeter(t)

	sm.Record(context.Background(), observability.SweepRecord{
		Op: "union", Mode: "discrete", Status: observability.StatusOK, Duration: time.Millisecond, Events: 8,
	})

	rm := collectMetrics(t, reader)

	require.NotNil(t, findMetric(rm, "streamgraph.sweeps.total"))
	require.NotNil(t, findMetric(rm, "streamgraph.sweep.duration.seconds"))

	events := findMetric(rm, "streamgraph.sweep.events.total")
	require.NotNil(t, events)

	sum, ok := events.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(8), sum.DataPoints[0].Value)

	assert.Nil(t, findMetric(rm, "streamgraph.errors.total"), "no error recorded yet")
}

func TestSweepMetrics_RecordError(t *testing.T) {
	t.Parallel()

	sm, reader := setupTestMeter(t)

	sm.Record(context.Background(), observability.SweepRecord{Op: "cliques", Status: observability.StatusError})

	require.NotNil(t, findMetric(collectMetrics(t, reader), "streamgraph.errors.total"))
}

func TestSweepMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	sm, reader := setupTestMeter(t)

	done := sm.TrackInflight(context.Background(), "measure")
	require.NotNil(t, findMetric(collectMetrics(t, reader), "streamgraph.inflight.sweeps"))

	done()
}

func TestSweepMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var sm *observability.SweepMetrics

	sm.Record(context.Background(), observability.SweepRecord{Op: "merge"})
	sm.TrackInflight(context.Background(), "merge")()
}
