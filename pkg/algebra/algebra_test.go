package algebra_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/clique"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/algebra"
	"github.com/Sumatoshi-tech/streamgraph/pkg/observability"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

var (
	nodes    = table.Schema{Keys: []string{"u"}}
	wnodes   = table.Schema{Keys: []string{"u"}, Weighted: true}
	discrete = table.Schema{Keys: []string{"u"}, Discrete: true}
	points   = table.Schema{Keys: []string{"u"}, Weighted: true, Instant: true}
	links    = table.Schema{Keys: []string{"u", "v"}}
)

func mustTable(t *testing.T, schema table.Schema, rows ...table.Row) *table.Table {
	t.Helper()

	tbl, err := table.New(schema, rows...)
	require.NoError(t, err)

	return tbl
}

func newAlgebra(t *testing.T, opts algebra.Options, with ...algebra.Option) *algebra.Algebra {
	t.Helper()

	a, err := algebra.New(opts, with...)
	require.NoError(t, err)

	return a
}

func TestModeOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		schema table.Schema
		want   algebra.Mode
	}{
		{nodes, algebra.Continuous},
		{discrete, algebra.Discrete},
		{wnodes, algebra.WeightedContinuous},
		{table.Schema{Discrete: true, Weighted: true}, algebra.WeightedDiscrete},
		{points, algebra.Instantaneous},
	}

	for _, tc := range cases {
		got, err := algebra.ModeOf(tc.schema, tc.schema)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.want.String())
	}

	_, err := algebra.ModeOf(nodes, discrete)
	require.ErrorIs(t, err, algebra.ErrSchemaMismatch)

	_, err = algebra.ModeOf()
	require.ErrorIs(t, err, algebra.ErrSchemaMismatch)
}

func TestDispatchUnweighted(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})
	ctx := context.Background()

	x := mustTable(t, discrete, table.Span(1, 5, "n"))
	y := mustTable(t, discrete, table.Span(3, 3, "n"))

	diff, err := a.Difference(ctx, x, y)
	require.NoError(t, err)
	assert.Equal(t, []string{"n [1, 2]", "n [4, 5]"}, diff.Lines())

	covers, err := a.IsSuperset(ctx, x, y)
	require.NoError(t, err)
	assert.True(t, covers)

	meets, err := a.NonemptyIntersection(ctx, diff, y)
	require.NoError(t, err)
	assert.False(t, meets)

	merged, err := a.Merge(ctx, mustTable(t, nodes, table.Span(0, 2, "n"), table.Span(1, 4, "n")))
	require.NoError(t, err)
	assert.Equal(t, []string{"n [0, 4]"}, merged.Lines())
}

func TestDispatchWeightedWithNamedCombine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	x := mustTable(t, wnodes, table.Weighted(0, 4, 2, "n"))
	y := mustTable(t, wnodes, table.Weighted(2, 6, 5, "n"))

	sum, err := newAlgebra(t, algebra.Options{}).Union(ctx, x, y)
	require.NoError(t, err)
	assert.Equal(t, []string{"n [0, 2) w=2", "n [2, 4] w=7", "n (4, 6] w=5"}, sum.Lines())

	highest, err := newAlgebra(t, algebra.Options{Combine: algebra.Names{Union: "max"}}).Union(ctx, x, y)
	require.NoError(t, err)
	assert.Equal(t, []string{"n [0, 2) w=2", "n [2, 6] w=5"}, highest.Lines())
}

func TestNewRejectsUnknownCombine(t *testing.T) {
	t.Parallel()

	_, err := algebra.New(algebra.Options{Combine: algebra.Names{Measure: "ratio"}})
	require.ErrorIs(t, err, combine.ErrUnknown)
}

func TestDispatchInstantaneous(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})
	ctx := context.Background()

	x := mustTable(t, points, table.Weighted(1, 1, 2, "n"), table.Weighted(2, 2, 3, "n"))
	y := mustTable(t, points, table.Weighted(2, 2, 1, "n"))

	union, err := a.Union(ctx, x, y)
	require.NoError(t, err)
	assert.Equal(t, []string{"n [1, 1] w=2", "n [2, 2] w=4"}, union.Lines())

	measure, err := a.IntersectionMeasure(ctx, x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, measure, 1e-12, "instants have no duration")
}

func TestOnKeyCallOption(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	x := mustTable(t, nodes, table.Span(0, 10, "p"), table.Span(0, 2, "q"))
	ref := mustTable(t, table.Schema{}, table.Span(1, 5))

	got, err := a.Intersection(context.Background(), x, ref, algebra.OnKey())
	require.NoError(t, err)
	assert.Equal(t, []string{"p [1, 5]", "q [1, 2]"}, got.Lines())

	_, err = a.Intersection(context.Background(), x, ref)
	require.ErrorIs(t, err, algebra.ErrSchemaMismatch)
}

func TestMismatchedModesFail(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	_, err := a.Union(context.Background(), mustTable(t, nodes), mustTable(t, discrete))
	require.ErrorIs(t, err, algebra.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "union")
}

func TestCartesianAndNeighborhood(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})
	ctx := context.Background()

	lk := mustTable(t, links, table.Span(0, 10, "a", "b"), table.Span(5, 8, "c", "b"))
	base := mustTable(t, nodes, table.Span(2, 4, "a"), table.Span(0, 6, "c"), table.Span(1, 3, "b"))

	cart, err := a.CartesianIntersection(ctx, lk, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"a,b [2, 3]"}, cart.Lines())

	out, err := a.Neighborhood(ctx, lk, base, clique.Out)
	require.NoError(t, err)
	assert.Equal(t, []string{"b [2, 4]", "b [5, 6]"}, out.Lines())

	in, err := a.Neighborhood(ctx, lk, base, clique.In)
	require.NoError(t, err)
	assert.Equal(t, []string{"a [1, 3]"}, in.Lines())
	assert.Equal(t, []string{"u"}, in.Schema().Keys)

	both, err := a.Neighborhood(ctx, lk, base, clique.Both)
	require.NoError(t, err)
	assert.Equal(t, []string{"a [1, 3]", "b [2, 4]", "b [5, 6]"}, both.Lines())
}

func TestObservedCall(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	sm, err := observability.NewSweepMetrics(mp.Meter("test"))
	require.NoError(t, err)

	var logs bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := newAlgebra(t, algebra.Options{},
		algebra.WithTracer(tp.Tracer("test")), algebra.WithMetrics(sm), algebra.WithLogger(logger))

	_, err = a.Merge(context.Background(), mustTable(t, nodes, table.Span(0, 1, "n")))
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "algebra.merge", spans[0].Name())

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := make([]string, 0, len(rm.ScopeMetrics[0].Metrics))
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names = append(names, m.Name)
	}

	assert.Contains(t, names, "streamgraph.sweeps.total")
	assert.Contains(t, names, "streamgraph.sweep.events.total")
	assert.Contains(t, logs.String(), `"op":"merge"`)
	assert.Contains(t, logs.String(), `"mode":"continuous"`)
}
