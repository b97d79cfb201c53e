package algebra_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/clique"
	"github.com/Sumatoshi-tech/streamgraph/pkg/algebra"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

func TestMaximalCliquesFoldsBothDirections(t *testing.T) {
	t.Parallel()

	lk := mustTable(t, links,
		table.Span(2, 10, "1", "2"),
		table.Span(3, 5, "2", "1"),
		table.Span(4, 16, "3", "2"),
		table.Span(6, 12, "1", "3"),
		table.Span(8, 16, "3", "4"),
		table.Span(13, 17, "4", "2"),
		table.Span(0, 1, "5", "5"),
	)

	for _, workers := range []int{1, 3} {
		a := newAlgebra(t, algebra.Options{Workers: workers})

		got, err := a.MaximalCliques(context.Background(), lk, clique.Both)
		require.NoError(t, err)

		want := []clique.Clique{
			{Nodes: []string{"1", "2"}, Ts: 2, Tf: 10},
			{Nodes: []string{"2", "3"}, Ts: 4, Tf: 16},
			{Nodes: []string{"1", "2", "3"}, Ts: 6, Tf: 10},
			{Nodes: []string{"1", "3"}, Ts: 6, Tf: 12},
			{Nodes: []string{"3", "4"}, Ts: 8, Tf: 16},
			{Nodes: []string{"2", "3", "4"}, Ts: 13, Tf: 16},
			{Nodes: []string{"2", "4"}, Ts: 13, Tf: 17},
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("workers=%d cliques mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestMaximalCliquesMutualLinks(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	lk := mustTable(t, links,
		table.Span(0, 4, "a", "b"),
		table.Span(2, 6, "b", "a"),
		table.Span(0, 9, "b", "c"),
	)

	for _, dir := range []clique.Direction{clique.In, clique.Out} {
		got, err := a.MaximalCliques(context.Background(), lk, dir)
		require.NoError(t, err)
		assert.Equal(t, []clique.Clique{{Nodes: []string{"a", "b"}, Ts: 2, Tf: 4}}, got, dir.String())
	}
}

func TestMaximalCliquesJoinTouchingWindows(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	lk := mustTable(t, links,
		table.Bounded(1, 3, true, false, "a", "b"),
		table.Span(3, 5, "a", "b"),
		table.Span(7, 8, "a", "b"),
	)

	got, err := a.MaximalCliques(context.Background(), lk, clique.Both)
	require.NoError(t, err)
	assert.Equal(t, []clique.Clique{
		{Nodes: []string{"a", "b"}, Ts: 1, Tf: 5},
		{Nodes: []string{"a", "b"}, Ts: 7, Tf: 8},
	}, got)
}

func TestMaximalCliquesOpenWindows(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	joined := mustTable(t, links,
		table.Span(1, 3, "a", "b"),
		table.Bounded(3, 5, false, true, "a", "b"),
	)

	got, err := a.MaximalCliques(context.Background(), joined, clique.Both)
	require.NoError(t, err)
	assert.Equal(t, []clique.Clique{{Nodes: []string{"a", "b"}, Ts: 1, Tf: 5}}, got)

	cases := map[string]*table.Table{
		"gap at 3": mustTable(t, links,
			table.Bounded(1, 3, true, false, "a", "b"),
			table.Bounded(3, 5, false, true, "a", "b"),
		),
		"lone open end": mustTable(t, links, table.Bounded(1, 3, true, false, "a", "b")),
		"open start":    mustTable(t, links, table.Bounded(1, 3, false, true, "b", "a")),
	}

	for name, lk := range cases {
		_, err := a.MaximalCliques(context.Background(), lk, clique.Both)
		require.ErrorIs(t, err, algebra.ErrPreconditionViolated, name)
	}
}

func TestMaximalCliquesDelta(t *testing.T) {
	t.Parallel()

	stream := []table.Row{
		table.Weighted(4, 4, 1, "1", "2"),
		table.Weighted(8, 8, 2, "1", "2"),
		table.Weighted(4, 4, 1, "2", "3"),
		table.Weighted(6, 6, 1, "1", "3"),
		table.Weighted(2, 2, 1, "3", "4"),
		table.Weighted(3, 3, 2, "2", "4"),
	}

	continuous := []clique.Clique{
		{Nodes: []string{"3", "4"}, Ts: 2, Tf: 3.5},
		{Nodes: []string{"2", "4"}, Ts: 2, Tf: 4.5},
		{Nodes: []string{"2", "3", "4"}, Ts: 2.5, Tf: 3.5},
		{Nodes: []string{"1", "2"}, Ts: 2.5, Tf: 5.5},
		{Nodes: []string{"2", "3"}, Ts: 2.5, Tf: 5.5},
		{Nodes: []string{"1", "2", "3"}, Ts: 4.5, Tf: 5.5},
		{Nodes: []string{"1", "3"}, Ts: 4.5, Tf: 7.5},
		{Nodes: []string{"1", "2"}, Ts: 6.5, Tf: 8},
	}

	// 1-2 widens to [2, 5] and [6, 8], adjacent integer windows that join.
	// 3-4 truncates to [2, 3], inside the window of {2, 3, 4}.
	discrete := []clique.Clique{
		{Nodes: []string{"2", "3", "4"}, Ts: 2, Tf: 3},
		{Nodes: []string{"2", "4"}, Ts: 2, Tf: 4},
		{Nodes: []string{"2", "3"}, Ts: 2, Tf: 5},
		{Nodes: []string{"1", "2"}, Ts: 2, Tf: 8},
		{Nodes: []string{"1", "2", "3"}, Ts: 4, Tf: 5},
		{Nodes: []string{"1", "3"}, Ts: 4, Tf: 7},
	}

	tests := []struct {
		name   string
		schema table.Schema
		want   []clique.Clique
	}{
		{"continuous", table.Schema{Keys: []string{"u", "v"}, Instant: true}, continuous},
		{"weighted", table.Schema{Keys: []string{"u", "v"}, Instant: true, Weighted: true}, continuous},
		{"discrete", table.Schema{Keys: []string{"u", "v"}, Instant: true, Discrete: true}, discrete},
		{"weighted discrete", table.Schema{Keys: []string{"u", "v"}, Instant: true, Discrete: true, Weighted: true}, discrete},
	}

	a := newAlgebra(t, algebra.Options{Workers: 2})

	for _, tc := range tests {
		got, err := a.MaximalCliques(context.Background(), mustTable(t, tc.schema, stream...), clique.Both,
			algebra.Delta(3))
		require.NoError(t, err, tc.name)

		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%s: cliques mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestMaximalCliquesDeltaPreconditions(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})
	instants := mustTable(t, table.Schema{Keys: []string{"u", "v"}, Instant: true}, table.Span(1, 1, "a", "b"))

	_, err := a.MaximalCliques(context.Background(), instants, clique.Both, algebra.Delta(-1))
	require.ErrorIs(t, err, algebra.ErrPreconditionViolated)

	_, err = a.MaximalCliques(context.Background(), mustTable(t, links, table.Span(0, 1, "a", "b")), clique.Both,
		algebra.Delta(2))
	require.ErrorIs(t, err, algebra.ErrPreconditionViolated)

	got, err := a.MaximalCliques(context.Background(), instants, clique.Both, algebra.Delta(4))
	require.NoError(t, err)
	assert.Equal(t, []clique.Clique{{Nodes: []string{"a", "b"}, Ts: 1, Tf: 1}}, got)

	got, err = a.MaximalCliques(context.Background(), instants, clique.Both)
	require.NoError(t, err)
	assert.Equal(t, []clique.Clique{{Nodes: []string{"a", "b"}, Ts: 1, Tf: 1}}, got)
}

func TestMaximalCliquesWeightedDiscrete(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	lk := mustTable(t, table.Schema{Keys: []string{"u", "v"}, Discrete: true, Weighted: true},
		table.Weighted(1, 3, 2, "x", "y"),
		table.Weighted(4, 6, 9, "x", "y"),
	)

	got, err := a.MaximalCliques(context.Background(), lk, clique.Both)
	require.NoError(t, err)
	assert.Equal(t, []clique.Clique{{Nodes: []string{"x", "y"}, Ts: 1, Tf: 6}}, got)
}

func TestMaximalCliquesRejectsBadInput(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	_, err := a.MaximalCliques(context.Background(), mustTable(t, nodes, table.Span(0, 1, "a")), clique.Both)
	require.ErrorIs(t, err, algebra.ErrSchemaMismatch)

	_, err = a.MaximalCliques(context.Background(), mustTable(t, links), clique.Direction(9))
	require.ErrorIs(t, err, algebra.ErrUnsupportedDirection)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.MaximalCliques(ctx, mustTable(t, links, table.Span(0, 1, "a", "b")), clique.Both)
	require.ErrorIs(t, err, context.Canceled)
}
