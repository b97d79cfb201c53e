package wcontinuous_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/wcontinuous"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

var (
	weighted = table.Schema{Weighted: true}
	defaults = wcontinuous.Defaults(0)
)

func mustTable(t *testing.T, schema table.Schema, rows ...table.Row) *table.Table {
	t.Helper()

	tbl, err := table.New(schema, rows...)
	require.NoError(t, err)

	return tbl
}

// TestUnionAddsOverlap verifies the additive union of two overlapping intervals.
func TestUnionAddsOverlap(t *testing.T) {
	t.Parallel()

	got, err := wcontinuous.Union(
		mustTable(t, weighted, table.Weighted(1, 3, 2)),
		mustTable(t, weighted, table.Weighted(2, 4, 3)),
		defaults.Union,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"[1, 2) w=2", "[2, 3] w=5", "(3, 4] w=3"}, got.Lines())
}

func TestMergeSumsInstant(t *testing.T) {
	t.Parallel()

	got, err := wcontinuous.Merge(
		mustTable(t, weighted, table.Weighted(1, 5, 1), table.Weighted(3, 3, 1)),
		defaults.Merge,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"[1, 3) w=1", "[3, 3] w=2", "(3, 5] w=1"}, got.Lines())
}

func TestMergeToleranceKeepsPiece(t *testing.T) {
	t.Parallel()

	in := mustTable(t, weighted,
		table.Row{Ts: 0, Tf: 2, StartClosed: true, EndClosed: false, W: 1},
		table.Weighted(2, 4, 1.0000001),
	)

	exact, err := wcontinuous.Merge(in, defaults.Merge)
	require.NoError(t, err)
	assert.Len(t, exact.Lines(), 2)

	tolerant, err := wcontinuous.Merge(in, defaults.Merge, wcontinuous.Tolerance(1e-6))
	require.NoError(t, err)
	assert.Equal(t, []string{"[0, 4] w=1"}, tolerant.Lines())
}

func TestIntersectionKeepsMinimum(t *testing.T) {
	t.Parallel()

	got, err := wcontinuous.Intersection(
		mustTable(t, weighted, table.Weighted(0, 10, 4)),
		mustTable(t, weighted, table.Weighted(2, 4, 1), table.Weighted(6, 12, 9)),
		defaults.Intersection,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"[2, 4] w=1", "[6, 10] w=4"}, got.Lines())
}

func TestHingeDifference(t *testing.T) {
	t.Parallel()

	got, err := wcontinuous.Difference(
		mustTable(t, weighted, table.Weighted(0, 10, 3)),
		mustTable(t, weighted, table.Weighted(2, 4, 1), table.Weighted(6, 8, 5)),
		defaults.Difference,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"[0, 2) w=3", "[2, 4] w=2", "(4, 6) w=3", "(8, 10] w=3"}, got.Lines())
}

func TestWeightedPredicates(t *testing.T) {
	t.Parallel()

	a := mustTable(t, weighted, table.Weighted(0, 10, 3))
	low := mustTable(t, weighted, table.Weighted(2, 4, 2))
	high := mustTable(t, weighted, table.Weighted(2, 4, 5))

	covers, err := wcontinuous.IsSuperset(a, low, defaults.Superset)
	require.NoError(t, err)
	assert.True(t, covers)

	covers, err = wcontinuous.IsSuperset(a, high, defaults.Superset)
	require.NoError(t, err)
	assert.False(t, covers, "weight 3 does not cover 5")

	covers, err = wcontinuous.IsSuperset(a, high, combine.Always)
	require.NoError(t, err)
	assert.True(t, covers)

	meets, err := wcontinuous.NonemptyIntersection(a, high, defaults.Nonempty)
	require.NoError(t, err)
	assert.False(t, meets)

	meets, err = wcontinuous.NonemptyIntersection(a, low, defaults.Nonempty)
	require.NoError(t, err)
	assert.True(t, meets)
}

func TestMeasures(t *testing.T) {
	t.Parallel()

	a := mustTable(t, weighted, table.Weighted(0, 4, 2))
	b := mustTable(t, weighted, table.Weighted(2, 6, 3))

	product, err := wcontinuous.IntersectionMeasure(a, b, defaults.Measure)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, product, 1e-12)

	least, err := wcontinuous.IntersectionMeasure(a, b, combine.MinOfSums)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, least, 1e-12)
}

func TestMapIntersectionIsUnweighted(t *testing.T) {
	t.Parallel()

	links := mustTable(t, table.Schema{Keys: []string{"u", "v"}, Weighted: true}, table.Weighted(0, 5, 7, "1", "2"))
	base := mustTable(t, table.Schema{Keys: []string{"u"}, Weighted: true}, table.Weighted(1, 9, 3, "1"))

	got, err := wcontinuous.MapIntersection(links, base)
	require.NoError(t, err)
	assert.False(t, got.Schema().Weighted)
	assert.Equal(t, []string{"2 [1, 5]"}, got.Lines())
}
