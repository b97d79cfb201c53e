package continuous_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/continuous"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/sweep"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

const (
	lawSeeds = 25
	lawRows  = 12
	horizon  = 20
)

var nodes = table.Schema{Keys: []string{"u"}}

func mustTable(t *testing.T, schema table.Schema, rows ...table.Row) *table.Table {
	t.Helper()

	tbl, err := table.New(schema, rows...)
	require.NoError(t, err)

	return tbl
}

// randomCanonical returns a merged table of random intervals over two keys.
func randomCanonical(t *testing.T, r *rand.Rand) *table.Table {
	t.Helper()

	rows := make([]table.Row, 0, lawRows)

	for range lawRows {
		ts := float64(r.IntN(horizon))
		tf := ts + float64(r.IntN(5))
		sc, ec := r.IntN(2) == 0, r.IntN(2) == 0

		if ts == tf {
			sc, ec = true, true
		}

		key := "a"
		if r.IntN(2) == 0 {
			key = "b"
		}

		rows = append(rows, table.Bounded(ts, tf, sc, ec, key))
	}

	merged, err := continuous.Merge(mustTable(t, nodes, rows...))
	require.NoError(t, err)

	return merged
}

func TestMergeExamples(t *testing.T) {
	t.Parallel()

	flat := table.Schema{}

	got, err := continuous.Merge(mustTable(t, flat, table.Span(1, 3), table.Span(3, 5)))
	require.NoError(t, err)
	assert.Equal(t, []string{"[1, 5]"}, got.Lines())

	got, err = continuous.Merge(mustTable(t, flat, table.Bounded(1, 3, true, false), table.Span(3, 5)))
	require.NoError(t, err)
	assert.Equal(t, []string{"[1, 3)", "[3, 5]"}, got.Lines())
}

func TestMergeIsIdempotentAndDisjoint(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))

	for range lawSeeds {
		once := randomCanonical(t, r)

		twice, err := continuous.Merge(once)
		require.NoError(t, err)
		assert.Equal(t, once.Lines(), twice.Lines())

		rows := once.Rows()
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			if table.CompareKeys(prev.Key, cur.Key) != 0 {
				continue
			}

			shared := prev.Tf > cur.Ts || (prev.Tf == cur.Ts && prev.EndClosed && cur.StartClosed)
			assert.False(t, shared, "%s and %s share a point", prev.Interval(), cur.Interval())
		}
	}
}

// TestAlgebraLaws checks commutativity, the union of intersection and
// difference, and containment of a union.
func TestAlgebraLaws(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(7, 11))

	for range lawSeeds {
		a, b := randomCanonical(t, r), randomCanonical(t, r)

		ab, err := continuous.Union(a, b)
		require.NoError(t, err)

		ba, err := continuous.Union(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab.Lines(), ba.Lines())

		iab, err := continuous.Intersection(a, b)
		require.NoError(t, err)

		iba, err := continuous.Intersection(b, a)
		require.NoError(t, err)
		assert.Equal(t, iab.Lines(), iba.Lines())

		diff, err := continuous.Difference(a, b)
		require.NoError(t, err)

		rebuilt, err := continuous.Union(iab, diff)
		require.NoError(t, err)

		covers, err := continuous.IsSuperset(a, rebuilt)
		require.NoError(t, err)
		assert.True(t, covers)

		covers, err = continuous.IsSuperset(rebuilt, a)
		require.NoError(t, err)
		assert.True(t, covers)

		covers, err = continuous.IsSuperset(ab, a)
		require.NoError(t, err)
		assert.True(t, covers)

		overlap, err := continuous.NonemptyIntersection(diff, b)
		require.NoError(t, err)
		assert.False(t, overlap, "a \\ b never meets b")
	}
}

func TestBinaryExamples(t *testing.T) {
	t.Parallel()

	a := mustTable(t, nodes, table.Span(1, 5, "x"))
	b := mustTable(t, nodes, table.Span(3, 3, "x"), table.Span(0, 9, "y"))

	diff, err := continuous.Difference(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"x [1, 3)", "x (3, 5]"}, diff.Lines())

	union, err := continuous.Union(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"x [1, 5]", "y [0, 9]"}, union.Lines())

	inter, err := continuous.Intersection(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"x [3, 3]"}, inter.Lines())

	covers, err := continuous.IsSuperset(a, b)
	require.NoError(t, err)
	assert.False(t, covers, "key y of b is not covered")
}

func TestOnKeyReference(t *testing.T) {
	t.Parallel()

	a := mustTable(t, nodes, table.Span(0, 10, "x"), table.Span(4, 6, "y"))
	window := mustTable(t, table.Schema{}, table.Bounded(2, 5, true, false))

	got, err := continuous.Intersection(a, window, continuous.OnKey())
	require.NoError(t, err)
	assert.Equal(t, []string{"x [2, 5)", "y [4, 5)"}, got.Lines())

	covers, err := continuous.IsSuperset(a, window, continuous.OnKey())
	require.NoError(t, err)
	assert.False(t, covers)
}

func TestMeasure(t *testing.T) {
	t.Parallel()

	got, err := continuous.IntersectionMeasure(
		mustTable(t, table.Schema{}, table.Span(1, 4)),
		mustTable(t, table.Schema{}, table.Span(2, 6)),
	)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-12)
}

func TestNonemptyStopsEarly(t *testing.T) {
	t.Parallel()

	a := mustTable(t, nodes, table.Span(0, 1, "x"), table.Span(5, 9, "x"), table.Span(20, 30, "y"))
	b := mustTable(t, nodes, table.Span(1, 2, "x"), table.Span(25, 26, "y"))

	var st sweep.Stats

	ok, err := continuous.NonemptyIntersection(a, b, continuous.Record(&st))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, st.Stopped)
	assert.Equal(t, 2, st.Events)
}

func TestRestricted(t *testing.T) {
	t.Parallel()

	links := mustTable(t, table.Schema{Keys: []string{"u", "v"}},
		table.Span(0, 10, "1", "2"),
		table.Span(0, 10, "3", "2"),
	)
	base := mustTable(t, nodes, table.Span(1, 3, "1"), table.Span(2, 8, "2"), table.Span(7, 9, "3"))

	cart, err := continuous.CartesianIntersection(links, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"1,2 [2, 3]", "3,2 [7, 8]"}, cart.Lines())

	mapped, err := continuous.MapIntersection(links, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"2 [1, 3]", "2 [7, 9]"}, mapped.Lines())
}

func TestWorkersMatchSequential(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 5))
	a, b := randomCanonical(t, r), randomCanonical(t, r)

	seq, err := continuous.Difference(a, b)
	require.NoError(t, err)

	par, err := continuous.Difference(a, b, continuous.Workers(3))
	require.NoError(t, err)

	assert.Equal(t, seq.Lines(), par.Lines())
}

func TestRejectsDiscreteOperand(t *testing.T) {
	t.Parallel()

	_, err := continuous.Merge(mustTable(t, table.Schema{Discrete: true}, table.Span(1, 2)))
	require.ErrorIs(t, err, table.ErrSchemaMismatch)
}
