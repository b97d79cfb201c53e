package combine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
)

func TestHingeLossThreshold(t *testing.T) {
	t.Parallel()

	hinge := combine.HingeLoss(0.5)

	w, ok := hinge(3, 1)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, w, 1e-12)

	_, ok = hinge(3, 2.5)
	assert.False(t, ok, "difference equal to zero threshold is dropped")

	_, ok = hinge(1, 3)
	assert.False(t, ok)
}

func TestReductionsOnEmpty(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]combine.Reduce{
		"sum": combine.Sum, "min": combine.Lowest, "max": combine.Highest, "count": combine.Count,
	} {
		_, ok := fn(nil)
		assert.False(t, ok, name)
	}

	w, _ := combine.Count([]float64{4, 4, 1})
	assert.InDelta(t, 3.0, w, 1e-12)

	w, _ = combine.Lowest([]float64{4, 2, 7})
	assert.InDelta(t, 2.0, w, 1e-12)
}

func TestMeasures(t *testing.T) {
	t.Parallel()

	as, bs := []float64{1, 2}, []float64{4}

	assert.InDelta(t, 12.0, combine.Product(as, bs), 1e-12)
	assert.InDelta(t, 3.0, combine.MinOfSums(as, bs), 1e-12)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	hinge, err := combine.LookupBinary("hinge", 1)
	require.NoError(t, err)

	_, ok := hinge(2, 1)
	assert.False(t, ok)

	min3, err := combine.LookupTernary("min")
	require.NoError(t, err)

	w, _ := min3(5, 2, 3)
	assert.InDelta(t, 2.0, w, 1e-12)

	ge, err := combine.LookupPredicate("ge")
	require.NoError(t, err)
	assert.True(t, ge(2, 2))

	_, err = combine.LookupReduce("count")
	require.NoError(t, err)

	_, err = combine.LookupMeasure("min-of-sums")
	require.NoError(t, err)
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()

	_, err := combine.LookupBinary("mean", 0)
	require.ErrorIs(t, err, combine.ErrUnknown)
	assert.Contains(t, err.Error(), "add")

	_, err = combine.LookupMeasure("ratio")
	require.ErrorIs(t, err, combine.ErrUnknown)

	_, err = combine.LookupPredicate("")
	require.ErrorIs(t, err, combine.ErrUnknown)
}
