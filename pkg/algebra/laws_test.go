package algebra_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/streamgraph/pkg/algebra"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

func TestCheckLawsHold(t *testing.T) {
	t.Parallel()

	cases := map[string][2]*table.Table{
		"continuous": {
			mustTable(t, nodes, table.Span(0, 4, "n"), table.Span(6, 8, "n")),
			mustTable(t, nodes, table.Span(2, 7, "n"), table.Span(1, 3, "m")),
		},
		"discrete": {
			mustTable(t, discrete, table.Span(0, 4, "n"), table.Span(6, 8, "n")),
			mustTable(t, discrete, table.Span(2, 7, "n"), table.Span(1, 3, "m")),
		},
		"weighted": {
			mustTable(t, wnodes, table.Weighted(0, 4, 3, "n")),
			mustTable(t, wnodes, table.Weighted(2, 7, 5, "n")),
		},
	}

	a := newAlgebra(t, algebra.Options{})

	for name, tc := range cases {
		laws, err := a.CheckLaws(context.Background(), tc[0], tc[1])
		require.NoError(t, err, name)
		require.NotEmpty(t, laws)

		for _, law := range laws {
			assert.True(t, law.Holds(), "%s: %s: want %v got %v", name, law.Name, law.Want, law.Got)
		}
	}
}

func TestCheckLawsComparesCoveredTime(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	// x \ y and x ∩ y stay three rows since [1, 3) and [3, 3] share no point.
	laws, err := a.CheckLaws(context.Background(),
		mustTable(t, nodes, table.Span(1, 5, "n")),
		mustTable(t, nodes, table.Span(3, 3, "n")))
	require.NoError(t, err)

	byName := make(map[string]algebra.Law, len(laws))
	for _, law := range laws {
		byName[law.Name] = law
	}

	split := byName["difference splits"]
	assert.True(t, split.Holds())
	assert.Equal(t, []string{"n [1, 5]"}, split.Want)
	assert.Len(t, split.Got, 3)

	for _, law := range laws {
		assert.True(t, law.Holds(), "%s: want %v got %v", law.Name, law.Want, law.Got)
	}
}

func TestCheckLawsRejectsMismatchedKeys(t *testing.T) {
	t.Parallel()

	a := newAlgebra(t, algebra.Options{})

	_, err := a.CheckLaws(context.Background(), mustTable(t, nodes), mustTable(t, links))
	require.ErrorIs(t, err, algebra.ErrSchemaMismatch)
}
