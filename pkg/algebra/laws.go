package algebra

import (
	"context"
	"strconv"

	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Law is the outcome of one set identity evaluated on two operands.
type Law struct {
	Name string
	// Want and Got are the rendered sides of the identity.
	Want []string
	Got  []string

	holds bool
}

// Holds reports whether the identity held. Table sides hold when they cover
// the same time per key, whatever their row split.
func (l Law) Holds() bool {
	return l.holds
}

type (
	tableSide func(ctx context.Context, x, y *table.Table) (*table.Table, error)
	valueSide func(ctx context.Context, x, y *table.Table) (string, error)
)

// CheckLaws evaluates the boolean set identities on the unweighted interval
// shadow of x and y. Weights are dropped first since weighted combinations
// need not be idempotent or absorbing.
func (a *Algebra) CheckLaws(ctx context.Context, x, y *table.Table) ([]Law, error) {
	x, err := shadow(x)
	if err != nil {
		return nil, err
	}

	y, err = shadow(y)
	if err != nil {
		return nil, err
	}

	merged := func(ctx context.Context, x, _ *table.Table) (*table.Table, error) {
		return a.Merge(ctx, x)
	}

	covers := []struct {
		name      string
		want, got tableSide
	}{
		{
			name: "union commutes",
			want: func(ctx context.Context, x, y *table.Table) (*table.Table, error) { return a.Union(ctx, x, y) },
			got:  func(ctx context.Context, x, y *table.Table) (*table.Table, error) { return a.Union(ctx, y, x) },
		},
		{
			name: "intersection commutes",
			want: func(ctx context.Context, x, y *table.Table) (*table.Table, error) { return a.Intersection(ctx, x, y) },
			got:  func(ctx context.Context, x, y *table.Table) (*table.Table, error) { return a.Intersection(ctx, y, x) },
		},
		{
			name: "union idempotent",
			want: merged,
			got:  func(ctx context.Context, x, _ *table.Table) (*table.Table, error) { return a.Union(ctx, x, x) },
		},
		{
			name: "intersection idempotent",
			want: merged,
			got:  func(ctx context.Context, x, _ *table.Table) (*table.Table, error) { return a.Intersection(ctx, x, x) },
		},
		{
			name: "absorption",
			want: merged,
			got: func(ctx context.Context, x, y *table.Table) (*table.Table, error) {
				u, err := a.Union(ctx, x, y)
				if err != nil {
					return nil, err
				}

				return a.Intersection(ctx, x, u)
			},
		},
		{
			name: "difference splits",
			want: merged,
			got: func(ctx context.Context, x, y *table.Table) (*table.Table, error) {
				d, err := a.Difference(ctx, x, y)
				if err != nil {
					return nil, err
				}

				i, err := a.Intersection(ctx, x, y)
				if err != nil {
					return nil, err
				}

				return a.Union(ctx, d, i)
			},
		},
	}

	values := []struct {
		name      string
		want, got valueSide
	}{
		{
			name: "difference disjoint",
			want: constant("false"),
			got: func(ctx context.Context, x, y *table.Table) (string, error) {
				d, err := a.Difference(ctx, x, y)
				if err != nil {
					return "", err
				}

				return boolean(a.NonemptyIntersection(ctx, d, y))
			},
		},
		{
			name: "union covers",
			want: constant("true"),
			got: func(ctx context.Context, x, y *table.Table) (string, error) {
				u, err := a.Union(ctx, x, y)
				if err != nil {
					return "", err
				}

				return boolean(a.IsSuperset(ctx, u, x))
			},
		},
		{
			name: "measure symmetric",
			want: func(ctx context.Context, x, y *table.Table) (string, error) {
				return measured(a.IntersectionMeasure(ctx, x, y))
			},
			got: func(ctx context.Context, x, y *table.Table) (string, error) {
				return measured(a.IntersectionMeasure(ctx, y, x))
			},
		},
	}

	out := make([]Law, 0, len(covers)+len(values))

	for _, law := range covers {
		want, err := law.want(ctx, x, y)
		if err != nil {
			return nil, err
		}

		got, err := law.got(ctx, x, y)
		if err != nil {
			return nil, err
		}

		same, err := a.sameCover(ctx, want, got)
		if err != nil {
			return nil, err
		}

		out = append(out, Law{Name: law.name, Want: want.Lines(), Got: got.Lines(), holds: same})
	}

	for _, law := range values {
		want, err := law.want(ctx, x, y)
		if err != nil {
			return nil, err
		}

		got, err := law.got(ctx, x, y)
		if err != nil {
			return nil, err
		}

		out = append(out, Law{Name: law.name, Want: []string{want}, Got: []string{got}, holds: want == got})
	}

	return out, nil
}

// sameCover reports whether x and y cover the same time under every key.
func (a *Algebra) sameCover(ctx context.Context, x, y *table.Table) (bool, error) {
	ok, err := a.IsSuperset(ctx, x, y)
	if err != nil || !ok {
		return false, err
	}

	return a.IsSuperset(ctx, y, x)
}

func shadow(t *table.Table) (*table.Table, error) {
	if t.Schema().Instant {
		lifted, err := t.AsIntervals()
		if err != nil {
			return nil, err
		}

		t = lifted
	}

	if t.Schema().Weighted {
		t = t.Unweighted()
	}

	return t, nil
}

func boolean(v bool, err error) (string, error) {
	if err != nil {
		return "", err
	}

	return strconv.FormatBool(v), nil
}

func measured(v float64, err error) (string, error) {
	if err != nil {
		return "", err
	}

	return strconv.FormatFloat(v, 'g', -1, 64), nil
}

func constant(v string) valueSide {
	return func(context.Context, *table.Table, *table.Table) (string, error) {
		return v, nil
	}
}
