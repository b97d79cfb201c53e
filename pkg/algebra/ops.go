package algebra

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/continuous"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/discrete"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/instant"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/wcontinuous"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/wdiscrete"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Merge returns the canonical form of t. Instantaneous rows sharing a key
// and a timestamp are summed.
func (a *Algebra) Merge(ctx context.Context, t *table.Table) (*table.Table, error) {
	return observe(ctx, a, "merge", schemas(t), nil, func(_ context.Context, c *call) (*table.Table, error) {
		opts := a.sweepOptions(c)
		set := a.sets[c.mode]

		switch c.mode {
		case Continuous:
			return continuous.Merge(t, opts...)
		case Discrete:
			return discrete.Merge(t, opts...)
		case WeightedContinuous:
			return wcontinuous.Merge(t, set.Merge, opts...)
		case WeightedDiscrete:
			return wdiscrete.Merge(t, set.Merge, opts...)
		default:
			return instant.Merge(t)
		}
	})
}

// binaryOps groups the per-mode implementations of one binary operation.
type binaryOps struct {
	continuous func(a, b *table.Table, opts ...continuous.Option) (*table.Table, error)
	discrete   func(a, b *table.Table, opts ...discrete.Option) (*table.Table, error)
	wcont      func(a, b *table.Table, f combine.Binary, opts ...wcontinuous.Option) (*table.Table, error)
	wdisc      func(a, b *table.Table, f combine.Binary, opts ...wdiscrete.Option) (*table.Table, error)
	instant    func(a, b *table.Table, f combine.Binary, opts ...instant.Option) (*table.Table, error)
	weight     func(combine.Set) combine.Binary
}

var (
	unionOps = binaryOps{
		continuous: continuous.Union, discrete: discrete.Union,
		wcont: wcontinuous.Union, wdisc: wdiscrete.Union, instant: instant.Union,
		weight: func(s combine.Set) combine.Binary { return s.Union },
	}
	intersectionOps = binaryOps{
		continuous: continuous.Intersection, discrete: discrete.Intersection,
		wcont: wcontinuous.Intersection, wdisc: wdiscrete.Intersection, instant: instant.Intersection,
		weight: func(s combine.Set) combine.Binary { return s.Intersection },
	}
	differenceOps = binaryOps{
		continuous: continuous.Difference, discrete: discrete.Difference,
		wcont: wcontinuous.Difference, wdisc: wdiscrete.Difference, instant: instant.Difference,
		weight: func(s combine.Set) combine.Binary { return s.Difference },
	}
)

func (a *Algebra) binary(
	ctx context.Context, op string, ops binaryOps, x, y *table.Table, opts []CallOption,
) (*table.Table, error) {
	return observe(ctx, a, op, schemas(x, y), opts, func(_ context.Context, c *call) (*table.Table, error) {
		sopts := a.sweepOptions(c)
		f := ops.weight(a.sets[c.mode])

		switch c.mode {
		case Continuous:
			return ops.continuous(x, y, sopts...)
		case Discrete:
			return ops.discrete(x, y, sopts...)
		case WeightedContinuous:
			return ops.wcont(x, y, f, sopts...)
		case WeightedDiscrete:
			return ops.wdisc(x, y, f, sopts...)
		default:
			return ops.instant(x, y, f, c.instantOptions()...)
		}
	})
}

// Union returns the time covered by x or y.
func (a *Algebra) Union(ctx context.Context, x, y *table.Table, opts ...CallOption) (*table.Table, error) {
	return a.binary(ctx, "union", unionOps, x, y, opts)
}

// Intersection returns the time covered by both x and y.
func (a *Algebra) Intersection(ctx context.Context, x, y *table.Table, opts ...CallOption) (*table.Table, error) {
	return a.binary(ctx, "intersection", intersectionOps, x, y, opts)
}

// Difference returns the time covered by x and not by y.
func (a *Algebra) Difference(ctx context.Context, x, y *table.Table, opts ...CallOption) (*table.Table, error) {
	return a.binary(ctx, "difference", differenceOps, x, y, opts)
}

// IsSuperset reports whether x covers y.
func (a *Algebra) IsSuperset(ctx context.Context, x, y *table.Table, opts ...CallOption) (bool, error) {
	return observe(ctx, a, "issuperset", schemas(x, y), opts, func(_ context.Context, c *call) (bool, error) {
		sopts := a.sweepOptions(c)
		f := a.sets[c.mode].Superset

		switch c.mode {
		case Continuous:
			return continuous.IsSuperset(x, y, sopts...)
		case Discrete:
			return discrete.IsSuperset(x, y, sopts...)
		case WeightedContinuous:
			return wcontinuous.IsSuperset(x, y, f, sopts...)
		case WeightedDiscrete:
			return wdiscrete.IsSuperset(x, y, f, sopts...)
		default:
			return instant.IsSuperset(x, y, f, c.instantOptions()...)
		}
	})
}

// NonemptyIntersection reports whether x and y share a point.
func (a *Algebra) NonemptyIntersection(ctx context.Context, x, y *table.Table, opts ...CallOption) (bool, error) {
	return observe(ctx, a, "overlaps", schemas(x, y), opts, func(_ context.Context, c *call) (bool, error) {
		sopts := a.sweepOptions(c)
		f := a.sets[c.mode].Nonempty

		switch c.mode {
		case Continuous:
			return continuous.NonemptyIntersection(x, y, sopts...)
		case Discrete:
			return discrete.NonemptyIntersection(x, y, sopts...)
		case WeightedContinuous:
			return wcontinuous.NonemptyIntersection(x, y, f, sopts...)
		case WeightedDiscrete:
			return wdiscrete.NonemptyIntersection(x, y, f, sopts...)
		default:
			return instant.NonemptyIntersection(x, y, f, c.instantOptions()...)
		}
	})
}

// CartesianIntersection restricts every link (u, v) to the times both of its
// endpoints are present in base.
func (a *Algebra) CartesianIntersection(ctx context.Context, links, base *table.Table) (*table.Table, error) {
	return observe(ctx, a, "cartesian", schemas(links, base), nil, func(_ context.Context, c *call) (*table.Table, error) {
		ts, err := c.lift(links, base)
		if err != nil {
			return nil, err
		}

		sopts := a.sweepOptions(c)
		f := a.sets[c.mode].Cartesian

		switch c.mode {
		case Continuous:
			return continuous.CartesianIntersection(ts[0], ts[1], sopts...)
		case Discrete:
			return discrete.CartesianIntersection(ts[0], ts[1], sopts...)
		case WeightedContinuous:
			return wcontinuous.CartesianIntersection(ts[0], ts[1], f, sopts...)
		default:
			return wdiscrete.CartesianIntersection(ts[0], ts[1], f, sopts...)
		}
	})
}

// MapIntersection returns, per second link column, the times some link is
// active while its first endpoint is present in base.
func (a *Algebra) MapIntersection(ctx context.Context, links, base *table.Table) (*table.Table, error) {
	return observe(ctx, a, "map", schemas(links, base), nil, func(_ context.Context, c *call) (*table.Table, error) {
		ts, err := c.lift(links, base)
		if err != nil {
			return nil, err
		}

		sopts := a.sweepOptions(c)

		switch c.mode {
		case Continuous:
			return continuous.MapIntersection(ts[0], ts[1], sopts...)
		case Discrete:
			return discrete.MapIntersection(ts[0], ts[1], sopts...)
		case WeightedContinuous:
			return wcontinuous.MapIntersection(ts[0], ts[1], sopts...)
		default:
			return wdiscrete.MapIntersection(ts[0], ts[1], sopts...)
		}
	})
}

// IntersectionMeasure integrates the measure of the weights of x and y over
// the time both are present. Keys are ignored.
func (a *Algebra) IntersectionMeasure(ctx context.Context, x, y *table.Table) (float64, error) {
	return observe(ctx, a, "measure", schemas(x, y), nil, func(_ context.Context, c *call) (float64, error) {
		ts, err := c.lift(x, y)
		if err != nil {
			return 0, err
		}

		sopts := a.sweepOptions(c)
		g := a.sets[c.mode].Measure

		switch c.mode {
		case Continuous:
			return continuous.IntersectionMeasure(ts[0], ts[1], sopts...)
		case Discrete:
			return discrete.IntersectionMeasure(ts[0], ts[1], sopts...)
		case WeightedContinuous:
			return wcontinuous.IntersectionMeasure(ts[0], ts[1], g, sopts...)
		case WeightedDiscrete:
			return wdiscrete.IntersectionMeasure(ts[0], ts[1], g, sopts...)
		default:
			return 0, fmt.Errorf("%w: no measure for %s operands", ErrSchemaMismatch, c.mode)
		}
	})
}
