// Package wcontinuous implements the weighted interval algebra over real time.
//
// Each operation takes the combination function deciding the output weight
// where intervals overlap. A function reporting !ok drops the overlap from
// the result. Outputs are split into maximal constant-weight pieces.
package wcontinuous

import (
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/sweep"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Option configures an operation.
type Option = sweep.Option

// OnKey makes the second operand a reference for every key of the first.
func OnKey() Option { return sweep.OnKey() }

// Workers runs by-key sweeps over n partitions.
func Workers(n int) Option { return sweep.Workers(n) }

// Tolerance sets the difference under which two weights are equal.
func Tolerance(tol float64) Option { return sweep.Tolerance(tol) }

// Record stores the statistics of the sweep in st.
func Record(st *sweep.Stats) Option { return sweep.Record(st) }

// Defaults returns the default combination functions. Hinge-loss
// differences at or below zero are dropped.
func Defaults(zero float64) combine.Set {
	return combine.Set{
		Merge:        combine.Sum,
		Union:        combine.Add,
		Intersection: combine.Min,
		Difference:   combine.HingeLoss(zero),
		Superset:     combine.GE,
		Nonempty:     combine.GE,
		Cartesian:    combine.Min3,
		Measure:      combine.Product,
	}
}

func engine(opts []Option) *sweep.Engine {
	return sweep.New(sweep.WeightedContinuous, opts...)
}

// Merge folds the weights active at every point with reduce.
func Merge(t *table.Table, reduce combine.Reduce, opts ...Option) (*table.Table, error) {
	return engine(opts).Merge(t, reduce)
}

// Union keeps the weight of either side, combining overlaps with f.
func Union(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Union(f))
}

// Intersection keeps overlaps, weighted with f.
func Intersection(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Intersection(f))
}

// Difference keeps a where b is absent, and overlaps weighted with f.
func Difference(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Difference(f))
}

// IsSuperset reports whether at every point of b, a is present and f holds.
func IsSuperset(a, b *table.Table, f combine.Predicate, opts ...Option) (bool, error) {
	uncovered, err := engine(opts).Decide(a, b, sweep.Uncovered(f))

	return !uncovered, err
}

// NonemptyIntersection reports whether some overlap satisfies f.
func NonemptyIntersection(a, b *table.Table, f combine.Predicate, opts ...Option) (bool, error) {
	return engine(opts).Decide(a, b, sweep.Overlapping(f))
}

// CartesianIntersection restricts links to times both endpoints are in base,
// weighting with f(link, u, v).
func CartesianIntersection(links, base *table.Table, f combine.Ternary, opts ...Option) (*table.Table, error) {
	return engine(opts).Cartesian(links, base, f)
}

// MapIntersection ignores weights and returns an unweighted table.
func MapIntersection(links, base *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Map(links, base)
}

// IntersectionMeasure integrates g over the time both sides are active.
func IntersectionMeasure(a, b *table.Table, g combine.Measure, opts ...Option) (float64, error) {
	return engine(opts).Measure(a, b, g)
}
