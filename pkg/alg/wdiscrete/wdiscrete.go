// Package wdiscrete implements the weighted interval algebra over integer
// time. Consecutive pieces of equal weight coalesce.
package wdiscrete

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

// Defaults returns the default combination functions.
// Intersections keep the larger weight.
func Defaults(zero float64) combine.Set {
	return combine.Set{
		Merge:        combine.Sum,
		Union:        combine.Add,
		Intersection: combine.Max,
		Difference:   combine.HingeLoss(zero),
		Superset:     combine.GE,
		Nonempty:     combine.GE,
		Cartesian:    combine.Max3,
		Measure:      combine.Product,
	}
}

func engine(opts []Option) *sweep.Engine {
	return sweep.New(sweep.WeightedDiscrete, opts...)
}

func Merge(t *table.Table, reduce combine.Reduce, opts ...Option) (*table.Table, error) {
	return engine(opts).Merge(t, reduce)
}

func Union(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Union(f))
}

func Intersection(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Intersection(f))
}

func Difference(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Difference(f))
}

// IsSuperset reports whether at every point of b, a is present and f holds.
func IsSuperset(a, b *table.Table, f combine.Predicate, opts ...Option) (bool, error) {
	uncovered, err := engine(opts).Decide(a, b, sweep.Uncovered(f))

	return !uncovered, err
}

func NonemptyIntersection(a, b *table.Table, f combine.Predicate, opts ...Option) (bool, error) {
	return engine(opts).Decide(a, b, sweep.Overlapping(f))
}

func CartesianIntersection(links, base *table.Table, f combine.Ternary, opts ...Option) (*table.Table, error) {
	return engine(opts).Cartesian(links, base, f)
}

// MapIntersection ignores weights and returns an unweighted table.
func MapIntersection(links, base *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Map(links, base)
}

// IntersectionMeasure sums g over the points both sides cover.
func IntersectionMeasure(a, b *table.Table, g combine.Measure, opts ...Option) (float64, error) {
	return engine(opts).Measure(a, b, g)
}
