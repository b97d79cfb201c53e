// Package continuous implements the unweighted interval algebra over real
// time with open or closed bounds.
//
// Binary operations expect canonical operands, as returned by Merge: for a
// key, no two intervals share a point. Intervals meeting at a point only one
// of them contains, such as [1,3) and [3,5], share nothing and stay apart.
package continuous

import (
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/sweep"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Option configures an operation.
type Option = sweep.Option

// OnKey makes the second operand a reference combined with every key of the
// first one. Its key columns must be a subset of the first operand's.
func OnKey() Option { return sweep.OnKey() }

// Workers runs by-key sweeps over n partitions.
func Workers(n int) Option { return sweep.Workers(n) }

// Record stores the statistics of the sweep in st.
func Record(st *sweep.Stats) Option { return sweep.Record(st) }

func engine(opts []Option) *sweep.Engine {
	return sweep.New(sweep.Continuous, opts...)
}

// Merge returns the canonical form of t, per key.
func Merge(t *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Merge(t, combine.Count)
}

// Union returns the time covered by a or b.
func Union(a, b *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Union(combine.One))
}

// Intersection returns the time covered by both a and b.
func Intersection(a, b *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Intersection(combine.One))
}

// Difference returns the time covered by a and not by b.
func Difference(a, b *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Difference(combine.Never))
}

// IsSuperset reports whether a covers every point of b.
func IsSuperset(a, b *table.Table, opts ...Option) (bool, error) {
	uncovered, err := engine(opts).Decide(a, b, sweep.Uncovered(combine.Always))

	return !uncovered, err
}

// NonemptyIntersection reports whether a and b share a point under some key.
func NonemptyIntersection(a, b *table.Table, opts ...Option) (bool, error) {
	return engine(opts).Decide(a, b, sweep.Overlapping(combine.Always))
}

// CartesianIntersection restricts every link (u, v) to the times both u and
// v are present in base.
func CartesianIntersection(links, base *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Cartesian(links, base, combine.Link)
}

// MapIntersection returns, per second link column v, the times at which some
// link (u, v) is active while u is present in base.
func MapIntersection(links, base *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Map(links, base)
}

// IntersectionMeasure returns the integral over time of the number of active
// intervals of a times that of b. Keys are ignored.
func IntersectionMeasure(a, b *table.Table, opts ...Option) (float64, error) {
	return engine(opts).Measure(a, b, combine.Product)
}
