// Package discrete implements the unweighted interval algebra over integer
// time. Bounds are always closed and intervals touching at consecutive
// integers, such as [1,3] and [4,6], form one interval.
package discrete

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

// Record stores the statistics of the sweep in st.
func Record(st *sweep.Stats) Option { return sweep.Record(st) }

func engine(opts []Option) *sweep.Engine {
	return sweep.New(sweep.Discrete, opts...)
}

// Merge returns the canonical form of t.
func Merge(t *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Merge(t, combine.Count)
}

// Union returns the points covered by a or b.
func Union(a, b *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Union(combine.One))
}

// Intersection returns the points covered by a and b.
func Intersection(a, b *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Intersection(combine.One))
}

// Difference returns the points of a not covered by b.
func Difference(a, b *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Combine(a, b, sweep.Difference(combine.Never))
}

// IsSuperset reports whether every point of b is in a.
func IsSuperset(a, b *table.Table, opts ...Option) (bool, error) {
	uncovered, err := engine(opts).Decide(a, b, sweep.Uncovered(combine.Always))

	return !uncovered, err
}

// NonemptyIntersection reports whether a and b share a point.
func NonemptyIntersection(a, b *table.Table, opts ...Option) (bool, error) {
	return engine(opts).Decide(a, b, sweep.Overlapping(combine.Always))
}

// CartesianIntersection restricts links to the points both endpoints are in base.
func CartesianIntersection(links, base *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Cartesian(links, base, combine.Link)
}

// MapIntersection returns the points at which v has an active link from a
// node present in base.
func MapIntersection(links, base *table.Table, opts ...Option) (*table.Table, error) {
	return engine(opts).Map(links, base)
}

// IntersectionMeasure counts the points of a and b in common, with multiplicity.
func IntersectionMeasure(a, b *table.Table, opts ...Option) (float64, error) {
	return engine(opts).Measure(a, b, combine.Product)
}
