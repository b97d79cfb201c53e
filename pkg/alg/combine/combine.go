// Package combine holds the weight combination functions of the weighted
// interval algebras.
package combine

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

// ErrUnknown is returned when a combination function name is not registered.
var ErrUnknown = errors.New("unknown combination function")

// Binary combines the weights of two overlapping intervals. ok is false when
// the overlap must be dropped from the result.
type Binary func(a, b float64) (w float64, ok bool)

// Ternary combines the weights of a link and of its two endpoints.
type Ternary func(uv, u, v float64) (w float64, ok bool)

// Reduce folds the multiset of weights active at a point.
type Reduce func(ws []float64) (w float64, ok bool)

// Predicate decides whether a pair of weights satisfies a relation.
type Predicate func(a, b float64) bool

// Measure weighs the time both sides are active, from the weights active on each side.
type Measure func(as, bs []float64) float64

// Add sums two weights.
func Add(a, b float64) (float64, bool) { return a + b, true }

// Min keeps the smaller weight.
func Min(a, b float64) (float64, bool) { return math.Min(a, b), true }

// Max keeps the larger weight.
func Max(a, b float64) (float64, bool) { return math.Max(a, b), true }

// First keeps the left weight.
func First(a, _ float64) (float64, bool) { return a, true }

// One replaces the overlap by weight 1.
func One(_, _ float64) (float64, bool) { return 1, true }

// Never drops every overlap.
func Never(_, _ float64) (float64, bool) { return 0, false }

// HingeLoss returns a - b, dropping the overlap when the difference is not
// above zero.
func HingeLoss(zero float64) Binary {
	return func(a, b float64) (float64, bool) {
		d := a - b
		if d <= zero {
			return 0, false
		}

		return d, true
	}
}

// Min3 keeps the smallest of the link and endpoint weights.
func Min3(uv, u, v float64) (float64, bool) { return math.Min(uv, math.Min(u, v)), true }

// Max3 keeps the largest of the link and endpoint weights.
func Max3(uv, u, v float64) (float64, bool) { return math.Max(uv, math.Max(u, v)), true }

// Link keeps the link weight.
func Link(uv, _, _ float64) (float64, bool) { return uv, true }

// Sum adds every active weight.
func Sum(ws []float64) (float64, bool) {
	if len(ws) == 0 {
		return 0, false
	}

	total := 0.0
	for _, w := range ws {
		total += w
	}

	return total, true
}

// Lowest keeps the smallest active weight.
func Lowest(ws []float64) (float64, bool) {
	if len(ws) == 0 {
		return 0, false
	}

	return slices.Min(ws), true
}

// Highest keeps the largest active weight.
func Highest(ws []float64) (float64, bool) {
	if len(ws) == 0 {
		return 0, false
	}

	return slices.Max(ws), true
}

// Count weighs a point by the number of active intervals.
func Count(ws []float64) (float64, bool) {
	if len(ws) == 0 {
		return 0, false
	}

	return float64(len(ws)), true
}

// GE holds when the left weight covers the right one.
func GE(a, b float64) bool { return a >= b }

// Always holds for any pair.
func Always(_, _ float64) bool { return true }

// Product weighs common time by the product of both sides' weight sums.
func Product(as, bs []float64) float64 {
	return total(as) * total(bs)
}

// MinOfSums weighs common time by the smaller of both sides' weight sums.
func MinOfSums(as, bs []float64) float64 {
	return math.Min(total(as), total(bs))
}

func total(ws []float64) float64 {
	s := 0.0
	for _, w := range ws {
		s += w
	}

	return s
}

// Set is a full selection of combination functions for one weighted algebra.
type Set struct {
	Merge        Reduce
	Union        Binary
	Intersection Binary
	Difference   Binary
	Superset     Predicate
	Nonempty     Predicate
	Cartesian    Ternary
	Measure      Measure
}

var (
	binaries = map[string]func(zero float64) Binary{
		"add":   func(float64) Binary { return Add },
		"min":   func(float64) Binary { return Min },
		"max":   func(float64) Binary { return Max },
		"first": func(float64) Binary { return First },
		"one":   func(float64) Binary { return One },
		"never": func(float64) Binary { return Never },
		"hinge": HingeLoss,
	}
	reductions = map[string]Reduce{
		"sum":   Sum,
		"min":   Lowest,
		"max":   Highest,
		"count": Count,
	}
	ternaries = map[string]Ternary{
		"min":  Min3,
		"max":  Max3,
		"link": Link,
	}
	predicates = map[string]Predicate{
		"ge":     GE,
		"always": Always,
	}
	measures = map[string]Measure{
		"product":     Product,
		"min-of-sums": MinOfSums,
	}
)

// LookupBinary resolves a binary function by name.
func LookupBinary(name string, zero float64) (Binary, error) {
	mk, ok := binaries[name]
	if !ok {
		return nil, fmt.Errorf("%w: binary %q (known: %v)", ErrUnknown, name, names(binaries))
	}

	return mk(zero), nil
}

// LookupReduce resolves a reduction by name.
func LookupReduce(name string) (Reduce, error) {
	return lookup(reductions, "reduction", name)
}

// LookupTernary resolves a ternary function by name.
func LookupTernary(name string) (Ternary, error) {
	return lookup(ternaries, "ternary", name)
}

// LookupPredicate resolves a predicate by name.
func LookupPredicate(name string) (Predicate, error) {
	return lookup(predicates, "predicate", name)
}

// LookupMeasure resolves a measure by name.
func LookupMeasure(name string) (Measure, error) {
	return lookup(measures, "measure", name)
}

func lookup[F any](registry map[string]F, kind, name string) (F, error) {
	fn, ok := registry[name]
	if !ok {
		var zero F

		return zero, fmt.Errorf("%w: %s %q (known: %v)", ErrUnknown, kind, name, names(registry))
	}

	return fn, nil
}

func names[F any](registry map[string]F) []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}
