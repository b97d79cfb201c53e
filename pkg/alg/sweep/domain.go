package sweep

import (
	"fmt"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/order"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Domain is the time model of a sweep. It fixes the event order, how events
// sharing a timestamp are staged, and how output bounds are derived from the
// point at which a state begins or ends.
type Domain uint8

// Domains.
const (
	// Continuous is real time with open or closed bounds and unit weights.
	// Pieces meeting at a point they do not share stay separate.
	Continuous Domain = iota
	// WeightedContinuous is real time with weights. Equal-weight pieces
	// meeting at a point coalesce.
	WeightedContinuous
	// Discrete is integer time with closed bounds and unit weights.
	Discrete
	// WeightedDiscrete is integer time with weights.
	WeightedDiscrete
)

// Point is the position of a settle: a timestamp and the stage reached at it.
type Point struct {
	T     float64
	Stage int
}

// String returns the domain name.
func (d Domain) String() string {
	switch d {
	case Continuous:
		return "continuous"
	case WeightedContinuous:
		return "weighted-continuous"
	case Discrete:
		return "discrete"
	case WeightedDiscrete:
		return "weighted-discrete"
	default:
		return fmt.Sprintf("domain(%d)", uint8(d))
	}
}

// IsDiscrete reports integer time.
func (d Domain) IsDiscrete() bool {
	return d == Discrete || d == WeightedDiscrete
}

// IsWeighted reports whether values carry weights.
func (d Domain) IsWeighted() bool {
	return d == WeightedContinuous || d == WeightedDiscrete
}

// Unweighted returns the unit-weight domain over the same time.
func (d Domain) Unweighted() Domain {
	if d.IsDiscrete() {
		return Discrete
	}

	return Continuous
}

// Accepts reports whether tables of schema s can be swept in d.
func (d Domain) Accepts(s table.Schema) bool {
	return !s.Instant && s.Discrete == d.IsDiscrete() && s.Weighted == d.IsWeighted()
}

// Order returns the tie-break order events are sorted by.
func (d Domain) Order() order.Order {
	if d.IsDiscrete() {
		return order.RefDifference
	}

	return order.RefSeam
}

// Stages returns the number of settle stages at one timestamp.
func (d Domain) Stages() int {
	if d == Continuous {
		return 4
	}

	return 2
}

// Stage returns the stage at which tok is applied. Stages are monotone in
// the rank of Order.
//
// Continuous stages are: open ends, closed starts, closed ends, open starts.
// Weighted continuous merges the first two into the instant stage and the
// last two into the gap stage. Discrete applies starts, then ends.
func (d Domain) Stage(tok order.Token) int {
	if d.IsDiscrete() {
		if tok.Start {
			return 0
		}

		return 1
	}

	var phase int

	switch {
	case !tok.Start && !tok.Closed:
		phase = 0
	case tok.Start && tok.Closed:
		phase = 1
	case !tok.Start:
		phase = 2
	default:
		phase = 3
	}

	if d == WeightedContinuous {
		return phase / 2
	}

	return phase
}

// Seam reports a stage whose state exists only between two tie groups.
// Seams can close pieces but never open them.
func (d Domain) Seam(stage int) bool {
	return d == Continuous && stage%2 == 0
}

// atInstant reports whether the state after stage covers the point itself.
func (d Domain) atInstant(stage int) bool {
	if d == Continuous {
		return stage < 2
	}

	return stage == 0
}

// Begin returns the start bound of a state entered at p.
func (d Domain) Begin(p Point) event.Bound {
	if d.IsDiscrete() {
		if p.Stage == 0 {
			return event.Bound{T: p.T, Closed: true}
		}

		return event.Bound{T: p.T + 1, Closed: true}
	}

	return event.Bound{T: p.T, Closed: d.atInstant(p.Stage)}
}

// End returns the end bound of a state left at p.
func (d Domain) End(p Point) event.Bound {
	if d.IsDiscrete() {
		if p.Stage == 0 {
			return event.Bound{T: p.T - 1, Closed: true}
		}

		return event.Bound{T: p.T, Closed: true}
	}

	return event.Bound{T: p.T, Closed: !d.atInstant(p.Stage)}
}

// Valid reports whether the bounds delimit a non-empty interval.
func (d Domain) Valid(start, end event.Bound) bool {
	if d.IsDiscrete() {
		return start.T <= end.T
	}

	return start.T < end.T || (start.T == end.T && start.Closed && end.Closed)
}

// Adjacent reports whether a piece ending at end and one starting at start
// form a single interval.
func (d Domain) Adjacent(end, start event.Bound) bool {
	switch d {
	case Discrete, WeightedDiscrete:
		return end.T+1 == start.T
	case WeightedContinuous:
		return end.T == start.T && end.Closed != start.Closed
	default:
		return false
	}
}

// Span returns the measure of the time between two bounds. Discrete spans
// count integer points.
func (d Domain) Span(from, to event.Bound) float64 {
	n := to.T - from.T
	if d.IsDiscrete() {
		n++
	}

	return max(n, 0)
}
