package sweep

import (
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
)

// Rule decides the value of a slot from the state of both operands.
type Rule func(a, b *Side) (w float64, ok bool)

// Test decides whether the state of a slot ends a predicate sweep.
type Test func(a, b *Side) bool

// Union keeps time covered by either side, combining overlaps with f.
func Union(f combine.Binary) Rule {
	return func(a, b *Side) (float64, bool) {
		switch {
		case a.Present() && b.Present():
			return f(a.Sum(), b.Sum())
		case a.Present():
			return a.Sum(), true
		case b.Present():
			return b.Sum(), true
		default:
			return 0, false
		}
	}
}

// Intersection keeps time covered by both sides, weighted by f.
func Intersection(f combine.Binary) Rule {
	return func(a, b *Side) (float64, bool) {
		if !a.Present() || !b.Present() {
			return 0, false
		}

		return f(a.Sum(), b.Sum())
	}
}

// Difference keeps time covered by a alone, and overlaps for which f holds.
func Difference(f combine.Binary) Rule {
	return func(a, b *Side) (float64, bool) {
		switch {
		case !a.Present():
			return 0, false
		case !b.Present():
			return a.Sum(), true
		default:
			return f(a.Sum(), b.Sum())
		}
	}
}

// Uncovered stops at the first point where b is present and a does not
// cover it under f.
func Uncovered(f combine.Predicate) Test {
	return func(a, b *Side) bool {
		return b.Present() && (!a.Present() || !f(a.Sum(), b.Sum()))
	}
}

// Overlapping stops at the first point both sides cover with f holding.
func Overlapping(f combine.Predicate) Test {
	return func(a, b *Side) bool {
		return a.Present() && b.Present() && f(a.Sum(), b.Sum())
	}
}

// piecer is a step producing output pieces.
type piecer interface {
	Step
	Pieces() []event.Piece
}

type mergeStep struct {
	*Tracker

	weighted bool
	reduce   combine.Reduce
	sides    []Side
}

func newMergeStep(dom Domain, tol float64, slots int, reduce combine.Reduce) *mergeStep {
	return &mergeStep{
		Tracker:  NewTracker(dom, tol, slots),
		weighted: dom.IsWeighted(),
		reduce:   reduce,
		sides:    make([]Side, slots),
	}
}

func (s *mergeStep) Apply(ev *event.Event, touch func(int)) {
	s.sides[ev.Slot].apply(ev)
	touch(ev.Slot)
}

func (s *mergeStep) Settle(slot int, p Point) bool {
	side := &s.sides[slot]

	w, present := 1.0, side.Present()
	if present && s.weighted {
		w, present = s.reduce(side.Weights())
	}

	s.Advance(slot, p, w, present)

	return false
}

type binaryStep struct {
	*Tracker

	weighted bool
	rule     Rule
	a, b     []Side
}

func newBinaryStep(dom Domain, tol float64, slots int, rule Rule) *binaryStep {
	return &binaryStep{
		Tracker:  NewTracker(dom, tol, slots),
		weighted: dom.IsWeighted(),
		rule:     rule,
		a:        make([]Side, slots),
		b:        make([]Side, slots),
	}
}

func (s *binaryStep) Apply(ev *event.Event, touch func(int)) {
	if ev.Ref {
		s.b[ev.Slot].apply(ev)
	} else {
		s.a[ev.Slot].apply(ev)
	}

	touch(ev.Slot)
}

func (s *binaryStep) Settle(slot int, p Point) bool {
	w, ok := s.rule(&s.a[slot], &s.b[slot])
	if !s.weighted {
		w = 1
	}

	s.Advance(slot, p, w, ok)

	return false
}

// predicateStep only settles real states: seams are skipped.
type predicateStep struct {
	dom  Domain
	test Test
	a, b []Side
}

func (s *predicateStep) Apply(ev *event.Event, touch func(int)) {
	if ev.Ref {
		s.b[ev.Slot].apply(ev)
	} else {
		s.a[ev.Slot].apply(ev)
	}

	touch(ev.Slot)
}

func (s *predicateStep) Settle(slot int, p Point) bool {
	if s.dom.Seam(p.Stage) {
		return false
	}

	return s.test(&s.a[slot], &s.b[slot])
}

func (s *predicateStep) Flush() {}

// measureStep integrates g over the time both sides are active, in a single slot.
type measureStep struct {
	dom     Domain
	g       combine.Measure
	a, b    Side
	from    event.Bound
	rate    float64
	started bool
	total   float64
}

func (s *measureStep) Apply(ev *event.Event, touch func(int)) {
	if ev.Ref {
		s.b.apply(ev)
	} else {
		s.a.apply(ev)
	}

	touch(0)
}

func (s *measureStep) Settle(_ int, p Point) bool {
	if s.dom.Seam(p.Stage) {
		return false
	}

	if s.started && s.rate != 0 {
		s.total += s.rate * s.dom.Span(s.from, s.dom.End(p))
	}

	s.from, s.started, s.rate = s.dom.Begin(p), true, 0

	if s.a.Present() && s.b.Present() {
		s.rate = s.g(s.a.Weights(), s.b.Weights())
	}

	return false
}

func (s *measureStep) Flush() {}
