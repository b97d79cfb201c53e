package sweep

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
)

// Restricted intersections sweep a link operand keyed (u, v) together with
// a base operand keyed by node. Base events are Ref events whose slot is a
// node slot; link events use link slots. Every node keeps the set of its
// active incident links, so a change of a node's base state touches only
// links that can be affected.

type cartesianStep struct {
	*Tracker

	weighted bool
	f        combine.Ternary
	links    []Side
	base     []Side
	u, v     []int
	incident []sets.Set[int]
}

func newCartesianStep(dom Domain, tol float64, u, v []int, nodes int, f combine.Ternary) *cartesianStep {
	s := &cartesianStep{
		Tracker:  NewTracker(dom, tol, len(u)),
		weighted: dom.IsWeighted(),
		f:        f,
		links:    make([]Side, len(u)),
		base:     make([]Side, nodes),
		u:        u,
		v:        v,
		incident: make([]sets.Set[int], nodes),
	}

	for n := range s.incident {
		s.incident[n] = sets.New[int]()
	}

	return s
}

func (s *cartesianStep) Apply(ev *event.Event, touch func(int)) {
	if ev.Ref {
		s.base[ev.Slot].apply(ev)

		for l := range s.incident[ev.Slot] {
			touch(l)
		}

		return
	}

	l := ev.Slot
	s.links[l].apply(ev)

	if s.links[l].Present() {
		s.incident[s.u[l]].Insert(l)
		s.incident[s.v[l]].Insert(l)
	} else {
		s.incident[s.u[l]].Delete(l)
		s.incident[s.v[l]].Delete(l)
	}

	touch(l)
}

func (s *cartesianStep) Settle(l int, p Point) bool {
	link, bu, bv := &s.links[l], &s.base[s.u[l]], &s.base[s.v[l]]

	present := link.Present() && bu.Present() && bv.Present()
	w := 1.0

	if present && s.weighted {
		w, present = s.f(link.Sum(), bu.Sum(), bv.Sum())
	}

	s.Advance(l, p, w, present)

	return false
}

// mapStep keeps, for every output node v, the number of active links (u, v)
// whose u is present in the base operand.
type mapStep struct {
	*Tracker

	links        []Side
	base         []Side
	u, v         []int
	incident     []sets.Set[int]
	contributing []bool
	support      []int
	dirty        []int
	isDirty      []bool
}

func newMapStep(dom Domain, u, v []int, nodes, outputs int) *mapStep {
	s := &mapStep{
		Tracker:      NewTracker(dom.Unweighted(), 0, outputs),
		links:        make([]Side, len(u)),
		base:         make([]Side, nodes),
		u:            u,
		v:            v,
		incident:     make([]sets.Set[int], nodes),
		contributing: make([]bool, len(u)),
		support:      make([]int, outputs),
		isDirty:      make([]bool, len(u)),
	}

	for n := range s.incident {
		s.incident[n] = sets.New[int]()
	}

	return s
}

func (s *mapStep) mark(l int, touch func(int)) {
	if !s.isDirty[l] {
		s.isDirty[l] = true
		s.dirty = append(s.dirty, l)
	}

	touch(s.v[l])
}

func (s *mapStep) Apply(ev *event.Event, touch func(int)) {
	if ev.Ref {
		s.base[ev.Slot].apply(ev)

		for l := range s.incident[ev.Slot] {
			s.mark(l, touch)
		}

		return
	}

	l := ev.Slot
	s.links[l].apply(ev)

	if s.links[l].Present() {
		s.incident[s.u[l]].Insert(l)
	} else {
		s.incident[s.u[l]].Delete(l)
	}

	s.mark(l, touch)
}

func (s *mapStep) Settle(out int, p Point) bool {
	for _, l := range s.dirty {
		now := s.links[l].Present() && s.base[s.u[l]].Present()
		if now != s.contributing[l] {
			if now {
				s.support[s.v[l]]++
			} else {
				s.support[s.v[l]]--
			}

			s.contributing[l] = now
		}

		s.isDirty[l] = false
	}

	s.dirty = s.dirty[:0]

	s.Advance(out, p, 1, s.support[out] > 0)

	return false
}
