// Package sweep is the generic interval event-sweep core.
//
// A sweep consumes events sorted by the order of its Domain. Events sharing a
// timestamp are applied stage by stage; after each stage the runner settles
// every slot touched at that timestamp, which is where a Step turns the
// current state of a slot into output. Slot state lives in index-addressed
// arenas owned by the step.
package sweep

import (
	"sync/atomic"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
)

// Step is the per-operation update rule of a sweep.
type Step interface {
	// Apply folds one event into the state of its slot. touch marks every
	// slot whose value may have changed.
	Apply(ev *event.Event, touch func(slot int))
	// Settle observes the state of a touched slot at p. Returning true stops
	// the sweep.
	Settle(slot int, p Point) (stop bool)
	// Flush is called once after the last event unless the sweep stopped.
	Flush()
}

// Stats describes one sweep.
type Stats struct {
	// Events is the number of events applied.
	Events int
	// Settles is the number of slot settles.
	Settles int
	// Stopped is set when a step ended the sweep early.
	Stopped bool
}

func (s *Stats) add(o Stats) {
	s.Events += o.Events
	s.Settles += o.Settles
	s.Stopped = s.Stopped || o.Stopped
}

// Run sweeps events, which must be sorted by dom.Order().
func Run(events []event.Event, dom Domain, step Step) Stats {
	var (
		st      Stats
		touched []int
		marked  = make(map[int]struct{})
	)

	touch := func(slot int) {
		if _, ok := marked[slot]; ok {
			return
		}

		marked[slot] = struct{}{}
		touched = append(touched, slot)
	}

	stages := dom.Stages()

	for i := 0; i < len(events); {
		t := events[i].T

		for stage := range stages {
			applied := 0

			for i < len(events) && events[i].T == t && dom.Stage(events[i].Token()) == stage {
				step.Apply(&events[i], touch)
				i++
				applied++
			}

			st.Events += applied

			if len(touched) == 0 || (applied == 0 && dom.Seam(stage)) {
				continue
			}

			at := Point{T: t, Stage: stage}

			for _, slot := range touched {
				st.Settles++

				if step.Settle(slot, at) {
					st.Stopped = true

					return st
				}
			}
		}

		touched = touched[:0]
		clear(marked)
	}

	step.Flush()

	return st
}

// halting stops a partition once any partition sharing done has stopped.
type halting struct {
	Step

	done *atomic.Bool
}

func (h halting) Settle(slot int, p Point) bool {
	if h.done.Load() {
		return true
	}

	if h.Step.Settle(slot, p) {
		h.done.Store(true)

		return true
	}

	return false
}
