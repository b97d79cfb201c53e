package sweep

import (
	"slices"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
)

// Side is the state of one operand in one slot: the multiset of weights of
// its active intervals. Counting tolerates overlapping duplicates.
type Side struct {
	ws []float64
}

// Present reports whether some interval is active.
func (s *Side) Present() bool {
	return len(s.ws) > 0
}

// Count returns the number of active intervals.
func (s *Side) Count() int {
	return len(s.ws)
}

// Sum returns the total active weight.
func (s *Side) Sum() float64 {
	total := 0.0
	for _, w := range s.ws {
		total += w
	}

	return total
}

// Weights returns the active weights. The slice is owned by the side.
func (s *Side) Weights() []float64 {
	return s.ws
}

func (s *Side) apply(ev *event.Event) {
	if ev.Start {
		s.ws = append(s.ws, ev.W)

		return
	}

	i := slices.Index(s.ws, ev.W)
	if i < 0 {
		i = len(s.ws) - 1
	}

	if i < 0 {
		return
	}

	last := len(s.ws) - 1
	s.ws[i] = s.ws[last]
	s.ws = s.ws[:last]
}
