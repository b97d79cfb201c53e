package sweep

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
)

type countingStep struct {
	stopAt  int
	settles int
}

func (s *countingStep) Apply(ev *event.Event, touch func(int)) { touch(ev.Slot) }

func (s *countingStep) Settle(int, Point) bool {
	s.settles++

	return s.settles == s.stopAt
}

func (s *countingStep) Flush() {}

func TestHaltingSharesStop(t *testing.T) {
	t.Parallel()

	var done atomic.Bool

	first := &countingStep{stopAt: 1}
	assert.True(t, halting{Step: first, done: &done}.Settle(0, Point{}))
	assert.True(t, done.Load())

	second := &countingStep{}
	assert.True(t, halting{Step: second, done: &done}.Settle(0, Point{}))
	assert.Zero(t, second.settles, "a halted partition settles nothing")
}

func TestHaltingKeepsRunningUntilStop(t *testing.T) {
	t.Parallel()

	var done atomic.Bool

	step := &countingStep{}
	h := halting{Step: step, done: &done}

	for range 3 {
		assert.False(t, h.Settle(0, Point{}))
	}

	assert.Equal(t, 3, step.settles)
	assert.False(t, done.Load())
}
