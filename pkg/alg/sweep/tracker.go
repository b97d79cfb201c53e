package sweep

import (
	"math"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
)

// cell is the output cache of one slot: the open piece and the last closed
// one, held back so that an adjacent equal piece can extend it.
type cell struct {
	start event.Bound
	w     float64
	open  bool
	last  event.Piece
	held  bool
}

// Tracker turns the settled value of every slot into output pieces.
type Tracker struct {
	dom   Domain
	tol   float64
	cells []cell
	out   []event.Piece
}

// NewTracker returns a tracker over slots slots. Weights within tol are equal.
func NewTracker(dom Domain, tol float64, slots int) *Tracker {
	return &Tracker{dom: dom, tol: tol, cells: make([]cell, slots)}
}

// Advance records that slot holds weight w (when present) from p on.
// A change of value closes the open piece at p and opens a new one.
func (t *Tracker) Advance(slot int, p Point, w float64, present bool) {
	c := &t.cells[slot]
	seam := t.dom.Seam(p.Stage)

	if c.open && (!present || (!seam && !t.same(c.w, w))) {
		t.close(slot, c, t.dom.End(p))
	}

	if present && !c.open && !seam {
		c.start, c.w, c.open = t.dom.Begin(p), w, true
	}
}

func (t *Tracker) close(slot int, c *cell, end event.Bound) {
	c.open = false

	if !t.dom.Valid(c.start, end) {
		return
	}

	p := event.Piece{Slot: slot, Start: c.start, End: end, W: c.w}

	if c.held && t.dom.Adjacent(c.last.End, p.Start) && t.same(c.last.W, p.W) {
		c.last.End = p.End

		return
	}

	if c.held {
		t.out = append(t.out, c.last)
	}

	c.last, c.held = p, true
}

func (t *Tracker) same(a, b float64) bool {
	return math.Abs(a-b) <= t.tol
}

// Flush releases held pieces. Pieces still open are dropped.
func (t *Tracker) Flush() {
	for i := range t.cells {
		c := &t.cells[i]
		if c.held {
			t.out = append(t.out, c.last)
			c.held = false
		}
	}
}

// Pieces returns the pieces emitted so far.
func (t *Tracker) Pieces() []event.Piece {
	return t.out
}
