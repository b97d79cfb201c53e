// Package event decomposes interval tables into half-events and reassembles
// sweep output into tables.
package event

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/order"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Broadcast is the slot of a reference event applied to every slot of its group.
const Broadcast = -1

// Event is one endpoint of an interval.
type Event struct {
	T      float64
	W      float64
	Slot   int
	Group  int
	Start  bool
	Closed bool
	Ref    bool
}

// Token returns the tie-break token of the event.
func (e *Event) Token() order.Token {
	return order.Token{Ref: e.Ref, Closed: e.Closed, Start: e.Start}
}

// Placer decides the slot of a row key. ok is false to skip the row.
type Placer func(key []string) (slot, group int, ok bool)

// Append decomposes every row of tbl into a start and an end event.
// Discrete and instantaneous bounds are closed. Unweighted rows weigh 1.
func Append(dst []Event, tbl *table.Table, ref bool, place Placer) []Event {
	schema := tbl.Schema()

	for _, row := range tbl.All() {
		slot, group, ok := place(row.Key)
		if !ok {
			continue
		}

		w := 1.0
		if schema.Weighted {
			w = row.W
		}

		startClosed, endClosed := row.StartClosed, row.EndClosed
		if schema.Discrete || schema.Instant {
			startClosed, endClosed = true, true
		}

		dst = append(dst,
			Event{T: row.Ts, W: w, Slot: slot, Group: group, Start: true, Closed: startClosed, Ref: ref},
			Event{T: row.Tf, W: w, Slot: slot, Group: group, Start: false, Closed: endClosed, Ref: ref},
		)
	}

	return dst
}

// Sort orders events by time, then by the rank of their token in ord.
// Ties keep their input order.
func Sort(events []Event, ord order.Order) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := cmp.Compare(a.T, b.T); c != 0 {
			return c
		}

		return ord.Compare(a.Token(), b.Token())
	})
}
