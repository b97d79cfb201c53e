package event

import (
	"slices"

	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Index interns key tuples into dense slot numbers.
type Index struct {
	slots map[string]int
	keys  [][]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{slots: make(map[string]int)}
}

// Slot returns the slot of key, assigning the next free one on first sight.
func (x *Index) Slot(key []string) int {
	id := table.KeyID(key)

	if slot, ok := x.slots[id]; ok {
		return slot
	}

	slot := len(x.keys)
	x.slots[id] = slot
	x.keys = append(x.keys, slices.Clone(key))

	return slot
}

// Lookup returns the slot of key without assigning one.
func (x *Index) Lookup(key []string) (int, bool) {
	slot, ok := x.slots[table.KeyID(key)]

	return slot, ok
}

// Key returns the key tuple of slot.
func (x *Index) Key(slot int) []string {
	return x.keys[slot]
}

// Len returns the number of slots.
func (x *Index) Len() int {
	return len(x.keys)
}

// Intern assigns a slot to every key of tbl, in row order.
func (x *Index) Intern(tbl *table.Table) {
	for _, row := range tbl.All() {
		x.Slot(row.Key)
	}
}

// Place assigns slots as rows are met.
func (x *Index) Place(key []string) (int, int, bool) {
	return x.Slot(key), 0, true
}

// PlaceKnown keeps only rows whose key already has a slot.
func (x *Index) PlaceKnown(key []string) (int, int, bool) {
	slot, ok := x.Lookup(key)

	return slot, 0, ok
}

// Groups partitions the slots of an index by the projection of their key
// onto a subset of key positions. A reference row keyed by that projection
// applies to every slot of its group.
type Groups struct {
	ids     map[string]int
	members [][]int
}

// GroupBy groups the slots of x by the key values at positions.
// With no positions every slot belongs to a single group.
func GroupBy(x *Index, positions []int) *Groups {
	g := &Groups{ids: make(map[string]int)}

	proj := make([]string, len(positions))

	for slot, key := range x.keys {
		for i, p := range positions {
			proj[i] = key[p]
		}

		id := table.KeyID(proj)

		group, ok := g.ids[id]
		if !ok {
			group = len(g.members)
			g.ids[id] = group
			g.members = append(g.members, nil)
		}

		g.members[group] = append(g.members[group], slot)
	}

	return g
}

// Members returns the slots of group.
func (g *Groups) Members(group int) []int {
	if g == nil || group < 0 || group >= len(g.members) {
		return nil
	}

	return g.members[group]
}

// Place maps a reference key to its broadcast group. Rows whose projection
// matches no slot are skipped.
func (g *Groups) Place(key []string) (int, int, bool) {
	group, ok := g.ids[table.KeyID(key)]

	return Broadcast, group, ok
}

// Expand replaces every broadcast event by one event per member slot.
func (g *Groups) Expand(events []Event) []Event {
	out := make([]Event, 0, len(events))

	for _, ev := range events {
		if ev.Slot != Broadcast {
			out = append(out, ev)

			continue
		}

		for _, slot := range g.Members(ev.Group) {
			ev.Slot = slot
			out = append(out, ev)
		}
	}

	return out
}
