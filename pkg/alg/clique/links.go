// Package clique enumerates the maximal cliques of a link stream: node sets
// together with the largest time window over which every pair of them is
// continuously linked.
package clique

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Sentinel errors.
var (
	ErrPreconditionViolated = errors.New("precondition violated")
	ErrUnsupportedDirection = errors.New("unsupported direction")
)

// Direction selects which orientations of a directed link stream connect a pair.
type Direction uint8

// Directions.
const (
	// Both links a pair while either orientation is active.
	Both Direction = iota
	// Out links a pair while u->v and v->u are active together.
	Out
	// In is Out read from the receiving side.
	In
)

// ParseDirection parses "in", "out" or "both".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "both":
		return Both, nil
	case "out":
		return Out, nil
	case "in":
		return In, nil
	default:
		return 0, fmt.Errorf("%w: %q (want in, out or both)", ErrUnsupportedDirection, s)
	}
}

func (d Direction) String() string {
	switch d {
	case Both:
		return "both"
	case Out:
		return "out"
	case In:
		return "in"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Span is a closed time window.
type Span struct {
	Ts float64
	Tf float64
}

type pair struct {
	u, v string
}

func ordered(u, v string) pair {
	if v < u {
		u, v = v, u
	}

	return pair{u: u, v: v}
}

// Links holds, per unordered node pair, its sorted and disjoint time windows.
type Links struct {
	spans map[pair][]Span
	adj   map[string]sets.Set[string]
}

// NewLinks returns an empty link index.
func NewLinks() *Links {
	return &Links{spans: make(map[pair][]Span), adj: make(map[string]sets.Set[string])}
}

// Add appends the window [ts, tf] to the pair {u, v}. Windows of a pair must
// arrive sorted and must not overlap or touch the previous one.
func (l *Links) Add(u, v string, ts, tf float64) error {
	if u == v {
		return fmt.Errorf("%w: self loop on %q", ErrPreconditionViolated, u)
	}

	if ts > tf {
		return fmt.Errorf("%w: window [%v, %v] of %s-%s is reversed", ErrPreconditionViolated, ts, tf, u, v)
	}

	p := ordered(u, v)
	spans := l.spans[p]

	if n := len(spans); n > 0 && spans[n-1].Tf >= ts {
		return fmt.Errorf("%w: window [%v, %v] of %s-%s is not after [%v, %v]", ErrPreconditionViolated,
			ts, tf, p.u, p.v, spans[n-1].Ts, spans[n-1].Tf)
	}

	l.spans[p] = append(spans, Span{Ts: ts, Tf: tf})

	l.neighbours(u).Insert(v)
	l.neighbours(v).Insert(u)

	return nil
}

func (l *Links) neighbours(n string) sets.Set[string] {
	s, ok := l.adj[n]
	if !ok {
		s = sets.New[string]()
		l.adj[n] = s
	}

	return s
}

// Len returns the number of linked pairs.
func (l *Links) Len() int {
	return len(l.spans)
}

// Nodes returns the linked nodes, sorted.
func (l *Links) Nodes() []string {
	nodes := make([]string, 0, len(l.adj))
	for n := range l.adj {
		nodes = append(nodes, n)
	}

	sort.Strings(nodes)

	return nodes
}

// Neighbours returns the nodes ever linked to n.
func (l *Links) Neighbours(n string) sets.Set[string] {
	return l.adj[n]
}

// Spans returns the windows of {u, v}. The slice is owned by l.
func (l *Links) Spans(u, v string) []Span {
	return l.spans[ordered(u, v)]
}

// covering returns the window of {u, v} containing [b, e].
func (l *Links) covering(u, v string, b, e float64) (Span, bool) {
	spans := l.spans[ordered(u, v)]

	i := sort.Search(len(spans), func(i int) bool { return spans[i].Ts > b }) - 1
	if i < 0 || spans[i].Tf < e {
		return Span{}, false
	}

	return spans[i], true
}

// Each calls fn for every pair window, pairs in sorted order.
func (l *Links) Each(fn func(u, v string, s Span)) {
	pairs := make([]pair, 0, len(l.spans))
	for p := range l.spans {
		pairs = append(pairs, p)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].u != pairs[j].u {
			return pairs[i].u < pairs[j].u
		}

		return pairs[i].v < pairs[j].v
	})

	for _, p := range pairs {
		for _, s := range l.spans[p] {
			fn(p.u, p.v, s)
		}
	}
}
