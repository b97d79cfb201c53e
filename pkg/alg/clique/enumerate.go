package clique

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Clique is a maximal clique: its sorted nodes and its window [Ts, Tf].
type Clique struct {
	Nodes []string `json:"nodes" yaml:"nodes"`
	Ts    float64  `json:"ts"    yaml:"ts"`
	Tf    float64  `json:"tf"    yaml:"tf"`
}

// Compare orders cliques by window, then nodes.
func Compare(a, b Clique) int {
	if c := cmp.Compare(a.Ts, b.Ts); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Tf, b.Tf); c != 0 {
		return c
	}

	return slices.Compare(a.Nodes, b.Nodes)
}

type candidate struct {
	nodes sets.Set[string]
	b, e  float64
	cands sets.Set[string]
}

// Enumerate returns every maximal clique of links exactly once, sorted with
// Compare. Cancellation is checked between candidates.
//
// The search starts from every pair window [ts, tf] as ({u, v}, [ts, ts]).
// A popped candidate first tries to stretch its window to the right, up to
// the earliest end among the windows of its pairs covering its start, then
// to add a node linked to all of its nodes over the whole window. Nodes are
// drawn from the common neighbours when the window is a single instant and
// from the inherited candidates otherwise. A candidate that cannot grow is
// maximal.
func Enumerate(ctx context.Context, links *Links) ([]Clique, error) {
	var (
		stack []candidate
		out   []Clique
		seen  = make(map[string]struct{})
	)

	push := func(c candidate) {
		id := identity(c)
		if _, ok := seen[id]; ok {
			return
		}

		seen[id] = struct{}{}
		stack = append(stack, c)
	}

	links.Each(func(u, v string, s Span) {
		push(candidate{nodes: sets.New(u, v), b: s.Ts, e: s.Ts})
	})

	for len(stack) > 0 {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}

		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maximal := true
		members := sets.List(c.nodes)

		if td, ok := reach(links, members, c.b); ok && td > c.e {
			maximal = false

			push(candidate{nodes: c.nodes, b: c.b, e: td, cands: c.cands})
		}

		cands := c.cands
		if c.b == c.e || cands == nil {
			cands = common(links, members)
		}

		for _, n := range sets.List(cands) {
			if !joins(links, members, n, c.b, c.e) {
				continue
			}

			maximal = false

			grown := c.nodes.Clone().Insert(n)
			rest := cands.Clone().Delete(n)

			push(candidate{nodes: grown, b: c.b, e: c.e, cands: rest})
		}

		if maximal {
			out = append(out, Clique{Nodes: members, Ts: c.b, Tf: c.e})
		}
	}

	slices.SortFunc(out, Compare)

	return out, nil
}

// reach returns the latest time up to which every pair of nodes stays linked
// from b on.
func reach(links *Links, nodes []string, b float64) (float64, bool) {
	td, found := 0.0, false

	for i, u := range nodes {
		for _, v := range nodes[i+1:] {
			s, ok := links.covering(u, v, b, b)
			if !ok {
				return 0, false
			}

			if !found || s.Tf < td {
				td, found = s.Tf, true
			}
		}
	}

	return td, found
}

// common returns the nodes linked at some time to every node.
func common(links *Links, nodes []string) sets.Set[string] {
	var out sets.Set[string]

	for _, n := range nodes {
		nb := links.Neighbours(n)
		if out == nil {
			out = nb.Clone()
		} else {
			out = out.Intersection(nb)
		}
	}

	if out == nil {
		return sets.New[string]()
	}

	return out.Delete(nodes...)
}

// joins reports whether n is linked to every node throughout [b, e].
func joins(links *Links, nodes []string, n string, b, e float64) bool {
	for _, u := range nodes {
		if _, ok := links.covering(u, n, b, e); !ok {
			return false
		}
	}

	return true
}

func identity(c candidate) string {
	var sb strings.Builder

	sb.WriteString(strings.Join(sets.List(c.nodes), "\x1f"))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatFloat(c.b, 'g', -1, 64))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatFloat(c.e, 'g', -1, 64))

	return sb.String()
}
