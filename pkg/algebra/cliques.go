package algebra

import (
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/clique"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

func linkKeys(links *table.Table) ([]string, error) {
	keys := links.Schema().Keys
	if len(keys) != 2 {
		return nil, fmt.Errorf("%w: links need 2 key columns, got %v", ErrSchemaMismatch, keys)
	}

	return keys, nil
}

// reversed swaps the endpoints of every link, keeping the column names.
func reversed(links *table.Table) (*table.Table, error) {
	keys, err := linkKeys(links)
	if err != nil {
		return nil, err
	}

	swapped, err := links.Project(keys[1], keys[0])
	if err != nil {
		return nil, err
	}

	return swapped.Rename(keys...)
}

// Neighborhood returns, per node, the times it neighbours a node present in
// base. Out follows links from u to v, In from v to u, and Both unites them.
func (a *Algebra) Neighborhood(
	ctx context.Context, links, base *table.Table, dir clique.Direction,
) (*table.Table, error) {
	return observe(ctx, a, "neighborhood", schemas(links, base), nil,
		func(ctx context.Context, _ *call) (*table.Table, error) {
			keys, err := linkKeys(links)
			if err != nil {
				return nil, err
			}

			if dir == clique.Out {
				return a.MapIntersection(ctx, links, base)
			}

			swapped, err := links.Project(keys[1], keys[0])
			if err != nil {
				return nil, err
			}

			in, err := a.MapIntersection(ctx, swapped, base)
			if err != nil {
				return nil, err
			}

			switch dir {
			case clique.In:
				return in, nil
			case clique.Both:
				out, err := a.MapIntersection(ctx, links, base)
				if err != nil {
					return nil, err
				}

				in, err = in.Rename(out.Schema().Keys...)
				if err != nil {
					return nil, err
				}

				return a.Union(ctx, out, in)
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedDirection, dir)
			}
		})
}

// MaximalCliques enumerates the maximal cliques of a link stream. Both joins
// a pair while either orientation is active; In and Out while both are.
// With Delta, an instantaneous stream is widened first. Connected components
// are enumerated concurrently. Pair windows must be closed once joined.
func (a *Algebra) MaximalCliques(
	ctx context.Context, links *table.Table, dir clique.Direction, opts ...CallOption,
) ([]clique.Clique, error) {
	return observe(ctx, a, "cliques", schemas(links), opts, func(ctx context.Context, c *call) ([]clique.Clique, error) {
		stream, err := widen(links, c.delta)
		if err != nil {
			return nil, err
		}

		pairs, err := a.fold(ctx, stream, dir)
		if err != nil {
			return nil, err
		}

		comps, err := components(pairs)
		if err != nil {
			return nil, err
		}

		found := make([][]clique.Clique, len(comps))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(1, a.opts.Workers))

		for i, comp := range comps {
			g.Go(func() error {
				cliques, err := clique.Enumerate(gctx, comp)
				found[i] = cliques

				return err
			})
		}

		err = g.Wait()
		if err != nil {
			return nil, err
		}

		out := slices.Concat(found...)
		slices.SortFunc(out, clique.Compare)

		return out, nil
	})
}

// widen turns every instant t of links into [t-delta/2, t+delta/2], clipped
// to the first and last instant of the stream. Discrete bounds are truncated.
func widen(links *table.Table, delta float64) (*table.Table, error) {
	if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, fmt.Errorf("%w: delta %v", ErrPreconditionViolated, delta)
	}

	if delta == 0 {
		return links, nil
	}

	schema := links.Schema()
	if !schema.Instant {
		return nil, fmt.Errorf("%w: delta %v needs an instantaneous link stream", ErrPreconditionViolated, delta)
	}

	rows := links.Rows()
	schema.Instant = false

	if len(rows) == 0 {
		return table.New(schema)
	}

	lo, hi := rows[0].Ts, rows[0].Ts
	for _, r := range rows[1:] {
		lo, hi = min(lo, r.Ts), max(hi, r.Ts)
	}

	for i := range rows {
		ts, tf := max(rows[i].Ts-delta/2, lo), min(rows[i].Ts+delta/2, hi)
		if schema.Discrete {
			ts, tf = math.Trunc(ts), math.Trunc(tf)
		}

		rows[i].Ts, rows[i].Tf = ts, tf
	}

	return table.New(schema, rows...)
}

// fold turns directed links into unweighted pairs (u, v) with u < v.
func (a *Algebra) fold(ctx context.Context, links *table.Table, dir clique.Direction) (*table.Table, error) {
	t, err := shadow(links)
	if err != nil {
		return nil, err
	}

	t, err = a.Merge(ctx, t)
	if err != nil {
		return nil, err
	}

	rev, err := reversed(t)
	if err != nil {
		return nil, err
	}

	var folded *table.Table

	switch dir {
	case clique.Both:
		folded, err = a.Union(ctx, t, rev)
	case clique.In, clique.Out:
		folded, err = a.Intersection(ctx, t, rev)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedDirection, dir)
	}

	if err != nil {
		return nil, err
	}

	return folded.Filter(func(r table.Row) bool { return r.Key[0] < r.Key[1] }), nil
}

type hull struct {
	u, v string
	clique.Span

	startClosed, endClosed bool
}

// meets reports whether r starts inside h or right where h ends, with no
// point missing between them.
func (h *hull) meets(r table.Row) bool {
	if h.u != r.Key[0] || h.v != r.Key[1] {
		return false
	}

	return r.Ts < h.Tf || (r.Ts == h.Tf && (h.endClosed || r.StartClosed))
}

// hulls joins the pair windows that leave no point between them. Every
// joined window must be closed. Rows must be sorted by pair, then start.
func hulls(pairs *table.Table) ([]hull, error) {
	var out []hull

	for _, r := range pairs.All() {
		if n := len(out); n > 0 && out[n-1].meets(r) {
			last := &out[n-1]

			switch {
			case r.Tf > last.Tf:
				last.Tf, last.endClosed = r.Tf, r.EndClosed
			case r.Tf == last.Tf:
				last.endClosed = last.endClosed || r.EndClosed
			}

			continue
		}

		out = append(out, hull{
			u: r.Key[0], v: r.Key[1], Span: clique.Span{Ts: r.Ts, Tf: r.Tf},
			startClosed: r.StartClosed, endClosed: r.EndClosed,
		})
	}

	for _, h := range out {
		if !h.startClosed || !h.endClosed {
			return nil, fmt.Errorf("%w: window %s of %s-%s has an open bound", ErrPreconditionViolated,
				table.Row{Ts: h.Ts, Tf: h.Tf, StartClosed: h.startClosed, EndClosed: h.endClosed}.Interval(),
				h.u, h.v)
		}
	}

	return out, nil
}

// components splits the pair graph into its connected components.
func components(pairs *table.Table) ([]*clique.Links, error) {
	parent := make(map[string]string)

	var find func(n string) string

	find = func(n string) string {
		p, ok := parent[n]
		if !ok {
			parent[n] = n

			return n
		}

		if p == n {
			return n
		}

		root := find(p)
		parent[n] = root

		return root
	}

	hs, err := hulls(pairs)
	if err != nil {
		return nil, err
	}

	for _, h := range hs {
		ru, rv := find(h.u), find(h.v)
		if ru != rv {
			parent[max(ru, rv)] = min(ru, rv)
		}
	}

	byRoot := make(map[string]*clique.Links)

	var roots []string

	for _, h := range hs {
		root := find(h.u)

		links, ok := byRoot[root]
		if !ok {
			links = clique.NewLinks()
			byRoot[root] = links
			roots = append(roots, root)
		}

		err := links.Add(h.u, h.v, h.Ts, h.Tf)
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(roots)

	out := make([]*clique.Links, len(roots))
	for i, root := range roots {
		out[i] = byRoot[root]
	}

	return out, nil
}
