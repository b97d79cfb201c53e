// Package instant implements the weighted algebra of instantaneous intervals,
// rows with ts == tf. Nothing is swept: operands are accumulated per key and
// timestamp, and points are combined directly.
package instant

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

type config struct {
	onKey bool
}

// Option configures an operation.
type Option func(*config)

// OnKey makes the second operand a reference for every key of the first.
func OnKey() Option {
	return func(c *config) { c.onKey = true }
}

// points maps the timestamps of one key to their total weight.
type points map[float64]float64

// accum groups the rows of a table by key.
type accum struct {
	order []string
	keys  map[string][]string
	byKey map[string]points
}

func accumulate(t *table.Table) *accum {
	acc := &accum{keys: make(map[string][]string), byKey: make(map[string]points)}

	for _, row := range t.All() {
		id := table.KeyID(row.Key)

		pts, ok := acc.byKey[id]
		if !ok {
			pts = make(points)
			acc.byKey[id] = pts
			acc.keys[id] = row.Key
			acc.order = append(acc.order, id)
		}

		pts[row.Ts] += row.W
	}

	return acc
}

// pairing lists the keys an operation visits and the reference points of each.
type pairing struct {
	a, b *accum
	keys []string
	ref  func(id string) points
}

func pair(a, b *table.Table, union bool, opts []Option) (*pairing, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	as, bs := a.Schema(), b.Schema()
	if !as.Instant || !bs.Instant || !as.SameMode(bs) {
		return nil, fmt.Errorf("%w: instant algebra needs instant operands of one mode, got %s and %s",
			table.ErrSchemaMismatch, as, bs)
	}

	p := &pairing{a: accumulate(a), b: accumulate(b)}

	if !cfg.onKey {
		if !as.SameKeys(bs) {
			return nil, fmt.Errorf("%w: keys %v and %v differ", table.ErrSchemaMismatch, as.Keys, bs.Keys)
		}

		p.keys = p.a.order
		if union {
			seen := make(map[string]bool, len(p.a.order))
			for _, id := range p.a.order {
				seen[id] = true
			}

			p.keys = slices.Clone(p.a.order)

			for _, id := range p.b.order {
				if !seen[id] {
					p.keys = append(p.keys, id)
				}
			}
		}

		p.ref = func(id string) points { return p.b.byKey[id] }

		return p, nil
	}

	pos, err := as.Positions(bs.Keys)
	if err != nil {
		return nil, fmt.Errorf("reference keys: %w", err)
	}

	p.keys = p.a.order
	p.ref = func(id string) points {
		key := p.a.keys[id]
		proj := make([]string, len(pos))

		for i, at := range pos {
			proj[i] = key[at]
		}

		return p.b.byKey[table.KeyID(proj)]
	}

	return p, nil
}

func (p *pairing) key(id string) []string {
	if key, ok := p.a.keys[id]; ok {
		return key
	}

	return p.b.keys[id]
}

// combineRule decides the weight of one timestamp.
type combineRule func(wa, wb float64, inA, inB bool) (float64, bool)

func (p *pairing) build(schema table.Schema, rule combineRule) (*table.Table, error) {
	var rows []table.Row

	for _, id := range p.keys {
		pa, pb := p.a.byKey[id], p.ref(id)
		times := make(map[float64]struct{}, len(pa)+len(pb))

		for t := range pa {
			times[t] = struct{}{}
		}

		for t := range pb {
			times[t] = struct{}{}
		}

		for _, t := range slices.Sorted(maps.Keys(times)) {
			wa, inA := pa[t]
			wb, inB := pb[t]

			w, ok := rule(wa, wb, inA, inB)
			if !ok {
				continue
			}

			rows = append(rows, table.Row{Key: p.key(id), Ts: t, Tf: t, StartClosed: true, EndClosed: true, W: w})
		}
	}

	out, err := table.New(schema, rows...)
	if err != nil {
		return nil, err
	}

	return out.Sorted(), nil
}

// Merge sums the weights of rows sharing a key and a timestamp.
func Merge(t *table.Table) (*table.Table, error) {
	if !t.Schema().Instant {
		return nil, fmt.Errorf("%w: %s is not instantaneous", table.ErrSchemaMismatch, t.Schema())
	}

	p := &pairing{a: accumulate(t), b: &accum{byKey: map[string]points{}}}
	p.keys = p.a.order
	p.ref = func(string) points { return nil }

	return p.build(t.Schema(), func(wa, _ float64, _, _ bool) (float64, bool) { return wa, true })
}

// Union keeps every timestamp of a or b, combining shared ones with f.
func Union(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	p, err := pair(a, b, true, opts)
	if err != nil {
		return nil, err
	}

	return p.build(a.Schema(), func(wa, wb float64, inA, inB bool) (float64, bool) {
		switch {
		case inA && inB:
			return f(wa, wb)
		case inA:
			return wa, true
		default:
			return wb, true
		}
	})
}

// Intersection keeps the timestamps of both a and b, weighted with f.
func Intersection(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	p, err := pair(a, b, false, opts)
	if err != nil {
		return nil, err
	}

	return p.build(a.Schema(), func(wa, wb float64, inA, inB bool) (float64, bool) {
		if !inA || !inB {
			return 0, false
		}

		return f(wa, wb)
	})
}

// Difference keeps the timestamps of a absent from b, and shared ones for
// which f holds.
func Difference(a, b *table.Table, f combine.Binary, opts ...Option) (*table.Table, error) {
	p, err := pair(a, b, false, opts)
	if err != nil {
		return nil, err
	}

	return p.build(a.Schema(), func(wa, wb float64, inA, inB bool) (float64, bool) {
		switch {
		case !inA:
			return 0, false
		case !inB:
			return wa, true
		default:
			return f(wa, wb)
		}
	})
}

// IsSuperset reports whether every timestamp of b is in a with f holding.
func IsSuperset(a, b *table.Table, f combine.Predicate, opts ...Option) (bool, error) {
	p, err := pair(a, b, true, opts)
	if err != nil {
		return false, err
	}

	for _, id := range p.keys {
		pa := p.a.byKey[id]

		for t, wb := range p.ref(id) {
			wa, ok := pa[t]
			if !ok || !f(wa, wb) {
				return false, nil
			}
		}
	}

	return true, nil
}

// NonemptyIntersection reports whether a and b share a timestamp for which f holds.
func NonemptyIntersection(a, b *table.Table, f combine.Predicate, opts ...Option) (bool, error) {
	p, err := pair(a, b, false, opts)
	if err != nil {
		return false, err
	}

	for _, id := range p.keys {
		pb := p.ref(id)

		for t, wa := range p.a.byKey[id] {
			if wb, ok := pb[t]; ok && f(wa, wb) {
				return true, nil
			}
		}
	}

	return false, nil
}
