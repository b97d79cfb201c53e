package sweep

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/event"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Config holds the addressing and execution settings of an Engine.
type Config struct {
	// OnKey makes the second operand a reference applied to every key of
	// the first operand whose projection on the reference keys matches.
	OnKey bool
	// Workers partitions by-key sweeps by slot when greater than 1.
	Workers int
	// Tolerance is the largest difference between equal weights.
	Tolerance float64
	// Stats, when set, receives the statistics of the last sweep.
	Stats *Stats
}

// Option configures an Engine.
type Option func(*Config)

// OnKey addresses the second operand as a reference for every key of the first.
func OnKey() Option {
	return func(c *Config) { c.OnKey = true }
}

// Workers sets the number of concurrent by-key partitions.
func Workers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// Tolerance sets the weight equality threshold.
func Tolerance(tol float64) Option {
	return func(c *Config) { c.Tolerance = tol }
}

// Record stores the statistics of each sweep in st.
func Record(st *Stats) Option {
	return func(c *Config) { c.Stats = st }
}

// Engine runs sweep operations over tables of one Domain.
type Engine struct {
	dom Domain
	cfg Config
}

// New returns an engine over dom.
func New(dom Domain, opts ...Option) *Engine {
	e := &Engine{dom: dom}
	for _, opt := range opts {
		opt(&e.cfg)
	}

	return e
}

// Domain returns the time model of the engine.
func (e *Engine) Domain() Domain {
	return e.dom
}

// Merge returns the canonical form of t. Weights active at the same point
// are folded with reduce.
func (e *Engine) Merge(t *table.Table, reduce combine.Reduce) (*table.Table, error) {
	err := e.accept(t)
	if err != nil {
		return nil, err
	}

	idx := event.NewIndex()
	events := event.Append(nil, t, false, idx.Place)
	event.Sort(events, e.dom.Order())

	steps, _ := sweepAll(e, events, func() *mergeStep {
		return newMergeStep(e.dom, e.cfg.Tolerance, idx.Len(), reduce)
	})

	return event.Assemble(t.Schema(), idx, pieces(steps))
}

// Combine sweeps two canonical operands with rule and returns the result
// keyed like a.
func (e *Engine) Combine(a, b *table.Table, rule Rule) (*table.Table, error) {
	idx, events, err := e.pair(a, b)
	if err != nil {
		return nil, err
	}

	steps, _ := sweepAll(e, events, func() *binaryStep {
		return newBinaryStep(e.dom, e.cfg.Tolerance, idx.Len(), rule)
	})

	return event.Assemble(a.Schema(), idx, pieces(steps))
}

// Decide reports whether test holds at some point of some key. The sweep
// stops at the first such point.
func (e *Engine) Decide(a, b *table.Table, test Test) (bool, error) {
	idx, events, err := e.pair(a, b)
	if err != nil {
		return false, err
	}

	slots := idx.Len()
	_, st := sweepAll(e, events, func() *predicateStep {
		return &predicateStep{dom: e.dom, test: test, a: make([]Side, slots), b: make([]Side, slots)}
	})

	return st.Stopped, nil
}

// Measure integrates g over the time both operands are active. Keys are
// ignored.
func (e *Engine) Measure(a, b *table.Table, g combine.Measure) (float64, error) {
	err := e.accept(a, b)
	if err != nil {
		return 0, err
	}

	single := func([]string) (int, int, bool) { return 0, 0, true }

	events := event.Append(nil, a, false, single)
	events = event.Append(events, b, true, single)
	event.Sort(events, e.dom.Order())

	step := &measureStep{dom: e.dom, g: g}
	e.record(Run(events, e.dom, step))

	return step.total, nil
}

// Cartesian restricts every link (u, v) to the times both u and v are
// present in base, weighting the result with f.
func (e *Engine) Cartesian(links, base *table.Table, f combine.Ternary) (*table.Table, error) {
	r, err := e.restricted(links, base, true)
	if err != nil {
		return nil, err
	}

	step := newCartesianStep(e.dom, e.cfg.Tolerance, r.u, r.v, r.nodes.Len(), f)
	e.record(Run(r.events, e.dom, step))

	return event.Assemble(links.Schema(), r.links, step.Pieces())
}

// Map returns, keyed by the second link column v, the times at which some
// link (u, v) is active while u is present in base. The result is
// unweighted.
func (e *Engine) Map(links, base *table.Table) (*table.Table, error) {
	r, err := e.restricted(links, base, false)
	if err != nil {
		return nil, err
	}

	outputs := event.NewIndex()
	out := make([]int, r.links.Len())

	for l := range out {
		out[l] = outputs.Slot(r.links.Key(l)[1:])
	}

	step := newMapStep(e.dom, r.u, out, r.nodes.Len(), outputs.Len())
	e.record(Run(r.events, e.dom.Unweighted(), step))

	ls := links.Schema()
	schema := table.Schema{Keys: ls.Keys[1:], Discrete: ls.Discrete}

	return event.Assemble(schema, outputs, step.Pieces())
}

func (e *Engine) accept(ts ...*table.Table) error {
	for _, t := range ts {
		if !e.dom.Accepts(t.Schema()) {
			return fmt.Errorf("%w: %s table in a %s sweep", table.ErrSchemaMismatch, t.Schema(), e.dom)
		}
	}

	return nil
}

// pair decomposes two operands by key, or with b as an on-key reference.
func (e *Engine) pair(a, b *table.Table) (*event.Index, []event.Event, error) {
	err := e.accept(a, b)
	if err != nil {
		return nil, nil, err
	}

	as, bs := a.Schema(), b.Schema()
	idx := event.NewIndex()

	if !e.cfg.OnKey {
		if !as.SameKeys(bs) {
			return nil, nil, fmt.Errorf("%w: keys %v and %v differ", table.ErrSchemaMismatch, as.Keys, bs.Keys)
		}

		events := event.Append(nil, a, false, idx.Place)
		events = event.Append(events, b, true, idx.Place)
		event.Sort(events, e.dom.Order())

		return idx, events, nil
	}

	pos, err := as.Positions(bs.Keys)
	if err != nil {
		return nil, nil, fmt.Errorf("reference keys: %w", err)
	}

	idx.Intern(a)
	groups := event.GroupBy(idx, pos)

	events := event.Append(nil, a, false, idx.PlaceKnown)
	events = event.Append(events, b, true, groups.Place)
	event.Sort(events, e.dom.Order())

	return idx, groups.Expand(events), nil
}

type restriction struct {
	links  *event.Index
	nodes  *event.Index
	u, v   []int
	events []event.Event
}

func (e *Engine) restricted(links, base *table.Table, both bool) (*restriction, error) {
	err := e.accept(links, base)
	if err != nil {
		return nil, err
	}

	if n := len(links.Schema().Keys); n != 2 {
		return nil, fmt.Errorf("%w: links need 2 key columns, got %d", table.ErrSchemaMismatch, n)
	}

	if n := len(base.Schema().Keys); n != 1 {
		return nil, fmt.Errorf("%w: base needs 1 key column, got %d", table.ErrSchemaMismatch, n)
	}

	r := &restriction{links: event.NewIndex(), nodes: event.NewIndex()}
	r.links.Intern(links)

	for l := range r.links.Len() {
		key := r.links.Key(l)
		r.u = append(r.u, r.nodes.Slot(key[:1]))

		if both {
			r.v = append(r.v, r.nodes.Slot(key[1:]))
		}
	}

	r.events = event.Append(nil, links, false, r.links.PlaceKnown)
	r.events = event.Append(r.events, base, true, r.nodes.PlaceKnown)
	event.Sort(r.events, e.dom.Order())

	return r, nil
}

func (e *Engine) record(st Stats) {
	if e.cfg.Stats != nil {
		*e.cfg.Stats = st
	}
}

// sweepAll runs one step per partition and records the combined statistics.
// Partitions share no slot, so each runs on its own; a step that stops halts
// every partition.
func sweepAll[S Step](e *Engine, events []event.Event, newStep func() S) ([]S, Stats) {
	n := e.cfg.Workers
	if n <= 1 {
		step := newStep()
		st := Run(events, e.dom, step)
		e.record(st)

		return []S{step}, st
	}

	parts := make([][]event.Event, n)
	for _, ev := range events {
		parts[ev.Slot%n] = append(parts[ev.Slot%n], ev)
	}

	steps := make([]S, n)
	stats := make([]Stats, n)

	var (
		wg   sync.WaitGroup
		done atomic.Bool
	)

	for i := range parts {
		steps[i] = newStep()

		wg.Add(1)

		go func() {
			defer wg.Done()

			stats[i] = Run(parts[i], e.dom, halting{Step: steps[i], done: &done})
		}()
	}

	wg.Wait()

	var total Stats
	for _, st := range stats {
		total.add(st)
	}

	e.record(total)

	return steps, total
}

func pieces[S piecer](steps []S) []event.Piece {
	if len(steps) == 1 {
		return steps[0].Pieces()
	}

	var out []event.Piece
	for _, s := range steps {
		out = append(out, s.Pieces()...)
	}

	return out
}
