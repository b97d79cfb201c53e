package algebra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/combine"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/instant"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/sweep"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/wcontinuous"
	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/wdiscrete"
	"github.com/Sumatoshi-tech/streamgraph/pkg/observability"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Names selects combination functions by registry name. Empty names keep
// the defaults of each weighted algebra.
type Names struct {
	Merge        string
	Union        string
	Intersection string
	Difference   string
	Superset     string
	Nonempty     string
	Cartesian    string
	Measure      string
}

// Options tunes every operation of an Algebra.
type Options struct {
	// Workers partitions by-key sweeps and clique components.
	Workers int
	// Tolerance is the largest difference between equal weights.
	Tolerance float64
	// Zero is the hinge-loss threshold of weighted differences.
	Zero float64
	// Combine overrides the weighted combination functions.
	Combine Names
}

// Algebra dispatches operations to the algebra of their operands.
type Algebra struct {
	opts    Options
	sets    map[Mode]combine.Set
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.SweepMetrics
}

// Option configures an Algebra.
type Option func(*Algebra)

// WithLogger logs every operation at debug level on l.
func WithLogger(l *slog.Logger) Option {
	return func(a *Algebra) { a.logger = l }
}

// WithTracer opens a span per operation.
func WithTracer(t trace.Tracer) Option {
	return func(a *Algebra) { a.tracer = t }
}

// WithMetrics records every operation in m.
func WithMetrics(m *observability.SweepMetrics) Option {
	return func(a *Algebra) { a.metrics = m }
}

// New returns an Algebra. Unknown combination names fail with
// combine.ErrUnknown.
func New(opts Options, with ...Option) (*Algebra, error) {
	a := &Algebra{
		opts:   opts,
		logger: slog.New(slog.DiscardHandler),
		tracer: nooptrace.NewTracerProvider().Tracer("algebra"),
	}

	for _, o := range with {
		o(a)
	}

	a.sets = make(map[Mode]combine.Set, 3)

	for mode, defaults := range map[Mode]combine.Set{
		WeightedContinuous: wcontinuous.Defaults(opts.Zero),
		WeightedDiscrete:   wdiscrete.Defaults(opts.Zero),
		Instantaneous:      wcontinuous.Defaults(opts.Zero),
	} {
		set, err := resolve(defaults, opts.Combine, opts.Zero)
		if err != nil {
			return nil, err
		}

		a.sets[mode] = set
	}

	return a, nil
}

func resolve(set combine.Set, n Names, zero float64) (combine.Set, error) {
	binary := func(name string) (combine.Binary, error) { return combine.LookupBinary(name, zero) }

	err := errors.Join(
		override(&set.Merge, n.Merge, combine.LookupReduce),
		override(&set.Union, n.Union, binary),
		override(&set.Intersection, n.Intersection, binary),
		override(&set.Difference, n.Difference, binary),
		override(&set.Superset, n.Superset, combine.LookupPredicate),
		override(&set.Nonempty, n.Nonempty, combine.LookupPredicate),
		override(&set.Cartesian, n.Cartesian, combine.LookupTernary),
		override(&set.Measure, n.Measure, combine.LookupMeasure),
	)

	return set, err
}

func override[F any](dst *F, name string, lookup func(string) (F, error)) error {
	if name == "" {
		return nil
	}

	fn, err := lookup(name)
	if err != nil {
		return err
	}

	*dst = fn

	return nil
}

// CallOption configures one operation.
type CallOption func(*call)

// OnKey makes the second operand a reference for every key of the first.
func OnKey() CallOption {
	return func(c *call) { c.onKey = true }
}

// Delta widens every instant of a link stream to a window of length d
// before its cliques are enumerated.
func Delta(d float64) CallOption {
	return func(c *call) { c.delta = d }
}

type call struct {
	mode  Mode
	known bool
	onKey bool
	delta float64
	stats sweep.Stats
}

func (a *Algebra) sweepOptions(c *call) []sweep.Option {
	opts := []sweep.Option{
		sweep.Workers(a.opts.Workers),
		sweep.Tolerance(a.opts.Tolerance),
		sweep.Record(&c.stats),
	}

	if c.onKey {
		opts = append(opts, sweep.OnKey())
	}

	return opts
}

func (c *call) instantOptions() []instant.Option {
	if c.onKey {
		return []instant.Option{instant.OnKey()}
	}

	return nil
}

func (c *call) modeName() string {
	if !c.known {
		return "unknown"
	}

	return c.mode.String()
}

// lift moves instantaneous operands to the interval algebra of their time
// mode, for operations the instantaneous algebra does not define.
func (c *call) lift(ts ...*table.Table) ([]*table.Table, error) {
	if c.mode != Instantaneous {
		return ts, nil
	}

	out := make([]*table.Table, len(ts))
	schemas := make([]table.Schema, len(ts))

	for i, t := range ts {
		lifted, err := t.AsIntervals()
		if err != nil {
			return nil, err
		}

		out[i], schemas[i] = lifted, lifted.Schema()
	}

	mode, err := ModeOf(schemas...)
	if err != nil {
		return nil, err
	}

	c.mode = mode

	return out, nil
}

// observe runs fn inside a span named after op and records its outcome.
func observe[T any](
	ctx context.Context, a *Algebra, op string, schemas []table.Schema, opts []CallOption,
	fn func(ctx context.Context, c *call) (T, error),
) (T, error) {
	ctx, span := a.tracer.Start(ctx, "algebra."+op)
	defer span.End()

	defer a.metrics.TrackInflight(ctx, op)()

	start := time.Now()
	c := &call{}

	for _, o := range opts {
		o(c)
	}

	var out T

	mode, err := ModeOf(schemas...)
	if err == nil {
		c.mode, c.known = mode, true
		out, err = fn(ctx, c)
	}

	elapsed := time.Since(start)
	status := observability.StatusOK

	span.SetAttributes(
		attribute.String("mode", c.modeName()),
		attribute.Bool("on_key", c.onKey),
		attribute.Int("events", c.stats.Events),
		attribute.Bool("stopped", c.stats.Stopped),
	)

	if err != nil {
		status = observability.StatusError

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	a.metrics.Record(ctx, observability.SweepRecord{
		Op: op, Mode: c.modeName(), Status: status, Duration: elapsed, Events: c.stats.Events,
	})

	a.logger.DebugContext(ctx, "algebra operation",
		slog.String("op", op),
		slog.String("mode", c.modeName()),
		slog.Int("events", c.stats.Events),
		slog.Duration("duration", elapsed),
		slog.String("status", status),
	)

	if err != nil {
		var zero T

		return zero, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func schemas(ts ...*table.Table) []table.Schema {
	out := make([]table.Schema, len(ts))
	for i, t := range ts {
		out[i] = t.Schema()
	}

	return out
}
