// Package commands implements CLI command handlers for streamgraph.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/streamgraph/pkg/algebra"
	"github.com/Sumatoshi-tech/streamgraph/pkg/config"
	"github.com/Sumatoshi-tech/streamgraph/pkg/observability"
	"github.com/Sumatoshi-tech/streamgraph/pkg/version"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// ErrUnknownOutput is returned for an unsupported --output value.
var ErrUnknownOutput = errors.New("unknown output format")

// Globals holds the persistent flags shared by every command.
type Globals struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
	NoColor    bool
	Output     string
	Metrics    bool
}

// Bind registers the persistent flags on the root command.
func (g *Globals) Bind(root *cobra.Command) {
	flags := root.PersistentFlags()

	flags.StringVar(&g.ConfigPath, "config", "", "config file (default ./streamgraph.yaml)")
	flags.BoolVarP(&g.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&g.Quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&g.NoColor, "no-color", false, "disable colored output")
	flags.StringVarP(&g.Output, "output", "o", OutputTable, "output format: table, json, yaml")
	flags.BoolVar(&g.Metrics, "metrics", false, "print Prometheus metrics to stderr on exit")

	root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if g.NoColor {
			color.NoColor = true //nolint:reassign // intentional override of library global
		}

		return g.checkOutput()
	}
}

func (g *Globals) checkOutput() error {
	switch g.Output {
	case OutputTable, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q (want table, json or yaml)", ErrUnknownOutput, g.Output)
	}
}

// session is the configured algebra and telemetry of one command run.
type session struct {
	globals   *Globals
	cfg       *config.Config
	alg       *algebra.Algebra
	providers observability.Providers
	out       io.Writer
	errOut    io.Writer
}

func (g *Globals) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return nil, err
	}

	switch {
	case g.Verbose:
		level = slog.LevelDebug
	case g.Quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.Prometheus = cfg.Telemetry.Prometheus || g.Metrics
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == "json"

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	metrics, err := observability.NewSweepMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	alg, err := algebra.New(algebra.Options{
		Workers:   cfg.Engine.Workers,
		Tolerance: cfg.Engine.WeightTolerance,
		Zero:      cfg.Engine.ZeroThreshold,
		Combine: algebra.Names{
			Merge:        cfg.Combine.Merge,
			Union:        cfg.Combine.Union,
			Intersection: cfg.Combine.Intersection,
			Difference:   cfg.Combine.Difference,
			Superset:     cfg.Combine.Superset,
			Nonempty:     cfg.Combine.Nonempty,
			Cartesian:    cfg.Combine.Cartesian,
			Measure:      cfg.Combine.Measure,
		},
	},
		algebra.WithLogger(providers.Logger),
		algebra.WithTracer(providers.Tracer),
		algebra.WithMetrics(metrics),
	)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(context.Background()))
	}

	return &session{
		globals:   g,
		cfg:       cfg,
		alg:       alg,
		providers: providers,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}, nil
}

// close dumps the Prometheus registry when asked and flushes telemetry.
func (s *session) close(ctx context.Context) error {
	var dumpErr error

	if s.globals.Metrics && s.providers.Registry != nil {
		dumpErr = observability.WriteText(s.errOut, s.providers.Registry)
	}

	return errors.Join(dumpErr, s.providers.Shutdown(ctx))
}

// run opens a session, runs fn and closes the session.
func (g *Globals) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := g.open(cmd)
	if err != nil {
		return err
	}

	runErr := fn(cmd.Context(), s)

	return errors.Join(runErr, s.close(context.WithoutCancel(cmd.Context())))
}
