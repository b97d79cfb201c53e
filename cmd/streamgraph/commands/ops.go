package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/streamgraph/pkg/algebra"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

type (
	tableOp     func(ctx context.Context, x, y *table.Table, opts ...algebra.CallOption) (*table.Table, error)
	predicateOp func(ctx context.Context, x, y *table.Table, opts ...algebra.CallOption) (bool, error)
)

const onKeyUsage = "treat the second table as a reference applied to every key of the first"

// NewMergeCommand creates the merge command.
func NewMergeCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <table>",
		Short: "Print the canonical form of a table",
		Long: `Merge coalesces the rows of a table into its canonical form: per key,
sorted, non-overlapping intervals with maximal constant-weight pieces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				t, err := readTable(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}

				merged, err := s.alg.Merge(ctx, t)
				if err != nil {
					return err
				}

				return s.writeTable(merged)
			})
		},
	}
}

// NewUnionCommand creates the union command.
func NewUnionCommand(g *Globals) *cobra.Command {
	return newTableOpCommand(g, "union", "Print the time covered by either table",
		func(a *algebra.Algebra) tableOp { return a.Union })
}

// NewIntersectCommand creates the intersect command.
func NewIntersectCommand(g *Globals) *cobra.Command {
	return newTableOpCommand(g, "intersect", "Print the time covered by both tables",
		func(a *algebra.Algebra) tableOp { return a.Intersection })
}

// NewDifferenceCommand creates the difference command.
func NewDifferenceCommand(g *Globals) *cobra.Command {
	return newTableOpCommand(g, "difference", "Print the time covered by the first table only",
		func(a *algebra.Algebra) tableOp { return a.Difference })
}

// NewIsSupersetCommand creates the issuperset command.
func NewIsSupersetCommand(g *Globals) *cobra.Command {
	return newPredicateCommand(g, "issuperset", "Report whether the first table covers the second",
		func(a *algebra.Algebra) predicateOp { return a.IsSuperset })
}

// NewOverlapsCommand creates the overlaps command.
func NewOverlapsCommand(g *Globals) *cobra.Command {
	return newPredicateCommand(g, "overlaps", "Report whether the tables share a point in time",
		func(a *algebra.Algebra) predicateOp { return a.NonemptyIntersection })
}

// NewMeasureCommand creates the measure command.
func NewMeasureCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "measure <a> <b>",
		Short: "Integrate the combined weight over the common time of two tables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				ts, err := readTables(args, cmd.InOrStdin())
				if err != nil {
					return err
				}

				v, err := s.alg.IntersectionMeasure(ctx, ts[0], ts[1])
				if err != nil {
					return err
				}

				return s.writeFloat("measure", v)
			})
		},
	}
}

func newTableOpCommand(g *Globals, name, short string, pick func(*algebra.Algebra) tableOp) *cobra.Command {
	var onKey bool

	cmd := &cobra.Command{
		Use:   name + " <a> <b>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				ts, err := readTables(args, cmd.InOrStdin())
				if err != nil {
					return err
				}

				out, err := pick(s.alg)(ctx, ts[0], ts[1], callOptions(onKey)...)
				if err != nil {
					return err
				}

				return s.writeTable(out)
			})
		},
	}

	cmd.Flags().BoolVar(&onKey, "on-key", false, onKeyUsage)

	return cmd
}

func newPredicateCommand(g *Globals, name, short string, pick func(*algebra.Algebra) predicateOp) *cobra.Command {
	var onKey bool

	cmd := &cobra.Command{
		Use:   name + " <a> <b>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				ts, err := readTables(args, cmd.InOrStdin())
				if err != nil {
					return err
				}

				v, err := pick(s.alg)(ctx, ts[0], ts[1], callOptions(onKey)...)
				if err != nil {
					return err
				}

				return s.writeBool(name, v)
			})
		},
	}

	cmd.Flags().BoolVar(&onKey, "on-key", false, onKeyUsage)

	return cmd
}

func callOptions(onKey bool) []algebra.CallOption {
	if onKey {
		return []algebra.CallOption{algebra.OnKey()}
	}

	return nil
}
