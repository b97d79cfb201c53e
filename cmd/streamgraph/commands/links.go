package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/clique"
	"github.com/Sumatoshi-tech/streamgraph/pkg/algebra"
)

const directionUsage = "link direction: both, out or in (default from config)"

// NewCartesianCommand creates the cartesian command.
func NewCartesianCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "cartesian <links> <nodes>",
		Short: "Restrict links to the times both endpoints are present",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				ts, err := readTables(args, cmd.InOrStdin())
				if err != nil {
					return err
				}

				out, err := s.alg.CartesianIntersection(ctx, ts[0], ts[1])
				if err != nil {
					return err
				}

				return s.writeTable(out)
			})
		},
	}
}

// NewNeighborhoodCommand creates the neighborhood command.
func NewNeighborhoodCommand(g *Globals) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "neighborhood <links> <nodes>",
		Short: "Print when each node neighbours a present node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				dir, err := s.direction(direction)
				if err != nil {
					return err
				}

				ts, err := readTables(args, cmd.InOrStdin())
				if err != nil {
					return err
				}

				out, err := s.alg.Neighborhood(ctx, ts[0], ts[1], dir)
				if err != nil {
					return err
				}

				return s.writeTable(out)
			})
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", directionUsage)

	return cmd
}

// NewCliquesCommand creates the cliques command.
func NewCliquesCommand(g *Globals) *cobra.Command {
	var (
		direction string
		delta     float64
	)

	cmd := &cobra.Command{
		Use:   "cliques <links>",
		Short: "Enumerate the maximal cliques of a link stream",
		Long: `Cliques lists every maximal (nodes, window) pair such that all node
pairs are linked throughout the window, and no node or time can be added.

With --delta, every instant t of an instantaneous stream becomes the window
[t-delta/2, t+delta/2], clipped to the first and last instant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				dir, err := s.direction(direction)
				if err != nil {
					return err
				}

				links, err := readTable(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}

				if !cmd.Flags().Changed("delta") {
					delta = s.cfg.Cliques.Delta
				}

				cliques, err := s.alg.MaximalCliques(ctx, links, dir, algebra.Delta(delta))
				if err != nil {
					return err
				}

				return s.writeCliques(cliques)
			})
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", directionUsage)
	cmd.Flags().Float64Var(&delta, "delta", 0, "widen instantaneous links to windows of this length")

	return cmd
}

// direction parses flag, falling back to the configured direction.
func (s *session) direction(flag string) (clique.Direction, error) {
	if flag == "" {
		flag = s.cfg.Cliques.Direction
	}

	return clique.ParseDirection(flag)
}
