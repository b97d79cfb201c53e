// Package main provides the entry point for the streamgraph CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/streamgraph/cmd/streamgraph/commands"
	"github.com/Sumatoshi-tech/streamgraph/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var globals commands.Globals

	rootCmd := &cobra.Command{
		Use:   "streamgraph",
		Short: "Streamgraph - interval algebra over temporal networks",
		Long: `Streamgraph computes unions, intersections, differences, measures and
maximal cliques over tables of timed intervals.

Tables are JSON or YAML documents; "-" reads standard input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	globals.Bind(rootCmd)

	rootCmd.AddCommand(
		commands.NewMergeCommand(&globals),
		commands.NewUnionCommand(&globals),
		commands.NewIntersectCommand(&globals),
		commands.NewDifferenceCommand(&globals),
		commands.NewIsSupersetCommand(&globals),
		commands.NewOverlapsCommand(&globals),
		commands.NewMeasureCommand(&globals),
		commands.NewCartesianCommand(&globals),
		commands.NewNeighborhoodCommand(&globals),
		commands.NewCliquesCommand(&globals),
		commands.NewOrderingsCommand(&globals),
		commands.NewValidateCommand(&globals),
		commands.NewLawsCommand(&globals),
		versionCmd(),
	)

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
