package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/order"
	"github.com/Sumatoshi-tech/streamgraph/pkg/algebra"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Sentinel command failures.
var (
	ErrInvalidDocuments = errors.New("invalid documents")
	ErrLawViolated      = errors.New("law violated")
)

type orderInfo struct {
	Name     string `json:"name"     yaml:"name"`
	Family   string `json:"family"   yaml:"family"`
	Ordering string `json:"ordering" yaml:"ordering"`
}

// NewOrderingsCommand creates the orderings command.
func NewOrderingsCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "orderings",
		Short: "List the event orderings used by the sweeps",
		Long: `Orderings prints every tie-break order of the event catalog together with
the ordering it induces on the events at time 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all := order.All()
			infos := make([]orderInfo, len(all))

			for i, o := range all {
				infos[i] = orderInfo{Name: o.Name(), Family: o.Family().String(), Ordering: o.String()}
			}

			out := cmd.OutOrStdout()

			if handled, err := encodeTo(out, g.Output, infos); handled {
				return err
			}

			tw := newPrettyWriter()
			tw.AppendHeader(prettytable.Row{"name", "family", "ordering at 1"})

			for _, info := range infos {
				tw.AppendRow(prettytable.Row{info.Name, info.Family, info.Ordering})
			}

			_, err := fmt.Fprintln(out, tw.Render())

			return err
		},
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <table>...",
		Short: "Validate table documents",
		Long: `Validate checks JSON or YAML table documents against the document schema
and the interval rules of their time mode.

Examples:
  streamgraph validate links.json
  streamgraph validate - < nodes.json
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0

			for _, path := range args {
				if !validateOne(out, path, cmd.InOrStdin(), g.Quiet) {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %s of %s", ErrInvalidDocuments,
					humanize.Comma(int64(failed)), plural(len(args), "document"))
			}

			return nil
		},
	}
}

func validateOne(out io.Writer, path string, stdin io.Reader, quiet bool) bool {
	var (
		data []byte
		err  error
	)

	if path == stdinPath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		color.New(color.FgRed).Fprintf(out, "%s: %v\n", path, err)

		return false
	}

	tbl, err := table.Decode(data, table.FormatFromPath(path))
	if err == nil {
		if !quiet {
			color.New(color.FgGreen).Fprintf(out, "%s is valid (%s, %s)\n",
				path, tbl.Schema(), plural(tbl.Len(), "row"))
		}

		return true
	}

	color.New(color.FgRed).Fprintf(out, "%s is invalid\n", path)

	var verr *table.ValidationError
	if errors.As(err, &verr) {
		for _, problem := range verr.Problems {
			color.New(color.FgRed).Fprintf(out, "  - %s\n", problem)
		}
	} else {
		color.New(color.FgRed).Fprintf(out, "  - %v\n", err)
	}

	return false
}

type lawReport struct {
	Law   string   `json:"law"            yaml:"law"`
	Holds bool     `json:"holds"          yaml:"holds"`
	Want  []string `json:"want,omitempty" yaml:"want,omitempty"`
	Got   []string `json:"got,omitempty"  yaml:"got,omitempty"`
}

// NewLawsCommand creates the laws command.
func NewLawsCommand(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "laws <a> <b>",
		Short: "Check the set identities of the algebra on two tables",
		Long: `Laws evaluates commutativity, idempotence, absorption and the difference
identities on the unweighted shadow of two tables. A failing law prints a diff
of its two sides.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				ts, err := readTables(args, cmd.InOrStdin())
				if err != nil {
					return err
				}

				laws, err := s.alg.CheckLaws(ctx, ts[0], ts[1])
				if err != nil {
					return err
				}

				return s.writeLaws(laws)
			})
		},
	}
}

func (s *session) writeLaws(laws []algebra.Law) error {
	reports := make([]lawReport, len(laws))
	violated := 0

	for i, law := range laws {
		reports[i] = lawReport{Law: law.Name, Holds: law.Holds()}
		if !reports[i].Holds {
			reports[i].Want, reports[i].Got = law.Want, law.Got
			violated++
		}
	}

	if handled, err := s.encode(reports); handled || err != nil {
		return errors.Join(err, violations(violated))
	}

	tw := newPrettyWriter()
	tw.AppendHeader(prettytable.Row{"law", "status"})

	for _, r := range reports {
		status := color.New(color.FgGreen).Sprint("holds")
		if !r.Holds {
			status = color.New(color.FgRed).Sprint("violated")
		}

		tw.AppendRow(prettytable.Row{r.Law, status})
	}

	_, err := fmt.Fprintln(s.out, tw.Render())
	if err != nil {
		return err
	}

	for _, r := range reports {
		if r.Holds {
			continue
		}

		fmt.Fprintf(s.out, "\n%s:\n%s", r.Law, lineDiff(r.Want, r.Got))
	}

	return violations(violated)
}

func violations(n int) error {
	if n == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrLawViolated, plural(n, "law"))
}

// lineDiff renders a line-level diff, "-" for want and "+" for got.
func lineDiff(want, got []string) string {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(joinLines(want), joinLines(got))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder

	for _, d := range diffs {
		prefix := "  "

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				out.WriteString(prefix + line)
			}
		}
	}

	return out.String()
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}
