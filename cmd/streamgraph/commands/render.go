package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/clique"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// stdinPath reads a document from standard input.
const stdinPath = "-"

// readTable decodes the document at path, or standard input for "-".
func readTable(path string, stdin io.Reader) (*table.Table, error) {
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
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tbl, err := table.Decode(data, table.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tbl, nil
}

func readTables(paths []string, stdin io.Reader) ([]*table.Table, error) {
	out := make([]*table.Table, len(paths))

	for i, path := range paths {
		tbl, err := readTable(path, stdin)
		if err != nil {
			return nil, err
		}

		out[i] = tbl
	}

	return out, nil
}

func newPrettyWriter() prettytable.Writer {
	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleLight)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.DrawBorder = false

	return tw
}

// writeTable renders t in the selected output format.
func (s *session) writeTable(t *table.Table) error {
	switch s.globals.Output {
	case OutputJSON:
		return table.Encode(s.out, t, table.FormatJSON)
	case OutputYAML:
		return table.Encode(s.out, t, table.FormatYAML)
	}

	schema := t.Schema()
	tw := newPrettyWriter()

	header := prettytable.Row{}
	for _, k := range schema.Keys {
		header = append(header, k)
	}

	header = append(header, "interval")
	if schema.Weighted {
		header = append(header, "w")
	}

	tw.AppendHeader(header)

	for _, r := range t.All() {
		row := prettytable.Row{}
		for _, k := range r.Key {
			row = append(row, k)
		}

		row = append(row, r.Interval())
		if schema.Weighted {
			row = append(row, humanize.Ftoa(r.W))
		}

		tw.AppendRow(row)
	}

	if !s.globals.Quiet {
		tw.AppendFooter(prettytable.Row{plural(t.Len(), "row")})
	}

	_, err := fmt.Fprintln(s.out, tw.Render())

	return err
}

// writeCliques renders cliques in the selected output format.
func (s *session) writeCliques(cliques []clique.Clique) error {
	if cliques == nil {
		cliques = []clique.Clique{}
	}

	if handled, err := s.encode(cliques); handled {
		return err
	}

	tw := newPrettyWriter()
	tw.AppendHeader(prettytable.Row{"nodes", "ts", "tf", "size"})

	for _, c := range cliques {
		tw.AppendRow(prettytable.Row{
			strings.Join(c.Nodes, ","), humanize.Ftoa(c.Ts), humanize.Ftoa(c.Tf), len(c.Nodes),
		})
	}

	if !s.globals.Quiet {
		tw.AppendFooter(prettytable.Row{plural(len(cliques), "clique")})
	}

	_, err := fmt.Fprintln(s.out, tw.Render())

	return err
}

// verdict is the structured form of a scalar result.
type verdict struct {
	Op     string `json:"op"     yaml:"op"`
	Result any    `json:"result" yaml:"result"`
}

// writeBool prints a predicate result, green when it holds.
func (s *session) writeBool(op string, v bool) error {
	if handled, err := s.encode(verdict{Op: op, Result: v}); handled {
		return err
	}

	c := color.New(color.FgRed)
	if v {
		c = color.New(color.FgGreen)
	}

	_, err := c.Fprintf(s.out, "%s: %t\n", op, v)

	return err
}

// writeFloat prints a scalar result.
func (s *session) writeFloat(op string, v float64) error {
	if handled, err := s.encode(verdict{Op: op, Result: v}); handled {
		return err
	}

	_, err := fmt.Fprintf(s.out, "%s: %s\n", op, humanize.Ftoa(v))

	return err
}

// encode writes v as JSON or YAML and reports whether it did.
func (s *session) encode(v any) (bool, error) {
	return encodeTo(s.out, s.globals.Output, v)
}

func encodeTo(w io.Writer, output string, v any) (bool, error) {
	switch output {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return true, enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(v)
		if err != nil {
			return true, err
		}

		return true, enc.Close()
	default:
		return false, nil
	}
}

func plural(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}

	return humanize.Comma(int64(n)) + " " + noun
}
