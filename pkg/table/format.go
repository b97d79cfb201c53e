package table

import (
	"strconv"
	"strings"
)

// Interval renders the time span of r, e.g. "[1, 3)".
func (r Row) Interval() string {
	var b strings.Builder

	if r.StartClosed {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}

	b.WriteString(formatTime(r.Ts))
	b.WriteString(", ")
	b.WriteString(formatTime(r.Tf))

	if r.EndClosed {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}

	return b.String()
}

// Lines renders every row as "key interval", with " w=<weight>" appended on
// weighted tables. The key part is omitted when the schema has no keys.
func (t *Table) Lines() []string {
	out := make([]string, 0, len(t.rows))

	for _, row := range t.rows {
		var b strings.Builder

		if len(row.Key) > 0 {
			b.WriteString(strings.Join(row.Key, ","))
			b.WriteByte(' ')
		}

		b.WriteString(row.Interval())

		if t.schema.Weighted {
			b.WriteString(" w=")
			b.WriteString(formatTime(row.W))
		}

		out = append(out, b.String())
	}

	return out
}

func formatTime(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
