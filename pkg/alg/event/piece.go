package event

import (
	"slices"

	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Bound is one endpoint of an output interval.
type Bound struct {
	T      float64
	Closed bool
}

// Piece is an output interval of one slot.
type Piece struct {
	Slot  int
	Start Bound
	End   Bound
	W     float64
}

// Assemble materialises pieces as rows keyed through idx. Rows are sorted by
// key, then time.
func Assemble(schema table.Schema, idx *Index, pieces []Piece) (*table.Table, error) {
	rows := make([]table.Row, 0, len(pieces))

	for _, p := range pieces {
		rows = append(rows, table.Row{
			Key:         idx.Key(p.Slot),
			Ts:          p.Start.T,
			Tf:          p.End.T,
			StartClosed: p.Start.Closed,
			EndClosed:   p.End.Closed,
			W:           p.W,
		})
	}

	slices.SortStableFunc(rows, table.CompareRows)

	return table.New(schema, rows...)
}
