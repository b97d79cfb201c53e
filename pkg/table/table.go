// Package table provides the ordered interval table consumed and produced by
// the interval algebra. A table is a schema plus a sequence of validated rows;
// the engine relies only on projection, concatenation, filtering, and the
// stable iteration order of rows.
package table

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"
)

// Sentinel errors for malformed rows and incompatible schemas.
var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrSchemaMismatch  = errors.New("schema mismatch")
	ErrInvalidKey      = errors.New("invalid key")
)

// keySep separates key values inside a key id. New rejects key values
// containing it.
const keySep = "\x1f"

// Schema describes the columns of a table. Time columns are implicit.
type Schema struct {
	// Keys names the grouping columns, in order.
	Keys []string `json:"keys" yaml:"keys"`

	// Discrete selects integer time with implicitly closed bounds.
	Discrete bool `json:"discrete,omitempty" yaml:"discrete,omitempty"`

	// Weighted adds a weight column.
	Weighted bool `json:"weighted,omitempty" yaml:"weighted,omitempty"`

	// Instant restricts rows to zero-length intervals (ts == tf).
	Instant bool `json:"instant,omitempty" yaml:"instant,omitempty"`
}

// SameKeys reports whether both schemas name the same key columns in order.
func (s Schema) SameKeys(o Schema) bool {
	return slices.Equal(s.Keys, o.Keys)
}

// SameMode reports whether both schemas share the same time and weight mode.
func (s Schema) SameMode(o Schema) bool {
	return s.Discrete == o.Discrete && s.Weighted == o.Weighted && s.Instant == o.Instant
}

// Positions returns the index in s.Keys of every column in names.
func (s Schema) Positions(names []string) ([]int, error) {
	pos := make([]int, len(names))

	for i, name := range names {
		idx := slices.Index(s.Keys, name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: no key column %q in %v", ErrSchemaMismatch, name, s.Keys)
		}

		pos[i] = idx
	}

	return pos, nil
}

// Row is one interval of a table.
type Row struct {
	Key         []string
	Ts          float64
	Tf          float64
	StartClosed bool
	EndClosed   bool
	W           float64
}

// Span returns a closed, unit-weight row.
func Span(ts, tf float64, key ...string) Row {
	return Row{Key: key, Ts: ts, Tf: tf, StartClosed: true, EndClosed: true, W: 1}
}

// Bounded returns a unit-weight row with explicit bound closedness.
func Bounded(ts, tf float64, startClosed, endClosed bool, key ...string) Row {
	return Row{Key: key, Ts: ts, Tf: tf, StartClosed: startClosed, EndClosed: endClosed, W: 1}
}

// Weighted returns a closed row carrying weight w.
func Weighted(ts, tf, w float64, key ...string) Row {
	return Row{Key: key, Ts: ts, Tf: tf, StartClosed: true, EndClosed: true, W: w}
}

// KeyID returns the hashable identity of a key tuple.
func KeyID(key []string) string {
	return strings.Join(key, keySep)
}

// CompareKeys orders key tuples lexicographically.
func CompareKeys(a, b []string) int {
	return slices.Compare(a, b)
}

// Table is an ordered collection of validated rows sharing a schema.
type Table struct {
	schema Schema
	rows   []Row
}

// New validates rows against schema and returns a table owning copies of them.
func New(schema Schema, rows ...Row) (*Table, error) {
	tbl := &Table{schema: cloneSchema(schema), rows: make([]Row, 0, len(rows))}

	err := tbl.Append(rows...)
	if err != nil {
		return nil, err
	}

	return tbl, nil
}

// Must panics when err is non-nil. Intended for literals in tests and examples.
func Must(tbl *Table, err error) *Table {
	if err != nil {
		panic(err)
	}

	return tbl
}

// Empty returns a table with no rows.
func Empty(schema Schema) *Table {
	return &Table{schema: cloneSchema(schema)}
}

// Schema returns the table schema.
func (t *Table) Schema() Schema {
	return cloneSchema(t.schema)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return cloneRow(t.rows[i])
}

// All iterates rows in table order.
func (t *Table) All() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i := range t.rows {
			if !yield(i, t.rows[i]) {
				return
			}
		}
	}
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = cloneRow(t.rows[i])
	}

	return out
}

// Append validates and appends rows. On error no row is appended.
func (t *Table) Append(rows ...Row) error {
	normalized := make([]Row, len(rows))

	for i, row := range rows {
		norm, err := normalize(t.schema, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", t.Len()+i, err)
		}

		normalized[i] = norm
	}

	t.rows = append(t.rows, normalized...)

	return nil
}

// Concat returns a new table holding the rows of t followed by the rows of o.
func (t *Table) Concat(o *Table) (*Table, error) {
	if !t.schema.SameKeys(o.schema) || !t.schema.SameMode(o.schema) {
		return nil, fmt.Errorf("%w: cannot concatenate %s with %s", ErrSchemaMismatch, t.schema, o.schema)
	}

	rows := make([]Row, 0, len(t.rows)+len(o.rows))
	rows = append(rows, t.rows...)
	rows = append(rows, o.rows...)

	return &Table{schema: cloneSchema(t.schema), rows: rows}, nil
}

// Filter returns the rows for which keep is true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{schema: cloneSchema(t.schema)}

	for _, row := range t.rows {
		if keep(row) {
			out.rows = append(out.rows, cloneRow(row))
		}
	}

	return out
}

// Project keeps the named key columns, in the given order. Projecting onto a
// permutation of the keys swaps columns, e.g. Project("v", "u").
func (t *Table) Project(keys ...string) (*Table, error) {
	pos, err := t.schema.Positions(keys)
	if err != nil {
		return nil, err
	}

	schema := cloneSchema(t.schema)
	schema.Keys = slices.Clone(keys)

	out := &Table{schema: schema, rows: make([]Row, len(t.rows))}

	for i, row := range t.rows {
		key := make([]string, len(pos))
		for j, p := range pos {
			key[j] = row.Key[p]
		}

		row.Key = key
		out.rows[i] = row
	}

	return out, nil
}

// Rename renames the key columns in place of their current names.
func (t *Table) Rename(keys ...string) (*Table, error) {
	if len(keys) != len(t.schema.Keys) {
		return nil, fmt.Errorf("%w: cannot rename %d key columns to %v", ErrSchemaMismatch, len(t.schema.Keys), keys)
	}

	schema := cloneSchema(t.schema)
	schema.Keys = slices.Clone(keys)

	return &Table{schema: schema, rows: t.Rows()}, nil
}

// AsIntervals lifts an instantaneous table to the interval algebra of its
// time mode. Rows are revalidated.
func (t *Table) AsIntervals() (*Table, error) {
	schema := cloneSchema(t.schema)
	schema.Instant = false

	return New(schema, t.Rows()...)
}

// Unweighted drops the weight column; every row weighs 1.
func (t *Table) Unweighted() *Table {
	schema := cloneSchema(t.schema)
	schema.Weighted = false

	out := &Table{schema: schema, rows: t.Rows()}
	for i := range out.rows {
		out.rows[i].W = 1
	}

	return out
}

// AsWeighted marks the table weighted, keeping current weights.
func (t *Table) AsWeighted() *Table {
	schema := cloneSchema(t.schema)
	schema.Weighted = true

	return &Table{schema: schema, rows: t.Rows()}
}

// Sorted returns the rows ordered by key, then start time, closed starts first.
func (t *Table) Sorted() *Table {
	out := &Table{schema: cloneSchema(t.schema), rows: t.Rows()}
	slices.SortStableFunc(out.rows, CompareRows)

	return out
}

// CompareRows orders rows by key, start, start closedness, end, end closedness.
func CompareRows(a, b Row) int {
	if c := CompareKeys(a.Key, b.Key); c != 0 {
		return c
	}

	if a.Ts != b.Ts {
		return cmpFloat(a.Ts, b.Ts)
	}

	if a.StartClosed != b.StartClosed {
		if a.StartClosed {
			return -1
		}

		return 1
	}

	if a.Tf != b.Tf {
		return cmpFloat(a.Tf, b.Tf)
	}

	if a.EndClosed != b.EndClosed {
		if a.EndClosed {
			return 1
		}

		return -1
	}

	return 0
}

// String describes the schema compactly, e.g. "keys=[u v] continuous weighted".
func (s Schema) String() string {
	mode := "continuous"
	if s.Discrete {
		mode = "discrete"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "keys=%v %s", s.Keys, mode)

	if s.Weighted {
		b.WriteString(" weighted")
	}

	if s.Instant {
		b.WriteString(" instant")
	}

	return b.String()
}

func normalize(schema Schema, row Row) (Row, error) {
	if len(row.Key) != len(schema.Keys) {
		return Row{}, fmt.Errorf("%w: key %v has arity %d, schema has %d", ErrSchemaMismatch,
			row.Key, len(row.Key), len(schema.Keys))
	}

	for _, k := range row.Key {
		if strings.Contains(k, keySep) {
			return Row{}, fmt.Errorf("%w: key value %q contains the unit separator", ErrInvalidKey, k)
		}
	}

	if math.IsNaN(row.Ts) || math.IsNaN(row.Tf) {
		return Row{}, fmt.Errorf("%w: NaN endpoint", ErrInvalidInterval)
	}

	if row.Ts > row.Tf {
		return Row{}, fmt.Errorf("%w: ts %v > tf %v", ErrInvalidInterval, row.Ts, row.Tf)
	}

	if !schema.Weighted {
		row.W = 1
	} else if math.IsNaN(row.W) || math.IsInf(row.W, 0) {
		return Row{}, fmt.Errorf("%w: weight %v", ErrInvalidInterval, row.W)
	}

	switch {
	case schema.Instant:
		if row.Ts != row.Tf {
			return Row{}, fmt.Errorf("%w: instantaneous row spans [%v, %v]", ErrInvalidInterval, row.Ts, row.Tf)
		}

		row.StartClosed, row.EndClosed = true, true
	case schema.Discrete:
		if row.Ts != math.Trunc(row.Ts) || row.Tf != math.Trunc(row.Tf) {
			return Row{}, fmt.Errorf("%w: discrete row [%v, %v] has non-integer endpoints", ErrInvalidInterval,
				row.Ts, row.Tf)
		}

		row.StartClosed, row.EndClosed = true, true
	case row.Ts == row.Tf && (!row.StartClosed || !row.EndClosed):
		return Row{}, fmt.Errorf("%w: single instant %v must be closed on both sides", ErrInvalidInterval, row.Ts)
	}

	row.Key = slices.Clone(row.Key)

	return row, nil
}

func cloneSchema(s Schema) Schema {
	s.Keys = slices.Clone(s.Keys)
	if s.Keys == nil {
		s.Keys = []string{}
	}

	return s
}

func cloneRow(r Row) Row {
	r.Key = slices.Clone(r.Key)

	return r
}

func cmpFloat(a, b float64) int {
	if a < b {
		return -1
	}

	return 1
}
