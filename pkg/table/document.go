package table

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Format is a table document encoding.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrInvalidDocument is returned when a document fails schema validation.
var ErrInvalidDocument = errors.New("invalid table document")

//go:embed schema.json
var documentSchema []byte

// Document is the serialized form of a table.
type Document struct {
	Schema `yaml:",inline"`

	Rows []DocumentRow `json:"rows" yaml:"rows"`
}

// DocumentRow is one serialized row. Closed defaults to [true, true] and W to 1.
type DocumentRow struct {
	Key    []string `json:"key,omitempty"    yaml:"key,omitempty,flow"`
	Ts     float64  `json:"ts"               yaml:"ts"`
	Tf     float64  `json:"tf"               yaml:"tf"`
	Closed []bool   `json:"closed,omitempty" yaml:"closed,omitempty,flow"`
	W      *float64 `json:"w,omitempty"      yaml:"w,omitempty"`
}

// FormatFromPath guesses the document format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Validate checks raw document bytes against the embedded document schema.
func Validate(data []byte, format Format) error {
	generic, err := decodeGeneric(data, format)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(documentSchema),
		gojsonschema.NewGoLoader(generic),
	)
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &ValidationError{Problems: problems}
}

// Decode validates and decodes a document into a table.
func Decode(data []byte, format Format) (*Table, error) {
	err := Validate(data, format)
	if err != nil {
		return nil, err
	}

	var doc Document

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s document: %w", format, err)
	}

	return doc.Table()
}

// Read decodes a document from r.
func Read(r io.Reader, format Format) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	return Decode(data, format)
}

// Table converts the document into a validated table.
func (d Document) Table() (*Table, error) {
	rows := make([]Row, len(d.Rows))

	for i, dr := range d.Rows {
		row := Row{Key: dr.Key, Ts: dr.Ts, Tf: dr.Tf, StartClosed: true, EndClosed: true, W: 1}
		if row.Key == nil {
			row.Key = []string{}
		}

		if len(dr.Closed) == 2 {
			row.StartClosed, row.EndClosed = dr.Closed[0], dr.Closed[1]
		}

		if dr.W != nil {
			row.W = *dr.W
		}

		rows[i] = row
	}

	return New(d.Schema, rows...)
}

// ToDocument converts a table into its serialized form.
func ToDocument(t *Table) Document {
	doc := Document{Schema: t.Schema(), Rows: make([]DocumentRow, 0, t.Len())}

	for _, row := range t.All() {
		dr := DocumentRow{Key: row.Key, Ts: row.Ts, Tf: row.Tf}

		if !t.schema.Discrete && !t.schema.Instant && (!row.StartClosed || !row.EndClosed) {
			dr.Closed = []bool{row.StartClosed, row.EndClosed}
		}

		if t.schema.Weighted {
			w := row.W
			dr.W = &w
		}

		doc.Rows = append(doc.Rows, dr)
	}

	return doc
}

// Encode serializes a table.
func Encode(w io.Writer, t *Table, format Format) error {
	doc := ToDocument(t)

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(doc)
		if err != nil {
			return fmt.Errorf("encode yaml document: %w", err)
		}

		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(doc)
		if err != nil {
			return fmt.Errorf("encode json document: %w", err)
		}

		return nil
	}
}

// decodeGeneric decodes into plain maps and slices so the JSON-schema
// validator sees the same shape for both encodings.
func decodeGeneric(data []byte, format Format) (any, error) {
	var generic any

	if format == FormatYAML {
		err := yaml.Unmarshal(data, &generic)
		if err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}

		return generic, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(&generic)
	if err != nil {
		return nil, fmt.Errorf("decode json document: %w", err)
	}

	return generic, nil
}
