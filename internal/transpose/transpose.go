// Package transpose routes a row-major stream of raw cells into per-column
// buffers according to a resolved schema.
//
// Routing is positional: the cell at flat position k belongs to column
// k mod N for schema width N. Rather than trusting sources to be perfectly
// rectangular, AppendRow checks each row's width up front and rejects ragged
// rows; silently misrouting the remainder of a stream is never acceptable.
package transpose

import (
	"fmt"

	"qaframe/internal/cell"
	"qaframe/internal/schema"
)

// defaultCapacity is the initial per-column buffer capacity for sources that
// cannot report their row count up front.
const defaultCapacity = 1000

// RaggedRowError reports a row whose width differs from the schema's column
// count. Row is zero-based over the data rows fed to the transposer.
type RaggedRowError struct {
	Row  int
	Got  int
	Want int
}

func (e *RaggedRowError) Error() string {
	return fmt.Sprintf("transpose: row %d has %d cells, schema has %d columns", e.Row, e.Got, e.Want)
}

// Transposer accumulates column buffers for one read pass. It is not safe
// for concurrent use; each read owns its own Transposer.
type Transposer struct {
	sch  schema.Schema
	bufs []*cell.Buffer // index-aligned with schema columns; nil when ignored
	next int            // cycling flat position, modulo schema width
	rows int            // completed rows, for error reporting
}

// New returns a Transposer with one buffer per non-ignored schema column.
// Ignored columns get no buffer at all; their cells are discarded on append.
func New(sch schema.Schema) *Transposer {
	bufs := make([]*cell.Buffer, sch.Len())
	for i, c := range sch.Columns {
		if c.Type == schema.TypeIgnored {
			continue
		}
		bufs[i] = cell.NewBuffer(defaultCapacity)
	}
	return &Transposer{sch: sch, bufs: bufs}
}

// Column returns the flat-position routing target: position k maps to
// column k mod N.
func (t *Transposer) Column(k int) int { return k % t.sch.Len() }

// Append routes a single cell at the current flat position to its column,
// casting it unless the column is ignored.
func (t *Transposer) Append(raw cell.Raw) error {
	col := t.next
	t.next = (t.next + 1) % t.sch.Len()
	c := t.sch.Columns[col]
	if c.Type == schema.TypeIgnored {
		return nil
	}
	if err := cell.Cast(raw, c.Type, t.bufs[col]); err != nil {
		return fmt.Errorf("transpose: column %q: %w", c.Name, err)
	}
	return nil
}

// AppendRow routes one full row. The row width must equal the schema width;
// a mismatch yields a RaggedRowError before any cell of the row is routed.
func (t *Transposer) AppendRow(row []cell.Raw) error {
	if len(row) != t.sch.Len() {
		return &RaggedRowError{Row: t.rows, Got: len(row), Want: t.sch.Len()}
	}
	for _, raw := range row {
		if err := t.Append(raw); err != nil {
			return err
		}
	}
	t.rows++
	return nil
}

// Rows reports the number of complete rows appended so far.
func (t *Transposer) Rows() int { return t.rows }

// Buffers exposes the accumulated column buffers, index-aligned with the
// schema's columns. Entries for ignored columns are nil.
func (t *Transposer) Buffers() []*cell.Buffer { return t.bufs }
