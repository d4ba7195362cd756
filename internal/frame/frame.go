// Package frame wraps the columnar engine's table type behind a small,
// lazily-evaluated surface: deferred column projection, collection into a
// concrete table, and order-sensitive content fingerprints used to compare
// the left and right side of a run.
package frame

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Lazy is a materialized table plus deferred operations. Operations return
// new Lazy values sharing the underlying table; nothing is computed until
// Collect or Fingerprint.
type Lazy struct {
	table arrow.Table
	proj  []string // nil means all columns
}

// FromTable wraps a table. The Lazy takes over the caller's reference;
// release it through Lazy.Release.
func FromTable(t arrow.Table) *Lazy {
	return &Lazy{table: t}
}

// Select defers a projection to the named columns, in the given order.
func (l *Lazy) Select(names ...string) *Lazy {
	return &Lazy{table: l.table, proj: names}
}

// NumRows reports the row count of the underlying table.
func (l *Lazy) NumRows() int64 { return l.table.NumRows() }

// Schema returns the schema after applying any deferred projection.
func (l *Lazy) Schema() (*arrow.Schema, error) {
	if l.proj == nil {
		return l.table.Schema(), nil
	}
	fields := make([]arrow.Field, 0, len(l.proj))
	for _, name := range l.proj {
		idx := l.table.Schema().FieldIndices(name)
		if len(idx) == 0 {
			return nil, fmt.Errorf("frame: no column %q", name)
		}
		fields = append(fields, l.table.Schema().Field(idx[0]))
	}
	return arrow.NewSchema(fields, nil), nil
}

// Collect applies the deferred operations and returns a concrete table. The
// caller owns the returned reference and must Release it.
func (l *Lazy) Collect() (arrow.Table, error) {
	if l.proj == nil {
		l.table.Retain()
		return l.table, nil
	}
	sch, err := l.Schema()
	if err != nil {
		return nil, err
	}
	cols := make([]arrow.Column, 0, len(l.proj))
	for _, name := range l.proj {
		idx := l.table.Schema().FieldIndices(name)
		cols = append(cols, *l.table.Column(idx[0]))
	}
	return array.NewTable(sch, cols, l.table.NumRows()), nil
}

// Release drops the Lazy's reference to the underlying table. Only the Lazy
// that originally wrapped the table should call it.
func (l *Lazy) Release() { l.table.Release() }

// Equal reports whether two frames have identical schemas and cell-for-cell
// identical content, compared via fingerprints.
func Equal(a, b *Lazy) (bool, error) {
	fa, err := a.Fingerprint()
	if err != nil {
		return false, err
	}
	fb, err := b.Fingerprint()
	if err != nil {
		return false, err
	}
	return fa == fb, nil
}
