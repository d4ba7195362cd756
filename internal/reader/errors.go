package reader

import (
	"fmt"

	"qaframe/internal/cell"
	"qaframe/internal/schema"
)

// UnimplementedKindError reports a source kind tag with no matching reader.
type UnimplementedKindError struct {
	Kind string
}

func (e *UnimplementedKindError) Error() string {
	return fmt.Sprintf("reader: source kind %q is not implemented", e.Kind)
}

// HeaderMismatchError reports a pivot cache header cell that disagrees with
// the declared schema. Pivot caches are assumed to echo the schema's column
// order exactly, so a mismatch means the schema and the workbook diverged.
type HeaderMismatchError struct {
	Column int    // zero-based header position
	Want   string // schema column name
	Got    string // header cell content, or a description of its kind
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("reader: pivot header %d is %q, want schema column %q", e.Column, e.Got, e.Want)
}

// ValueCastError reports a buffered scalar that cannot be converted to its
// column's declared type (e.g. text where a date column is declared). It is
// fatal for the read.
type ValueCastError struct {
	Column string
	Target schema.Type
	Kind   cell.Kind
}

func (e *ValueCastError) Error() string {
	return fmt.Sprintf("reader: column %q: cannot cast buffered %s value to %s", e.Column, e.Kind, e.Target)
}
