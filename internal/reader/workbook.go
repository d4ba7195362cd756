package reader

import (
	"context"

	"qaframe/internal/cell"
	"qaframe/internal/config"
	"qaframe/internal/frame"
	"qaframe/internal/schema"
	"qaframe/internal/transpose"
	"qaframe/internal/xlsx"
)

// tableReader reads a defined (named) table from a workbook. The table's
// header row belongs to the table definition, not the data, so every located
// row is a data row.
type tableReader struct {
	cfg *config.Compare
}

func (r *tableReader) Read(ctx context.Context, path string) (*frame.Lazy, error) {
	sch, err := buildSchema(r.cfg.Schema)
	if err != nil {
		return nil, err
	}
	wb, err := xlsx.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.TableRows(r.cfg.Table.Name)
	if err != nil {
		return nil, err
	}
	return transposeRows(sch, rows)
}

// rangeReader reads an explicit rectangular block from one sheet.
type rangeReader struct {
	cfg *config.Compare
}

func (r *rangeReader) Read(ctx context.Context, path string) (*frame.Lazy, error) {
	sch, err := buildSchema(r.cfg.Schema)
	if err != nil {
		return nil, err
	}
	wb, err := xlsx.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	ref := r.cfg.SheetRange
	rows, err := wb.RangeRows(ref.Sheet, ref.StartRow, ref.StartCol, ref.EndRow, ref.EndCol)
	if err != nil {
		return nil, err
	}
	return transposeRows(sch, rows)
}

// pivotReader reads a pivot table's cache. The cache's first row is a
// header that must echo the schema's column names in order; the remaining
// rows are data. A cache with no rows at all yields an empty frame that
// still carries the full declared schema.
type pivotReader struct {
	cfg *config.Compare
}

func (r *pivotReader) Read(ctx context.Context, path string) (*frame.Lazy, error) {
	sch, err := buildSchema(r.cfg.Schema)
	if err != nil {
		return nil, err
	}
	wb, err := xlsx.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.PivotRows(r.cfg.PivotTable.Sheet, r.cfg.PivotTable.Name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// Empty cache: no rows to cast, declared schema preserved.
		return assemble(sch, nil)
	}
	if err := validateHeader(sch, rows[0]); err != nil {
		return nil, err
	}
	return transposeRows(sch, rows[1:])
}

// validateHeader checks that each header cell is text equal to the
// corresponding schema column name, in schema order.
func validateHeader(sch schema.Schema, header []cell.Raw) error {
	if len(header) != sch.Len() {
		return &transpose.RaggedRowError{Row: 0, Got: len(header), Want: sch.Len()}
	}
	for i, h := range header {
		want := sch.Columns[i].Name
		if h.Kind != cell.RawText {
			return &HeaderMismatchError{Column: i, Want: want, Got: "non-text cell (" + h.Kind.String() + ")"}
		}
		if h.Text != want {
			return &HeaderMismatchError{Column: i, Want: want, Got: h.Text}
		}
	}
	return nil
}
