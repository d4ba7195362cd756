package reader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/xuri/excelize/v2"

	"qaframe/internal/cell"
	"qaframe/internal/config"
	"qaframe/internal/schema"
)

// fixtureWorkbook saves a workbook built by fill and returns its path.
func fixtureWorkbook(t *testing.T, fill func(t *testing.T, f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	fill(t, f)
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestRangeReader(t *testing.T) {
	// A 2x2 block: one u32 column, one text column.
	path := fixtureWorkbook(t, func(t *testing.T, f *excelize.File) {
		for axis, v := range map[string]any{
			"B2": 7, "C2": "north",
			"B3": 9, "C3": "south",
		} {
			if err := f.SetCellValue("Sheet1", axis, v); err != nil {
				t.Fatalf("set %s: %v", axis, err)
			}
		}
	})

	cfg := &config.Compare{
		Kind: config.KindSheetRange,
		Schema: []config.SchemaColumn{
			{Name: "count", Type: "u32"},
			{Name: "region", Type: "str"},
		},
		SheetRange: config.SheetRangeRef{
			Sheet: "Sheet1", StartRow: 2, StartCol: 2, EndRow: 3, EndCol: 3,
		},
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lz, err := r.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer lz.Release()

	tbl, err := lz.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	defer tbl.Release()

	if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
		t.Fatalf("got %dx%d, want 2x2", tbl.NumRows(), tbl.NumCols())
	}
	counts := tbl.Column(0).Data().Chunk(0).(*array.Uint32)
	if counts.Value(0) != 7 || counts.Value(1) != 9 {
		t.Fatalf("counts = %d, %d", counts.Value(0), counts.Value(1))
	}
	regions := tbl.Column(1).Data().Chunk(0).(*array.String)
	if regions.Value(0) != "north" || regions.Value(1) != "south" {
		t.Fatalf("regions = %q, %q", regions.Value(0), regions.Value(1))
	}
}

func TestTableReader(t *testing.T) {
	path := fixtureWorkbook(t, func(t *testing.T, f *excelize.File) {
		for axis, v := range map[string]any{
			"A1": "id", "B1": "label",
			"A2": 1, "B2": "alpha",
			"A3": 2, "B3": "beta",
		} {
			if err := f.SetCellValue("Sheet1", axis, v); err != nil {
				t.Fatalf("set %s: %v", axis, err)
			}
		}
		if err := f.AddTable("Sheet1", &excelize.Table{Range: "A1:B3", Name: "Exports"}); err != nil {
			t.Fatalf("AddTable: %v", err)
		}
	})

	cfg := &config.Compare{
		Kind: config.KindTable,
		Schema: []config.SchemaColumn{
			{Name: "id", Type: "i64"},
			{Name: "label", Type: "str"},
		},
		Table: config.TableRef{Name: "Exports"},
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lz, err := r.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer lz.Release()

	if lz.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", lz.NumRows())
	}
}

func pivotFixture(t *testing.T) string {
	return fixtureWorkbook(t, func(t *testing.T, f *excelize.File) {
		for axis, v := range map[string]any{
			"A1": "region", "B1": "amount",
			"A2": "north", "B2": 10,
			"A3": "south", "B3": 20,
		} {
			if err := f.SetCellValue("Sheet1", axis, v); err != nil {
				t.Fatalf("set %s: %v", axis, err)
			}
		}
		if err := f.AddPivotTable(&excelize.PivotTableOptions{
			Name:            "RegionPivot",
			DataRange:       "Sheet1!A1:B3",
			PivotTableRange: "Sheet1!D1:F10",
			Rows:            []excelize.PivotTableField{{Data: "region"}},
			Data:            []excelize.PivotTableField{{Data: "amount", Subtotal: "Sum"}},
		}); err != nil {
			t.Fatalf("AddPivotTable: %v", err)
		}
	})
}

func TestPivotReader(t *testing.T) {
	path := pivotFixture(t)
	cfg := &config.Compare{
		Kind: config.KindPivotTable,
		Schema: []config.SchemaColumn{
			{Name: "region", Type: "str"},
			{Name: "amount", Type: "i64"},
		},
		PivotTable: config.PivotTableRef{Sheet: "Sheet1", Name: "RegionPivot"},
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lz, err := r.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer lz.Release()

	tbl, err := lz.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	defer tbl.Release()

	// Header validated and consumed; two data rows remain.
	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", tbl.NumRows())
	}
	amounts := tbl.Column(1).Data().Chunk(0).(*array.Int64)
	if amounts.Value(0) != 10 || amounts.Value(1) != 20 {
		t.Fatalf("amounts = %d, %d", amounts.Value(0), amounts.Value(1))
	}
}

func TestPivotReaderEmptyCache(t *testing.T) {
	// A pivot whose data range holds only the header row: no data rows to
	// cast, but the declared schema must survive.
	path := fixtureWorkbook(t, func(t *testing.T, f *excelize.File) {
		for axis, v := range map[string]any{
			"A1": "region", "B1": "amount",
		} {
			if err := f.SetCellValue("Sheet1", axis, v); err != nil {
				t.Fatalf("set %s: %v", axis, err)
			}
		}
		if err := f.AddPivotTable(&excelize.PivotTableOptions{
			Name:            "RegionPivot",
			DataRange:       "Sheet1!A1:B1",
			PivotTableRange: "Sheet1!D1:F10",
			Rows:            []excelize.PivotTableField{{Data: "region"}},
			Data:            []excelize.PivotTableField{{Data: "amount", Subtotal: "Sum"}},
		}); err != nil {
			t.Fatalf("AddPivotTable: %v", err)
		}
	})

	cfg := &config.Compare{
		Kind: config.KindPivotTable,
		Schema: []config.SchemaColumn{
			{Name: "region", Type: "str"},
			{Name: "amount", Type: "i64"},
		},
		PivotTable: config.PivotTableRef{Sheet: "Sheet1", Name: "RegionPivot"},
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lz, err := r.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	defer lz.Release()

	if lz.NumRows() != 0 {
		t.Fatalf("NumRows = %d, want 0", lz.NumRows())
	}
	sch, err := lz.Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if sch.NumFields() != 2 {
		t.Fatalf("NumFields = %d, want 2", sch.NumFields())
	}
	if sch.Field(0).Name != "region" || sch.Field(0).Type.ID() != arrow.STRING {
		t.Fatalf("field 0 = %q %v", sch.Field(0).Name, sch.Field(0).Type)
	}
	if sch.Field(1).Name != "amount" || sch.Field(1).Type.ID() != arrow.INT64 {
		t.Fatalf("field 1 = %q %v", sch.Field(1).Name, sch.Field(1).Type)
	}
}

func TestPivotReaderHeaderMismatch(t *testing.T) {
	path := pivotFixture(t)
	cfg := &config.Compare{
		Kind: config.KindPivotTable,
		Schema: []config.SchemaColumn{
			{Name: "territory", Type: "str"},
			{Name: "amount", Type: "i64"},
		},
		PivotTable: config.PivotTableRef{Sheet: "Sheet1", Name: "RegionPivot"},
	}
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = r.Read(context.Background(), path)
	var herr *HeaderMismatchError
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want HeaderMismatchError", err)
	}
	if herr.Column != 0 || herr.Want != "territory" || herr.Got != "region" {
		t.Fatalf("got %+v", herr)
	}
}

func TestValidateHeader(t *testing.T) {
	sch, err := schema.Build([]schema.RawColumn{
		{Name: "a", Type: "u32"},
		{Name: "b", Type: "str"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := validateHeader(sch, []cell.Raw{cell.Text("a"), cell.Text("b")}); err != nil {
		t.Fatalf("matching header rejected: %v", err)
	}
	if err := validateHeader(sch, []cell.Raw{cell.Text("a")}); err == nil {
		t.Fatalf("short header accepted")
	}
	err = validateHeader(sch, []cell.Raw{cell.Text("a"), cell.Int64(2)})
	var herr *HeaderMismatchError
	if !errors.As(err, &herr) {
		t.Fatalf("non-text header cell: err = %v", err)
	}
}
