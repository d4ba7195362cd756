package xlsx

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"qaframe/internal/cell"
)

// saveWorkbook writes a fixture workbook built by fill and opens it again
// through the package under test.
func saveWorkbook(t *testing.T, fill func(f *excelize.File)) *Workbook {
	t.Helper()
	f := excelize.NewFile()
	fill(f)
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { wb.Close() })
	return wb
}

func setCells(t *testing.T, f *excelize.File, sheet string, cells map[string]any) {
	t.Helper()
	for axis, v := range cells {
		if err := f.SetCellValue(sheet, axis, v); err != nil {
			t.Fatalf("set %s: %v", axis, err)
		}
	}
}

func TestRangeRowsDecodesVariants(t *testing.T) {
	wb := saveWorkbook(t, func(f *excelize.File) {
		setCells(t, f, "Sheet1", map[string]any{
			"A1": 42,
			"B1": 2.5,
			"C1": "hello",
			"D1": true,
		})
		// E1 left unset; decodes as empty.
		styleID, err := f.NewStyle(&excelize.Style{NumFmt: 14})
		if err != nil {
			t.Fatalf("style: %v", err)
		}
		if err := f.SetCellValue("Sheet1", "F1", 45306); err != nil {
			t.Fatalf("set F1: %v", err)
		}
		if err := f.SetCellStyle("Sheet1", "F1", "F1", styleID); err != nil {
			t.Fatalf("style F1: %v", err)
		}
	})

	rows, err := wb.RangeRows("Sheet1", 1, 1, 1, 6)
	if err != nil {
		t.Fatalf("RangeRows: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 6 {
		t.Fatalf("shape = %dx%d", len(rows), len(rows[0]))
	}
	row := rows[0]

	if row[0].Kind != cell.RawInt || row[0].Int != 42 {
		t.Fatalf("A1 = %+v, want int 42", row[0])
	}
	if row[1].Kind != cell.RawFloat || row[1].Float != 2.5 {
		t.Fatalf("B1 = %+v, want float 2.5", row[1])
	}
	if row[2].Kind != cell.RawText || row[2].Text != "hello" {
		t.Fatalf("C1 = %+v, want text hello", row[2])
	}
	if row[3].Kind != cell.RawBool || !row[3].Bool {
		t.Fatalf("D1 = %+v, want bool true", row[3])
	}
	if row[4].Kind != cell.RawEmpty {
		t.Fatalf("E1 = %+v, want empty", row[4])
	}
	if row[5].Kind != cell.RawDateTime || row[5].Float != 45306 {
		t.Fatalf("F1 = %+v, want serial 45306", row[5])
	}
}

func TestRangeRowsMissingSheet(t *testing.T) {
	wb := saveWorkbook(t, func(f *excelize.File) {})
	_, err := wb.RangeRows("Nope", 1, 1, 2, 2)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestTableRows(t *testing.T) {
	wb := saveWorkbook(t, func(f *excelize.File) {
		setCells(t, f, "Sheet1", map[string]any{
			"A1": "id", "B1": "label",
			"A2": 1, "B2": "alpha",
			"A3": 2, "B3": "beta",
		})
		if err := f.AddTable("Sheet1", &excelize.Table{
			Range: "A1:B3",
			Name:  "Exports",
		}); err != nil {
			t.Fatalf("AddTable: %v", err)
		}
	})

	rows, err := wb.TableRows("Exports")
	if err != nil {
		t.Fatalf("TableRows: %v", err)
	}
	// The header row belongs to the table definition, not the data.
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0].Int != 1 || rows[1][1].Text != "beta" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestTableRowsNotFound(t *testing.T) {
	wb := saveWorkbook(t, func(f *excelize.File) {})
	_, err := wb.TableRows("Nope")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestPivotRows(t *testing.T) {
	wb := saveWorkbook(t, func(f *excelize.File) {
		setCells(t, f, "Sheet1", map[string]any{
			"A1": "region", "B1": "amount",
			"A2": "north", "B2": 10,
			"A3": "south", "B3": 20,
		})
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

	rows, err := wb.PivotRows("Sheet1", "RegionPivot")
	if err != nil {
		t.Fatalf("PivotRows: %v", err)
	}
	// Header row included, then the cached data rows.
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0].Text != "region" || rows[0][1].Text != "amount" {
		t.Fatalf("header = %+v", rows[0])
	}
	if rows[2][0].Text != "south" || rows[2][1].Int != 20 {
		t.Fatalf("data = %+v", rows[2])
	}
}

func TestPivotRowsNotFound(t *testing.T) {
	wb := saveWorkbook(t, func(f *excelize.File) {})
	_, err := wb.PivotRows("Sheet1", "Nope")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		ref   string
		sheet string
		want  rangeRef
	}{
		{"A1:C5", "Data", rangeRef{sheet: "Data", startRow: 1, startCol: 1, endRow: 5, endCol: 3}},
		{"Other!B2:D4", "Data", rangeRef{sheet: "Other", startRow: 2, startCol: 2, endRow: 4, endCol: 4}},
		{"$A$1:$B$2", "Data", rangeRef{sheet: "Data", startRow: 1, startCol: 1, endRow: 2, endCol: 2}},
		{"C3", "Data", rangeRef{sheet: "Data", startRow: 3, startCol: 3, endRow: 3, endCol: 3}},
	}
	for _, c := range cases {
		got, err := parseRange(c.sheet, c.ref)
		if err != nil {
			t.Fatalf("parseRange(%q): %v", c.ref, err)
		}
		if got != c.want {
			t.Fatalf("parseRange(%q) = %+v, want %+v", c.ref, got, c.want)
		}
	}
}
