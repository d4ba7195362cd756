// Package xlsx wraps the spreadsheet engine behind the small surface the
// source readers need: open a workbook, locate a defined table or pivot
// table by name, and iterate rectangular cell ranges as raw cell values.
//
// The engine hands back display-agnostic raw values; this package classifies
// each cell into the Raw variant set (integer, float, text, bool, serial
// date, error, empty) so the caster downstream never touches engine types.
package xlsx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"qaframe/internal/cell"
)

// ErrSourceNotFound is returned when a named table, pivot table, or sheet is
// absent from the workbook. The wrapping error names what was looked up.
var ErrSourceNotFound = errors.New("xlsx: source not found")

// Workbook is an open spreadsheet file.
type Workbook struct {
	f *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %s: %w", path, err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("xlsx: close: %w", err)
	}
	return nil
}

// TableRows locates a defined table by name across all sheets and returns
// its data rows (the header row of the table range is not part of the data).
func (w *Workbook) TableRows(name string) ([][]cell.Raw, error) {
	for _, sheet := range w.f.GetSheetList() {
		tables, err := w.f.GetTables(sheet)
		if err != nil {
			return nil, fmt.Errorf("xlsx: tables of sheet %q: %w", sheet, err)
		}
		for _, t := range tables {
			if t.Name != name {
				continue
			}
			ref, err := parseRange(sheet, t.Range)
			if err != nil {
				return nil, err
			}
			if t.ShowHeaderRow == nil || *t.ShowHeaderRow {
				ref.startRow++
			}
			return w.rangeRows(ref)
		}
	}
	return nil, fmt.Errorf("%w: table %q", ErrSourceNotFound, name)
}

// PivotRows locates a pivot table by sheet and name and returns the rows of
// its cache's data range, header row included.
func (w *Workbook) PivotRows(sheet, name string) ([][]cell.Raw, error) {
	pivots, err := w.f.GetPivotTables(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q", ErrSourceNotFound, sheet)
	}
	for _, p := range pivots {
		if p.Name != name {
			continue
		}
		ref, err := parseRange(sheet, p.DataRange)
		if err != nil {
			return nil, err
		}
		return w.rangeRows(ref)
	}
	return nil, fmt.Errorf("%w: pivot table %q on sheet %q", ErrSourceNotFound, name, sheet)
}

// RangeRows returns the cells of an explicit rectangular block. Coordinates
// are 1-based and inclusive, rows and columns alike.
func (w *Workbook) RangeRows(sheet string, startRow, startCol, endRow, endCol int) ([][]cell.Raw, error) {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q", ErrSourceNotFound, sheet)
	}
	return w.rangeRows(rangeRef{
		sheet:    sheet,
		startRow: startRow,
		startCol: startCol,
		endRow:   endRow,
		endCol:   endCol,
	})
}

// rangeRef is a resolved rectangular block within one sheet.
type rangeRef struct {
	sheet              string
	startRow, startCol int
	endRow, endCol     int
}

// parseRange resolves an A1-style range reference ("A1:C5", optionally
// prefixed with "Sheet!") against a default sheet.
func parseRange(defaultSheet, ref string) (rangeRef, error) {
	sheet := defaultSheet
	if i := strings.LastIndexByte(ref, '!'); i >= 0 {
		sheet = strings.Trim(ref[:i], "'")
		ref = ref[i+1:]
	}
	first, rest, ok := strings.Cut(ref, ":")
	if !ok {
		rest = first
	}
	startCol, startRow, err := excelize.CellNameToCoordinates(strings.ReplaceAll(first, "$", ""))
	if err != nil {
		return rangeRef{}, fmt.Errorf("xlsx: range %q: %w", ref, err)
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(strings.ReplaceAll(rest, "$", ""))
	if err != nil {
		return rangeRef{}, fmt.Errorf("xlsx: range %q: %w", ref, err)
	}
	return rangeRef{sheet: sheet, startRow: startRow, startCol: startCol, endRow: endRow, endCol: endCol}, nil
}

// rangeRows materializes the raw cells of a block in row-major order. The
// result is rectangular by construction: every row spans the full column
// range, with missing cells decoded as empty.
func (w *Workbook) rangeRows(ref rangeRef) ([][]cell.Raw, error) {
	rows := make([][]cell.Raw, 0, ref.endRow-ref.startRow+1)
	for r := ref.startRow; r <= ref.endRow; r++ {
		row := make([]cell.Raw, 0, ref.endCol-ref.startCol+1)
		for c := ref.startCol; c <= ref.endCol; c++ {
			axis, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, fmt.Errorf("xlsx: cell (%d,%d): %w", c, r, err)
			}
			raw, err := w.decodeCell(ref.sheet, axis)
			if err != nil {
				return nil, err
			}
			row = append(row, raw)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeCell classifies one cell into its Raw variant.
func (w *Workbook) decodeCell(sheet, axis string) (cell.Raw, error) {
	v, err := w.f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return cell.Raw{}, fmt.Errorf("xlsx: cell %s!%s: %w", sheet, axis, err)
	}
	ct, err := w.f.GetCellType(sheet, axis)
	if err != nil {
		return cell.Raw{}, fmt.Errorf("xlsx: cell type %s!%s: %w", sheet, axis, err)
	}
	switch ct {
	case excelize.CellTypeBool:
		return cell.Bool(v == "1" || strings.EqualFold(v, "true")), nil
	case excelize.CellTypeError:
		return cell.Error(v), nil
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		if v == "" {
			return cell.Empty(), nil
		}
		return cell.Text(v), nil
	case excelize.CellTypeDate:
		return w.decodeNumeric(sheet, axis, v, true)
	case excelize.CellTypeNumber, excelize.CellTypeFormula, excelize.CellTypeUnset:
		if v == "" {
			return cell.Empty(), nil
		}
		return w.decodeNumeric(sheet, axis, v, false)
	default:
		return cell.Unrecognized(), nil
	}
}

// decodeNumeric turns a raw numeric representation into an integer, float,
// serial date, or text cell. Formula cells fall through here with their
// cached value, which may be plain text.
func (w *Workbook) decodeNumeric(sheet, axis, v string, isDate bool) (cell.Raw, error) {
	if !isDate {
		styled, err := w.dateStyled(sheet, axis)
		if err != nil {
			return cell.Raw{}, err
		}
		isDate = styled
	}
	if isDate {
		serial, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cell.Text(v), nil
		}
		return cell.DateTime(serial), nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return cell.Int64(i), nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return cell.Float64(f), nil
	}
	return cell.Text(v), nil
}

// Builtin number format IDs that render a serial number as a date or time.
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true,
	21: true, 22: true, 27: true, 28: true, 29: true, 30: true, 31: true,
	32: true, 33: true, 34: true, 35: true, 36: true, 45: true, 46: true,
	47: true, 50: true, 51: true, 52: true, 53: true, 54: true, 55: true,
	56: true, 57: true, 58: true,
}

// dateStyled reports whether the cell's number format renders its value as a
// date or time.
func (w *Workbook) dateStyled(sheet, axis string) (bool, error) {
	styleID, err := w.f.GetCellStyle(sheet, axis)
	if err != nil {
		return false, fmt.Errorf("xlsx: style of %s!%s: %w", sheet, axis, err)
	}
	if styleID == 0 {
		return false, nil
	}
	style, err := w.f.GetStyle(styleID)
	if err != nil || style == nil {
		return false, nil
	}
	if dateNumFmts[style.NumFmt] {
		return true, nil
	}
	if style.CustomNumFmt != nil {
		return customFmtIsDate(*style.CustomNumFmt), nil
	}
	return false, nil
}

// customFmtIsDate heuristically classifies a custom number format string as
// a date/time format: it contains date tokens and no digit placeholders.
func customFmtIsDate(format string) bool {
	f := strings.ToLower(format)
	if strings.ContainsAny(f, "0#?") {
		return false
	}
	return strings.ContainsAny(f, "ymdhs")
}
