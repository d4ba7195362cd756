// Package config defines the canonical, JSON-serializable comparison model
// for the qaframe application. It is intentionally small, explicit, and
// dependency-free so that comparisons can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// A comparison names the source kind, the left and right file paths, the
// ordered column schema, and the per-kind source parameters. Example
// (trimmed):
//
//	{
//	  "kind":  "sheet_range",
//	  "left":  "exports/before.xlsx",
//	  "right": "exports/after.xlsx",
//	  "schema": [
//	    { "name": "id",     "type": "u32" },
//	    { "name": "note",   "type": "x" },
//	    { "name": "amount", "type": "f64" }
//	  ],
//	  "sheet_range": { "sheet": "Data", "start_row": 2, "start_col": 1,
//	                   "end_row": 500, "end_col": 3 }
//	}
//
// Schema order is significant: it must match the physical column order of
// the source, including columns typed "x"/"remove" that are read past.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind selects the source reader implementation.
type Kind string

const (
	// KindCSV reads a delimited text file.
	KindCSV Kind = "csv"
	// KindPivotTable reads a pivot table's cache from a workbook.
	KindPivotTable Kind = "pivot_table"
	// KindTable reads a defined (named) table from a workbook.
	KindTable Kind = "table"
	// KindSheetRange reads an explicit cell range from a workbook sheet.
	KindSheetRange Kind = "sheet_range"
)

// Compare describes one left/right comparison: where both sides live, how to
// locate their rows, and the declared column schema shared by both.
type Compare struct {
	// Kind selects the source reader. One of "csv", "pivot_table", "table",
	// "sheet_range".
	Kind Kind `json:"kind"`

	// Left and Right are the two file paths read independently.
	Left  string `json:"left"`
	Right string `json:"right"`

	// Schema lists the columns in physical source order. Types are aliases
	// resolved by the schema package ("u32", "Int32", "TEXT", "date", ...);
	// "x"/"remove"/"null" marks a column to read past.
	Schema []SchemaColumn `json:"schema"`

	// CSV carries options for the "csv" kind.
	CSV CSVOptions `json:"csv"`

	// PivotTable carries options for the "pivot_table" kind.
	PivotTable PivotTableRef `json:"pivot_table"`

	// Table carries options for the "table" kind.
	Table TableRef `json:"table"`

	// SheetRange carries options for the "sheet_range" kind.
	SheetRange SheetRangeRef `json:"sheet_range"`
}

// SchemaColumn is one (name, type alias) schema entry.
type SchemaColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CSVOptions configures delimited-text parsing. Zero values fall back to
// defaults (comma separator, double-quote quoting, header present).
type CSVOptions struct {
	// Separator is the field delimiter, a single character.
	Separator string `json:"separator"`

	// HasHeader indicates whether the first (post-skip) row is a header.
	// Omitted means true.
	HasHeader *bool `json:"has_header"`

	// Quote is the quoting character, a single character. A non-standard
	// quote is normalized to '"' byte-for-byte before parsing, so field
	// content must not contain the quote byte literally.
	Quote string `json:"quote"`

	// EOL is the record terminator character. Empty means newline. A
	// non-standard terminator is normalized to '\n' byte-for-byte before
	// parsing, so field content must not contain the terminator byte
	// literally, quoted or not.
	EOL string `json:"eol"`

	// NullValues lists markers parsed as null in any column.
	NullValues []string `json:"null_values"`

	// EnforceUTF8 fails the read on invalid UTF-8 instead of replacing bad
	// bytes with U+FFFD.
	EnforceUTF8 bool `json:"enforce_utf8"`

	// SkipRows drops this many physical lines before parsing begins.
	SkipRows int `json:"skip_rows"`

	// LowMemory reads in small chunks, trading locality for peak memory.
	LowMemory bool `json:"low_memory"`

	// Rechunk requests one contiguous chunk per column in the result.
	Rechunk bool `json:"rechunk"`

	// MissingIsNull parses empty fields as null rather than empty text.
	MissingIsNull bool `json:"missing_is_null"`
}

// PivotTableRef locates a pivot table within a workbook.
type PivotTableRef struct {
	Sheet string `json:"sheet"`
	Name  string `json:"name"`
}

// TableRef locates a defined table within a workbook by name.
type TableRef struct {
	Name string `json:"name"`
}

// SheetRangeRef locates an explicit cell block. Coordinates are 1-based and
// inclusive on both ends.
type SheetRangeRef struct {
	Sheet    string `json:"sheet"`
	StartRow int    `json:"start_row"`
	StartCol int    `json:"start_col"`
	EndRow   int    `json:"end_row"`
	EndCol   int    `json:"end_col"`
}

// Header reports whether the CSV source declares a header row. The default
// is true when the option is omitted.
func (o CSVOptions) Header() bool {
	if o.HasHeader == nil {
		return true
	}
	return *o.HasHeader
}

// SeparatorRune returns the configured field delimiter, defaulting to ','.
func (o CSVOptions) SeparatorRune() rune { return firstRune(o.Separator, ',') }

// QuoteRune returns the configured quote character, defaulting to '"'.
func (o CSVOptions) QuoteRune() rune { return firstRune(o.Quote, '"') }

// EOLRune returns the configured record terminator, defaulting to '\n'.
func (o CSVOptions) EOLRune() rune { return firstRune(o.EOL, '\n') }

// firstRune returns the first rune of s, or def when s is empty.
func firstRune(s string, def rune) rune {
	for _, r := range s {
		return r
	}
	return def
}

// Load reads and decodes a comparison file, then validates it. Issues of
// error severity fail the load; warnings are ignored here and can be
// surfaced separately via Validate.
func Load(path string) (Compare, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Compare{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Compare
	if err := json.Unmarshal(b, &c); err != nil {
		return Compare{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	for _, iss := range Validate(c) {
		if iss.Severity == SeverityError {
			return Compare{}, fmt.Errorf("config: %s: %w", path, iss)
		}
	}
	return c, nil
}
