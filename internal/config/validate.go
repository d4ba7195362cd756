// This file adds a lightweight linter/validator for Compare values. It
// performs static checks over a decoded Compare and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"qaframe/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Compare.
//
// Path is a dotted path into the config (e.g. "schema[1].type",
// "sheet_range.start_row"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation / linting of a Compare. It does not
// mutate the value; callers decide whether warnings are fatal.
func Validate(c Compare) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Left) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "left",
			Message:  "left path must not be empty",
		})
	}
	if strings.TrimSpace(c.Right) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "right",
			Message:  "right path must not be empty",
		})
	}

	issues = append(issues, validateSchema(c.Schema)...)
	issues = append(issues, validateKind(c)...)
	return issues
}

// validateSchema checks the declared column list against the alias table.
func validateSchema(cols []SchemaColumn) []Issue {
	var issues []Issue

	if len(cols) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "schema",
			Message:  "schema must declare at least one column",
		})
		return issues
	}

	seen := make(map[string]bool, len(cols))
	for i, col := range cols {
		path := fmt.Sprintf("schema[%d]", i)
		if strings.TrimSpace(col.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "column name must not be empty",
			})
		}
		if _, ok := schema.Resolve(col.Type); !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".type",
				Message:  fmt.Sprintf("unknown type alias %q", col.Type),
			})
		}
		if seen[col.Name] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".name",
				Message:  fmt.Sprintf("duplicate column name %q; positional routing still works but selection by name is ambiguous", col.Name),
			})
		}
		seen[col.Name] = true
	}
	return issues
}

// validateKind checks the per-kind parameter block matching the source kind.
func validateKind(c Compare) []Issue {
	var issues []Issue

	switch c.Kind {
	case KindCSV:
		issues = append(issues, validateCSV(c.CSV)...)
	case KindPivotTable:
		if strings.TrimSpace(c.PivotTable.Sheet) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "pivot_table.sheet",
				Message:  "pivot table source requires a sheet name",
			})
		}
		if strings.TrimSpace(c.PivotTable.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "pivot_table.name",
				Message:  "pivot table source requires a pivot table name",
			})
		}
	case KindTable:
		if strings.TrimSpace(c.Table.Name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "table.name",
				Message:  "table source requires a table name",
			})
		}
	case KindSheetRange:
		r := c.SheetRange
		if strings.TrimSpace(r.Sheet) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sheet_range.sheet",
				Message:  "sheet range source requires a sheet name",
			})
		}
		if r.StartRow < 1 || r.StartCol < 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sheet_range",
				Message:  "start coordinates are 1-based and must be >= 1",
			})
		}
		if r.EndRow < r.StartRow || r.EndCol < r.StartCol {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sheet_range",
				Message:  "end coordinates must not precede start coordinates",
			})
		}
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "kind",
			Message:  "kind must not be empty",
		})
	default:
		// Unknown kinds are surfaced when the reader is constructed; warn
		// early so a typo is visible before any file is touched.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching reader exists", c.Kind),
		})
	}
	return issues
}

// validateCSV checks delimited-text options.
func validateCSV(o CSVOptions) []Issue {
	var issues []Issue

	if o.Separator != "" && utf8.RuneCountInString(o.Separator) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "csv.separator",
			Message:  "separator must be a single character",
		})
	}
	if o.Quote != "" && utf8.RuneCountInString(o.Quote) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "csv.quote",
			Message:  "quote must be a single character",
		})
	}
	if o.EOL != "" && utf8.RuneCountInString(o.EOL) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "csv.eol",
			Message:  "eol must be a single character",
		})
	}
	if o.SkipRows < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "csv.skip_rows",
			Message:  "skip_rows must not be negative",
		})
	}
	return issues
}
