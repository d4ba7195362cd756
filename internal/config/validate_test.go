package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validCompare() Compare {
	return Compare{
		Kind:  KindTable,
		Left:  "left.xlsx",
		Right: "right.xlsx",
		Schema: []SchemaColumn{
			{Name: "id", Type: "u32"},
			{Name: "label", Type: "str"},
		},
		Table: TableRef{Name: "Exports"},
	}
}

func TestValidateOK(t *testing.T) {
	if issues := Validate(validCompare()); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestValidatePaths(t *testing.T) {
	c := validCompare()
	c.Left = ""
	c.Right = "  "
	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "left", "must not be empty") {
		t.Fatalf("missing left issue: %v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "right", "must not be empty") {
		t.Fatalf("missing right issue: %v", issues)
	}
}

func TestValidateSchema(t *testing.T) {
	c := validCompare()
	c.Schema = nil
	if !hasIssue(t, Validate(c), SeverityError, "schema", "at least one column") {
		t.Fatalf("missing empty-schema issue")
	}

	c = validCompare()
	c.Schema = []SchemaColumn{
		{Name: "id", Type: "u32"},
		{Name: "id", Type: "money"},
	}
	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "schema[1].type", "unknown type alias") {
		t.Fatalf("missing alias issue: %v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "schema[1].name", "duplicate column name") {
		t.Fatalf("missing duplicate warning: %v", issues)
	}
}

func TestValidateKind(t *testing.T) {
	c := validCompare()
	c.Kind = ""
	if !hasIssue(t, Validate(c), SeverityError, "kind", "must not be empty") {
		t.Fatalf("missing empty-kind issue")
	}

	c = validCompare()
	c.Kind = "parquet"
	if !hasIssue(t, Validate(c), SeverityWarning, "kind", "unknown source kind") {
		t.Fatalf("missing unknown-kind warning")
	}

	c = validCompare()
	c.Kind = KindPivotTable
	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "pivot_table.sheet", "sheet name") {
		t.Fatalf("missing pivot sheet issue: %v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "pivot_table.name", "pivot table name") {
		t.Fatalf("missing pivot name issue: %v", issues)
	}
}

func TestValidateSheetRange(t *testing.T) {
	c := validCompare()
	c.Kind = KindSheetRange
	c.SheetRange = SheetRangeRef{Sheet: "Data", StartRow: 0, StartCol: 1, EndRow: 5, EndCol: 3}
	if !hasIssue(t, Validate(c), SeverityError, "sheet_range", "1-based") {
		t.Fatalf("missing start-coordinate issue")
	}

	c.SheetRange = SheetRangeRef{Sheet: "Data", StartRow: 5, StartCol: 2, EndRow: 3, EndCol: 2}
	if !hasIssue(t, Validate(c), SeverityError, "sheet_range", "precede") {
		t.Fatalf("missing end-coordinate issue")
	}
}

func TestValidateCSV(t *testing.T) {
	c := validCompare()
	c.Kind = KindCSV
	c.CSV = CSVOptions{Separator: ";;", SkipRows: -1}
	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "csv.separator", "single character") {
		t.Fatalf("missing separator issue: %v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "csv.skip_rows", "negative") {
		t.Fatalf("missing skip_rows issue: %v", issues)
	}
}
