// Package cell defines the raw cell values produced by the spreadsheet
// engine, the loosely-typed column buffers they are collected into, and the
// caster that narrows a raw cell into a buffered scalar for one declared
// column type.
//
// Casting happens in two stages, mirroring the frame engine's own model:
// the caster narrows numerics and resolves dates while buffering, and the
// frame assembler performs the final strict conversion from buffered scalars
// to the declared Arrow column type. Per-cell read problems (empty cells,
// engine-reported cell errors, underivable dates) degrade to null and never
// abort a read; structurally impossible combinations do.
package cell

import "fmt"

// RawKind discriminates the variants of a Raw cell.
type RawKind uint8

const (
	// RawEmpty is a cell with no stored value.
	RawEmpty RawKind = iota
	// RawInt is a 64-bit integer cell.
	RawInt
	// RawFloat is a 64-bit floating point cell.
	RawFloat
	// RawText is a string cell.
	RawText
	// RawBool is a boolean cell.
	RawBool
	// RawDateTime is a date/time cell carrying the workbook's serial value.
	RawDateTime
	// RawError is an engine-reported cell error (e.g. #DIV/0!).
	RawError
	// RawUnrecognized is a cell the workbook engine could not classify.
	RawUnrecognized
)

func (k RawKind) String() string {
	switch k {
	case RawEmpty:
		return "empty"
	case RawInt:
		return "int"
	case RawFloat:
		return "float"
	case RawText:
		return "text"
	case RawBool:
		return "bool"
	case RawDateTime:
		return "datetime"
	case RawError:
		return "error"
	case RawUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("RawKind(%d)", uint8(k))
	}
}

// Raw is one loosely-typed cell as yielded by a source. It is consumed once
// by the caster and never retained.
type Raw struct {
	Kind  RawKind
	Int   int64
	Float float64 // value for RawFloat, serial date/time for RawDateTime
	Text  string  // value for RawText, diagnostic for RawError
	Bool  bool
}

// Empty returns an empty cell.
func Empty() Raw { return Raw{Kind: RawEmpty} }

// Int64 returns an integer cell.
func Int64(i int64) Raw { return Raw{Kind: RawInt, Int: i} }

// Float64 returns a floating point cell.
func Float64(f float64) Raw { return Raw{Kind: RawFloat, Float: f} }

// Text returns a text cell.
func Text(s string) Raw { return Raw{Kind: RawText, Text: s} }

// Bool returns a boolean cell.
func Bool(b bool) Raw { return Raw{Kind: RawBool, Bool: b} }

// DateTime returns a date/time cell holding a workbook serial value.
func DateTime(serial float64) Raw { return Raw{Kind: RawDateTime, Float: serial} }

// Error returns an engine-reported error cell with its diagnostic text.
func Error(diag string) Raw { return Raw{Kind: RawError, Text: diag} }

// Unrecognized returns a cell of a kind the engine could not classify.
func Unrecognized() Raw { return Raw{Kind: RawUnrecognized} }
