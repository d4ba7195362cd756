// Package schema resolves user-written type aliases into canonical column
// types and builds ordered read schemas from (name, alias) pairs.
//
// The alias table is the single source of truth for which spellings are
// accepted ("int32", "Int32", "INT32", ...). Lookup is exact-match and
// case-sensitive per listed variant; an unknown alias is a hard failure for
// the whole schema, never a silent default. Column order is significant: it
// drives positional routing when row-major cell streams are transposed into
// columns.
package schema

import (
	"errors"
	"fmt"
)

// Type is the canonical scalar type of one schema column.
type Type uint8

const (
	// TypeIgnored marks a column that is read past and never materialized.
	TypeIgnored Type = iota
	TypeBoolean
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeUint128
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeInt128
	TypeFloat32
	TypeFloat64
	TypeString
	TypeDate
)

var typeNames = map[Type]string{
	TypeIgnored: "ignored",
	TypeBoolean: "bool",
	TypeUint8:   "u8",
	TypeUint16:  "u16",
	TypeUint32:  "u32",
	TypeUint64:  "u64",
	TypeUint128: "u128",
	TypeInt8:    "i8",
	TypeInt16:   "i16",
	TypeInt32:   "i32",
	TypeInt64:   "i64",
	TypeInt128:  "i128",
	TypeFloat32: "f32",
	TypeFloat64: "f64",
	TypeString:  "str",
	TypeDate:    "date",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// aliases maps every accepted spelling to exactly one canonical Type. The
// variant set is fixed; extending it is an additive change here and nowhere
// else.
var aliases = map[string]Type{
	"null": TypeIgnored, "Null": TypeIgnored, "NULL": TypeIgnored,
	"x": TypeIgnored, "X": TypeIgnored,
	"remove": TypeIgnored, "Remove": TypeIgnored,

	"bool": TypeBoolean, "Bool": TypeBoolean, "BOOL": TypeBoolean,
	"boolean": TypeBoolean, "Boolean": TypeBoolean, "BOOLEAN": TypeBoolean,

	"u8": TypeUint8, "U8": TypeUint8,
	"uint8": TypeUint8, "UInt8": TypeUint8, "UINT8": TypeUint8,
	"bit": TypeUint8, "Bit": TypeUint8, "BIT": TypeUint8,

	"u16": TypeUint16, "U16": TypeUint16,
	"uint16": TypeUint16, "UInt16": TypeUint16, "UINT16": TypeUint16,

	"u32": TypeUint32, "U32": TypeUint32,
	"uint32": TypeUint32, "UInt32": TypeUint32, "UINT32": TypeUint32,
	"Int": TypeUint32, "INT": TypeUint32,
	"integer": TypeUint32, "Integer": TypeUint32, "INTEGER": TypeUint32,

	"u64": TypeUint64, "U64": TypeUint64,
	"uint64": TypeUint64, "UInt64": TypeUint64, "UINT64": TypeUint64,

	"u128": TypeUint128, "U128": TypeUint128,
	"uint128": TypeUint128, "UInt128": TypeUint128, "UINT128": TypeUint128,

	"i8": TypeInt8, "I8": TypeInt8,
	"int8": TypeInt8, "Int8": TypeInt8, "INT8": TypeInt8,
	"tinyint": TypeInt8, "TinyInt": TypeInt8,

	"i16": TypeInt16, "I16": TypeInt16,
	"int16": TypeInt16, "Int16": TypeInt16, "INT16": TypeInt16,

	"i32": TypeInt32, "I32": TypeInt32,
	"int32": TypeInt32, "Int32": TypeInt32, "INT32": TypeInt32,

	"i64": TypeInt64, "I64": TypeInt64,
	"int64": TypeInt64, "Int64": TypeInt64, "INT64": TypeInt64,

	"i128": TypeInt128, "I128": TypeInt128,
	"int128": TypeInt128, "Int128": TypeInt128, "INT128": TypeInt128,

	"f32": TypeFloat32, "F32": TypeFloat32,
	"float32": TypeFloat32, "Float32": TypeFloat32, "FLOAT32": TypeFloat32,

	"f64": TypeFloat64, "F64": TypeFloat64,
	"float64": TypeFloat64, "Float64": TypeFloat64, "FLOAT64": TypeFloat64,
	"float": TypeFloat64, "Float": TypeFloat64, "FLOAT": TypeFloat64,
	"decimal": TypeFloat64, "Decimal": TypeFloat64, "DECIMAL": TypeFloat64,

	"str": TypeString, "Str": TypeString,
	"string": TypeString, "String": TypeString, "STRING": TypeString,
	"TEXT": TypeString,

	"date": TypeDate, "Date": TypeDate, "DATE": TypeDate,
}

// Resolve looks up a type alias. The second return value reports whether the
// alias is known; callers must treat false as fatal for the column rather
// than substituting a default.
func Resolve(alias string) (Type, bool) {
	t, ok := aliases[alias]
	return t, ok
}

// RawColumn is one (column name, type alias) pair as supplied by the
// comparison configuration, before alias resolution.
type RawColumn struct {
	Name string
	Type string
}

// Column is one resolved schema entry.
type Column struct {
	Name string
	Type Type
}

// Schema is an ordered list of resolved columns. Order encodes the positional
// routing used during row-major transposition and must match the source's
// physical column order, including ignored columns.
type Schema struct {
	Columns []Column
}

// Len returns the number of schema columns, ignored ones included.
func (s Schema) Len() int { return len(s.Columns) }

// ErrEmptySchema is returned by Build when no columns were supplied.
var ErrEmptySchema = errors.New("schema: empty schema")

// UnknownTypeAliasError reports a column whose type alias is not in the alias
// table.
type UnknownTypeAliasError struct {
	Column string
	Alias  string
}

func (e *UnknownTypeAliasError) Error() string {
	return fmt.Sprintf("schema: column %q: unknown type alias %q", e.Column, e.Alias)
}

// Build resolves an ordered list of raw columns into a Schema. It fails with
// ErrEmptySchema on empty input and with UnknownTypeAliasError on the first
// alias that does not resolve; no partial schema is ever returned.
func Build(raw []RawColumn) (Schema, error) {
	if len(raw) == 0 {
		return Schema{}, ErrEmptySchema
	}
	cols := make([]Column, 0, len(raw))
	for _, rc := range raw {
		t, ok := Resolve(rc.Type)
		if !ok {
			return Schema{}, &UnknownTypeAliasError{Column: rc.Name, Alias: rc.Type}
		}
		cols = append(cols, Column{Name: rc.Name, Type: t})
	}
	return Schema{Columns: cols}, nil
}
