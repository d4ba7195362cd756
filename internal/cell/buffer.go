package cell

import "github.com/apache/arrow-go/v18/arrow/decimal128"

// Kind discriminates buffered scalar values.
type Kind uint8

const (
	// KindNull is an explicit null marker.
	KindNull Kind = iota
	// KindBool is a boolean scalar.
	KindBool
	// KindUint is an unsigned integer already narrowed to its target width.
	KindUint
	// KindInt is a signed integer already narrowed to its target width.
	KindInt
	// KindDec128 is a 128-bit two's-complement integer pattern.
	KindDec128
	// KindFloat is a floating point scalar.
	KindFloat
	// KindStr is an owned string scalar.
	KindStr
	// KindDate is a calendar date as days since the Unix epoch.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindDec128:
		return "dec128"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is one buffered scalar. The active field is determined by Kind.
type Value struct {
	Kind  Kind
	Bool  bool
	Uint  uint64
	Int   int64
	Dec   decimal128.Num
	Float float64
	Str   string
	Date  int32
}

// Null is the explicit null value.
var Null = Value{Kind: KindNull}

// Buffer is a growable sequence of scalar values for one schema column. It
// is exclusively owned by the read pass that created it; it grows
// monotonically until the frame assembler consumes it.
type Buffer struct {
	vals []Value
}

// NewBuffer returns a buffer with room for n values.
func NewBuffer(n int) *Buffer {
	return &Buffer{vals: make([]Value, 0, n)}
}

// Append adds one value to the buffer.
func (b *Buffer) Append(v Value) { b.vals = append(b.vals, v) }

// Len reports the number of buffered values.
func (b *Buffer) Len() int { return len(b.vals) }

// Values exposes the buffered sequence for consumption by the assembler.
func (b *Buffer) Values() []Value { return b.vals }
