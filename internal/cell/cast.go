package cell

import (
	"errors"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/xuri/excelize/v2"

	"qaframe/internal/schema"
)

// ErrUnsupportedCellVariant is returned when a raw cell kind has no casting
// rule at all. Unlike per-cell read errors it aborts the read: it means the
// workbook engine produced something this pipeline does not understand.
var ErrUnsupportedCellVariant = errors.New("cell: unsupported cell variant")

// IncompatibleCastError reports a raw-cell/target-type combination that a
// correctly declared schema can never produce (e.g. an integer cell in a
// column declared as date). It aborts the read.
type IncompatibleCastError struct {
	Cell   RawKind
	Target schema.Type
}

func (e *IncompatibleCastError) Error() string {
	return fmt.Sprintf("cell: cannot cast %s cell to column type %s", e.Cell, e.Target)
}

// Cast converts one raw cell for the given target type and appends exactly
// one value to buf. Callers must not invoke Cast for ignored columns; the
// transposer discards those cells without buffering.
//
// Integer cells narrow by truncation (value modulo 2^width in the target's
// representation), matching the frame engine's narrowing-cast semantics.
// Float cells always buffer as 64-bit floats; their target enforcement is
// deferred to the buffer-to-column cast in the assembler.
func Cast(raw Raw, target schema.Type, buf *Buffer) error {
	switch raw.Kind {
	case RawEmpty:
		buf.Append(Null)
	case RawInt:
		v, err := narrowInt(raw, target)
		if err != nil {
			return err
		}
		buf.Append(v)
	case RawFloat:
		buf.Append(Value{Kind: KindFloat, Float: raw.Float})
	case RawText:
		buf.Append(Value{Kind: KindStr, Str: raw.Text})
	case RawBool:
		buf.Append(Value{Kind: KindBool, Bool: raw.Bool})
	case RawDateTime:
		t, err := excelize.ExcelDateToTime(raw.Float, false)
		if err != nil {
			// Serial value outside the representable calendar; the raw
			// timestamp is discarded.
			buf.Append(Null)
			return nil
		}
		buf.Append(Value{Kind: KindDate, Date: EpochDays(t)})
	case RawError:
		// A cell-level read error never aborts the read.
		buf.Append(Null)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedCellVariant, raw.Kind)
	}
	return nil
}

// narrowInt narrows a 64-bit integer cell into the target's representation.
func narrowInt(raw Raw, target schema.Type) (Value, error) {
	i := raw.Int
	switch target {
	case schema.TypeUint8:
		return Value{Kind: KindUint, Uint: uint64(uint8(i))}, nil
	case schema.TypeUint16:
		return Value{Kind: KindUint, Uint: uint64(uint16(i))}, nil
	case schema.TypeUint32:
		return Value{Kind: KindUint, Uint: uint64(uint32(i))}, nil
	case schema.TypeUint64:
		return Value{Kind: KindUint, Uint: uint64(i)}, nil
	case schema.TypeInt8:
		return Value{Kind: KindInt, Int: int64(int8(i))}, nil
	case schema.TypeInt16:
		return Value{Kind: KindInt, Int: int64(int16(i))}, nil
	case schema.TypeInt32:
		return Value{Kind: KindInt, Int: int64(int32(i))}, nil
	case schema.TypeInt64:
		return Value{Kind: KindInt, Int: i}, nil
	case schema.TypeUint128, schema.TypeInt128:
		return Value{Kind: KindDec128, Dec: dec128FromInt64(i)}, nil
	case schema.TypeBoolean:
		return Value{Kind: KindBool, Bool: i != 0}, nil
	case schema.TypeFloat32:
		return Value{Kind: KindFloat, Float: float64(float32(i))}, nil
	case schema.TypeFloat64:
		return Value{Kind: KindFloat, Float: float64(i)}, nil
	default:
		return Value{}, &IncompatibleCastError{Cell: raw.Kind, Target: target}
	}
}

// dec128FromInt64 sign-extends i to a 128-bit two's-complement pattern.
func dec128FromInt64(i int64) decimal128.Num {
	var hi int64
	if i < 0 {
		hi = -1
	}
	return decimal128.New(hi, uint64(i))
}

// EpochDays converts a timestamp to its calendar date expressed as days
// since 1970-01-01. The time-of-day component is dropped.
func EpochDays(t time.Time) int32 {
	y, m, d := t.Date()
	return int32(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
