package reader

import (
	"errors"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"qaframe/internal/cell"
	"qaframe/internal/frame"
	"qaframe/internal/schema"
)

// assemble casts the accumulated column buffers to their declared Arrow
// types and wraps the result as a lazy frame. Ignored columns are entirely
// absent from the output; remaining columns keep schema order. Buffers may
// be empty (or nil), in which case the frame has zero rows but carries the
// full declared schema.
func assemble(sch schema.Schema, bufs []*cell.Buffer) (*frame.Lazy, error) {
	arrowSchema := sch.ArrowSchema()
	rb := array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema)
	defer rb.Release()

	j := 0
	for i, col := range sch.Columns {
		if col.Type == schema.TypeIgnored {
			continue
		}
		b := rb.Field(j)
		j++
		if i >= len(bufs) || bufs[i] == nil {
			continue
		}
		for _, v := range bufs[i].Values() {
			if err := appendValue(b, col, v); err != nil {
				return nil, err
			}
		}
	}

	rec := rb.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(arrowSchema, []arrow.Record{rec})
	return frame.FromTable(tbl), nil
}

// appendValue performs the strict buffer-to-column conversion for a single
// scalar. Loose numeric widening/truncation follows the frame engine's cast
// semantics; combinations with no sensible conversion (text in a date
// column short of a parseable ISO date, for instance) fail the read.
func appendValue(b array.Builder, col schema.Column, v cell.Value) error {
	if v.Kind == cell.KindNull {
		b.AppendNull()
		return nil
	}
	fail := func() error {
		return &ValueCastError{Column: col.Name, Target: col.Type, Kind: v.Kind}
	}
	switch bld := b.(type) {
	case *array.BooleanBuilder:
		switch v.Kind {
		case cell.KindBool:
			bld.Append(v.Bool)
		case cell.KindUint:
			bld.Append(v.Uint != 0)
		case cell.KindInt:
			bld.Append(v.Int != 0)
		case cell.KindFloat:
			bld.Append(v.Float != 0)
		case cell.KindStr:
			p, err := strconv.ParseBool(v.Str)
			if err != nil {
				return fail()
			}
			bld.Append(p)
		default:
			return fail()
		}
	case *array.Uint8Builder:
		u, err := valueUint(v)
		if err != nil {
			return fail()
		}
		bld.Append(uint8(u))
	case *array.Uint16Builder:
		u, err := valueUint(v)
		if err != nil {
			return fail()
		}
		bld.Append(uint16(u))
	case *array.Uint32Builder:
		u, err := valueUint(v)
		if err != nil {
			return fail()
		}
		bld.Append(uint32(u))
	case *array.Uint64Builder:
		u, err := valueUint(v)
		if err != nil {
			return fail()
		}
		bld.Append(u)
	case *array.Int8Builder:
		i, err := valueInt(v)
		if err != nil {
			return fail()
		}
		bld.Append(int8(i))
	case *array.Int16Builder:
		i, err := valueInt(v)
		if err != nil {
			return fail()
		}
		bld.Append(int16(i))
	case *array.Int32Builder:
		i, err := valueInt(v)
		if err != nil {
			return fail()
		}
		bld.Append(int32(i))
	case *array.Int64Builder:
		i, err := valueInt(v)
		if err != nil {
			return fail()
		}
		bld.Append(i)
	case *array.Decimal128Builder:
		switch v.Kind {
		case cell.KindDec128:
			bld.Append(v.Dec)
		case cell.KindUint:
			bld.Append(decimal128.FromU64(v.Uint))
		case cell.KindInt:
			bld.Append(decimal128.FromI64(v.Int))
		case cell.KindFloat:
			bld.Append(decimal128.FromI64(int64(v.Float)))
		case cell.KindStr:
			i, err := strconv.ParseInt(v.Str, 10, 64)
			if err != nil {
				return fail()
			}
			bld.Append(decimal128.FromI64(i))
		default:
			return fail()
		}
	case *array.Float32Builder:
		f, err := valueFloat(v)
		if err != nil {
			return fail()
		}
		bld.Append(float32(f))
	case *array.Float64Builder:
		f, err := valueFloat(v)
		if err != nil {
			return fail()
		}
		bld.Append(f)
	case *array.StringBuilder:
		bld.Append(valueString(v))
	case *array.Date32Builder:
		switch v.Kind {
		case cell.KindDate:
			bld.Append(arrow.Date32(v.Date))
		case cell.KindUint:
			bld.Append(arrow.Date32(v.Uint))
		case cell.KindInt:
			bld.Append(arrow.Date32(v.Int))
		case cell.KindFloat:
			bld.Append(arrow.Date32(v.Float))
		case cell.KindStr:
			t, err := time.Parse("2006-01-02", v.Str)
			if err != nil {
				return fail()
			}
			bld.Append(arrow.Date32(cell.EpochDays(t)))
		default:
			return fail()
		}
	default:
		return fail()
	}
	return nil
}

// valueUint widens a buffered scalar to uint64. The caster has already
// narrowed integer cells to the target width, so the final truncation back
// down is lossless for them.
func valueUint(v cell.Value) (uint64, error) {
	switch v.Kind {
	case cell.KindUint:
		return v.Uint, nil
	case cell.KindInt:
		return uint64(v.Int), nil
	case cell.KindFloat:
		return uint64(int64(v.Float)), nil
	case cell.KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case cell.KindStr:
		u, err := strconv.ParseUint(v.Str, 10, 64)
		if err != nil {
			return 0, err
		}
		return u, nil
	default:
		return 0, errUnconvertible
	}
}

func valueInt(v cell.Value) (int64, error) {
	switch v.Kind {
	case cell.KindInt:
		return v.Int, nil
	case cell.KindUint:
		return int64(v.Uint), nil
	case cell.KindFloat:
		return int64(v.Float), nil
	case cell.KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case cell.KindStr:
		i, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return 0, err
		}
		return i, nil
	default:
		return 0, errUnconvertible
	}
}

func valueFloat(v cell.Value) (float64, error) {
	switch v.Kind {
	case cell.KindFloat:
		return v.Float, nil
	case cell.KindUint:
		return float64(v.Uint), nil
	case cell.KindInt:
		return float64(v.Int), nil
	case cell.KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case cell.KindStr:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, err
		}
		return f, nil
	default:
		return 0, errUnconvertible
	}
}

// valueString renders any non-null scalar as text; a string column accepts
// everything.
func valueString(v cell.Value) string {
	switch v.Kind {
	case cell.KindStr:
		return v.Str
	case cell.KindBool:
		return strconv.FormatBool(v.Bool)
	case cell.KindUint:
		return strconv.FormatUint(v.Uint, 10)
	case cell.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case cell.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case cell.KindDate:
		return time.Unix(int64(v.Date)*86400, 0).UTC().Format("2006-01-02")
	default:
		return ""
	}
}

// errUnconvertible is an internal marker; appendValue rewraps it with the
// column context.
var errUnconvertible = errors.New("unconvertible value kind")
