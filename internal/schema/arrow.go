package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// decimal128 stands in for the 128-bit integer widths, which Arrow has no
// primitive type for. Precision 38 is the widest a decimal128 column allows.
var decimal128 = &arrow.Decimal128Type{Precision: 38, Scale: 0}

// Arrow maps a canonical type to the Arrow data type its column materializes
// as. TypeIgnored has no materialized form and maps to nil; callers drop
// ignored columns before building frame schemas.
func (t Type) Arrow() arrow.DataType {
	switch t {
	case TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case TypeUint8:
		return arrow.PrimitiveTypes.Uint8
	case TypeUint16:
		return arrow.PrimitiveTypes.Uint16
	case TypeUint32:
		return arrow.PrimitiveTypes.Uint32
	case TypeUint64:
		return arrow.PrimitiveTypes.Uint64
	case TypeUint128, TypeInt128:
		return decimal128
	case TypeInt8:
		return arrow.PrimitiveTypes.Int8
	case TypeInt16:
		return arrow.PrimitiveTypes.Int16
	case TypeInt32:
		return arrow.PrimitiveTypes.Int32
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64
	case TypeFloat32:
		return arrow.PrimitiveTypes.Float32
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64
	case TypeString:
		return arrow.BinaryTypes.String
	case TypeDate:
		return arrow.FixedWidthTypes.Date32
	default:
		return nil
	}
}

// ArrowSchema builds the Arrow schema of the materialized frame: declared
// column order with ignored columns absent. All columns are nullable; empty
// cells and per-cell read errors materialize as null.
func (s Schema) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Type == TypeIgnored {
			continue
		}
		fields = append(fields, arrow.Field{
			Name:     c.Name,
			Type:     c.Type.Arrow(),
			Nullable: true,
		})
	}
	return arrow.NewSchema(fields, nil)
}
