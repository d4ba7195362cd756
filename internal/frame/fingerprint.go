package frame

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the frame's content after applying deferred operations:
// column names, types, and every cell value in schema-then-row order. Two
// frames with equal fingerprints hold the same data in the same layout. The
// hash is order-sensitive on purpose; row order differences are real
// differences for this tool.
func (l *Lazy) Fingerprint() (uint64, error) {
	tbl, err := l.Collect()
	if err != nil {
		return 0, err
	}
	defer tbl.Release()

	h := xxh3.New()
	var scratch [8]byte
	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(scratch[:], v)
		h.Write(scratch[:])
	}

	sch := tbl.Schema()
	for i := 0; i < int(tbl.NumCols()); i++ {
		f := sch.Field(i)
		h.WriteString(f.Name)
		h.WriteString(f.Type.String())
		col := tbl.Column(i)
		for _, chunk := range col.Data().Chunks() {
			hashArray(chunk, h, writeU64)
		}
	}
	return h.Sum64(), nil
}

// hashArray feeds one array's values into the hash. Nulls write a marker
// byte so that null and zero never collide.
func hashArray(a arrow.Array, h *xxh3.Hasher, writeU64 func(uint64)) {
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		switch arr := a.(type) {
		case *array.Boolean:
			if arr.Value(i) {
				writeU64(1)
			} else {
				writeU64(0)
			}
		case *array.Uint8:
			writeU64(uint64(arr.Value(i)))
		case *array.Uint16:
			writeU64(uint64(arr.Value(i)))
		case *array.Uint32:
			writeU64(uint64(arr.Value(i)))
		case *array.Uint64:
			writeU64(arr.Value(i))
		case *array.Int8:
			writeU64(uint64(arr.Value(i)))
		case *array.Int16:
			writeU64(uint64(arr.Value(i)))
		case *array.Int32:
			writeU64(uint64(arr.Value(i)))
		case *array.Int64:
			writeU64(uint64(arr.Value(i)))
		case *array.Float32:
			writeU64(uint64(math.Float32bits(arr.Value(i))))
		case *array.Float64:
			writeU64(math.Float64bits(arr.Value(i)))
		case *array.String:
			h.WriteString(arr.Value(i))
		case *array.Date32:
			writeU64(uint64(arr.Value(i)))
		case *array.Decimal128:
			n := arr.Value(i)
			writeU64(uint64(n.HighBits()))
			writeU64(n.LowBits())
		default:
			h.WriteString(a.ValueStr(i))
		}
	}
}
