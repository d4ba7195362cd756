package frame

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// buildFrame constructs a small two-column frame for tests.
func buildFrame(t *testing.T, ids []int64, labels []string) *Lazy {
	t.Helper()
	sch := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "label", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	rb := array.NewRecordBuilder(memory.DefaultAllocator, sch)
	defer rb.Release()
	rb.Field(0).(*array.Int64Builder).AppendValues(ids, nil)
	rb.Field(1).(*array.StringBuilder).AppendValues(labels, nil)
	rec := rb.NewRecord()
	defer rec.Release()
	return FromTable(array.NewTableFromRecords(sch, []arrow.Record{rec}))
}

func TestSelectReorders(t *testing.T) {
	f := buildFrame(t, []int64{1, 2}, []string{"a", "b"})
	defer f.Release()

	tbl, err := f.Select("label", "id").Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	defer tbl.Release()

	if tbl.NumCols() != 2 {
		t.Fatalf("NumCols = %d, want 2", tbl.NumCols())
	}
	if got := tbl.Schema().Field(0).Name; got != "label" {
		t.Fatalf("first column = %q, want label", got)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", tbl.NumRows())
	}
}

func TestSelectUnknownColumn(t *testing.T) {
	f := buildFrame(t, []int64{1}, []string{"a"})
	defer f.Release()

	if _, err := f.Select("missing").Collect(); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}

func TestFingerprintStable(t *testing.T) {
	a := buildFrame(t, []int64{1, 2, 3}, []string{"x", "y", "z"})
	defer a.Release()
	b := buildFrame(t, []int64{1, 2, 3}, []string{"x", "y", "z"})
	defer b.Release()

	fa, err := a.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	fb, err := b.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fa != fb {
		t.Fatalf("identical frames hash differently: %x vs %x", fa, fb)
	}
}

func TestEqualDetectsDifference(t *testing.T) {
	a := buildFrame(t, []int64{1, 2}, []string{"x", "y"})
	defer a.Release()
	b := buildFrame(t, []int64{1, 2}, []string{"x", "Y"})
	defer b.Release()

	eq, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal: %v", err)
	}
	if eq {
		t.Fatalf("frames with different content compared equal")
	}
}

func TestEqualIsRowOrderSensitive(t *testing.T) {
	a := buildFrame(t, []int64{1, 2}, []string{"x", "y"})
	defer a.Release()
	b := buildFrame(t, []int64{2, 1}, []string{"y", "x"})
	defer b.Release()

	eq, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal: %v", err)
	}
	if eq {
		t.Fatalf("row order must affect comparison")
	}
}

func TestNullDistinctFromZero(t *testing.T) {
	sch := arrow.NewSchema([]arrow.Field{
		{Name: "v", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)

	build := func(valid bool) *Lazy {
		rb := array.NewRecordBuilder(memory.DefaultAllocator, sch)
		defer rb.Release()
		rb.Field(0).(*array.Int64Builder).AppendValues([]int64{0}, []bool{valid})
		rec := rb.NewRecord()
		defer rec.Release()
		return FromTable(array.NewTableFromRecords(sch, []arrow.Record{rec}))
	}

	zero := build(true)
	defer zero.Release()
	null := build(false)
	defer null.Release()

	eq, err := Equal(zero, null)
	if err != nil {
		t.Fatalf("Equal: %v", err)
	}
	if eq {
		t.Fatalf("null and zero must not collide")
	}
}
