package reader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/text/encoding"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"qaframe/internal/config"
	"qaframe/internal/frame"
	"qaframe/internal/schema"
)

// utf8BOM is stripped from the start of the stream if present.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// lowMemoryChunk is the per-record row count used when low_memory is set;
// otherwise the whole file is read as a single chunk.
const lowMemoryChunk = 1024

// delimitedReader reads a delimited text file by delegating the parse to
// the Arrow CSV reader, configured with the resolved schema and the
// comparison's CSV options. Ignored columns are read as text and projected
// away afterwards, so the output carries only the declared, non-ignored
// columns in schema order.
//
// What the engine cannot do itself happens in streaming wrappers before the
// bytes reach it: BOM stripping, skipping leading lines, normalizing a
// custom quote or end-of-line character to the standard ones, and the
// configured UTF-8 policy (strict validation or lossy replacement).
type delimitedReader struct {
	cfg *config.Compare
}

func (r *delimitedReader) Read(ctx context.Context, path string) (*frame.Lazy, error) {
	sch, err := buildSchema(r.cfg.Schema)
	if err != nil {
		return nil, err
	}
	opt := r.cfg.CSV

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 64*1024)
	if peeked, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(peeked, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	if err := skipLines(br, opt.SkipRows, byte(opt.EOLRune())); err != nil {
		return nil, fmt.Errorf("reader: skip %d rows of %s: %w", opt.SkipRows, path, err)
	}

	var rd io.Reader = br
	if opt.EnforceUTF8 {
		rd = transform.NewReader(rd, encoding.UTF8Validator)
	} else {
		rd = transform.NewReader(rd, runes.ReplaceIllFormed())
	}
	if q := opt.QuoteRune(); q != '"' && q < 128 {
		rd = &byteReplacer{r: rd, old: byte(q), repl: '"'}
	}
	if eol := opt.EOLRune(); eol != '\n' && eol < 128 {
		rd = &byteReplacer{r: rd, old: byte(eol), repl: '\n'}
	}

	readSchema, names := csvSchema(sch)
	opts := []csv.Option{
		csv.WithComma(opt.SeparatorRune()),
		csv.WithHeader(opt.Header()),
		csv.WithAllocator(memory.DefaultAllocator),
	}
	if opt.LowMemory {
		opts = append(opts, csv.WithChunk(lowMemoryChunk))
	} else {
		opts = append(opts, csv.WithChunk(-1))
	}
	if nulls := nullMarkers(opt); len(nulls) > 0 {
		opts = append(opts, csv.WithNullReader(true, nulls...))
	}
	if opt.QuoteRune() != '"' {
		// The quote normalization above is byte-blind; parse leniently.
		opts = append(opts, csv.WithLazyQuotes(true))
	}

	cr := csv.NewReader(rd, readSchema, opts...)
	defer cr.Release()

	var recs []arrow.Record
	release := func() {
		for _, rec := range recs {
			rec.Release()
		}
	}
	for cr.Next() {
		rec := cr.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := cr.Err(); err != nil {
		release()
		return nil, fmt.Errorf("reader: parse %s: %w", path, err)
	}

	if opt.Rechunk && len(recs) > 1 {
		merged, err := mergeRecords(readSchema, recs)
		release()
		if err != nil {
			return nil, fmt.Errorf("reader: rechunk %s: %w", path, err)
		}
		recs = []arrow.Record{merged}
	}

	var tbl arrow.Table
	if len(recs) == 0 {
		tbl = emptyTable(readSchema)
	} else {
		tbl = array.NewTableFromRecords(readSchema, recs)
		release()
	}

	lz := frame.FromTable(tbl)
	if len(names) == sch.Len() {
		return lz, nil
	}
	projected, err := lz.Select(names...).Collect()
	lz.Release()
	if err != nil {
		return nil, err
	}
	return frame.FromTable(projected), nil
}

// csvSchema builds the schema the CSV engine parses with - every declared
// column, with ignored ones read as plain text - and returns the names of
// the columns that survive projection.
func csvSchema(sch schema.Schema) (*arrow.Schema, []string) {
	fields := make([]arrow.Field, sch.Len())
	names := make([]string, 0, sch.Len())
	for i, c := range sch.Columns {
		dt := c.Type.Arrow()
		if dt == nil {
			dt = arrow.BinaryTypes.String
		} else {
			names = append(names, c.Name)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), names
}

// nullMarkers collects the configured null spellings, adding the empty
// field when missing values parse as null.
func nullMarkers(o config.CSVOptions) []string {
	nulls := make([]string, 0, len(o.NullValues)+1)
	nulls = append(nulls, o.NullValues...)
	if o.MissingIsNull {
		nulls = append(nulls, "")
	}
	return nulls
}

// mergeRecords concatenates chunked records into one contiguous record per
// column, honoring a rechunk request after a low-memory read.
func mergeRecords(sch *arrow.Schema, recs []arrow.Record) (arrow.Record, error) {
	var rows int64
	cols := make([]arrow.Array, sch.NumFields())
	for i := range cols {
		chunks := make([]arrow.Array, len(recs))
		for j, rec := range recs {
			chunks[j] = rec.Column(i)
		}
		merged, err := array.Concatenate(chunks, memory.DefaultAllocator)
		if err != nil {
			for _, c := range cols[:i] {
				c.Release()
			}
			return nil, err
		}
		cols[i] = merged
	}
	for _, rec := range recs {
		rows += rec.NumRows()
	}
	out := array.NewRecord(sch, cols, rows)
	for _, c := range cols {
		c.Release()
	}
	return out, nil
}

// emptyTable builds a zero-row table carrying the full schema.
func emptyTable(sch *arrow.Schema) arrow.Table {
	rb := array.NewRecordBuilder(memory.DefaultAllocator, sch)
	defer rb.Release()
	rec := rb.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(sch, []arrow.Record{rec})
}

// skipLines consumes n physical lines terminated by eol. Reaching EOF early
// is not an error; the parse below simply sees an empty stream.
func skipLines(br *bufio.Reader, n int, eol byte) error {
	for i := 0; i < n; i++ {
		if _, err := br.ReadBytes(eol); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
	return nil
}

// byteReplacer is an io.Reader that rewrites every occurrence of one byte.
// It is used to normalize a custom quote or end-of-line character to the
// standard one before the bytes reach the CSV engine; a single-byte pattern
// needs no carry between reads. The rewrite is byte-blind: it has no notion
// of quote state, so field content containing the custom byte literally is
// unsupported (see config.CSVOptions).
type byteReplacer struct {
	r    io.Reader
	old  byte
	repl byte
}

func (b *byteReplacer) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == b.old {
			p[i] = b.repl
		}
	}
	return n, err
}
