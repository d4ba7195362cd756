// Package reader materializes tabular sources into typed columnar frames.
//
// Four reader variants share one pipeline: resolve the declared schema,
// locate the raw rows for the source kind, route cells into per-column
// buffers (transpose + cast), and assemble the buffers into an Arrow-backed
// lazy frame. Delimited text is the exception: its parse is delegated
// wholesale to the Arrow CSV reader, which already produces typed, named
// columns.
//
// The package's outward surface is Frames, which reads the left and right
// side of a comparison concurrently and returns both frames.
package reader

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"qaframe/internal/cell"
	"qaframe/internal/config"
	"qaframe/internal/frame"
	"qaframe/internal/metrics"
	"qaframe/internal/schema"
	"qaframe/internal/transpose"
)

// Reader reads one file into a lazy frame. Implementations are selected by
// the comparison's source kind and hold no state across reads; every Read
// builds a fresh schema and fresh column buffers.
type Reader interface {
	Read(ctx context.Context, path string) (*frame.Lazy, error)
}

// New selects the reader variant for the comparison's source kind.
func New(cfg *config.Compare) (Reader, error) {
	switch cfg.Kind {
	case config.KindCSV:
		return &delimitedReader{cfg: cfg}, nil
	case config.KindPivotTable:
		return &pivotReader{cfg: cfg}, nil
	case config.KindTable:
		return &tableReader{cfg: cfg}, nil
	case config.KindSheetRange:
		return &rangeReader{cfg: cfg}, nil
	default:
		return nil, &UnimplementedKindError{Kind: string(cfg.Kind)}
	}
}

// Frames reads the comparison's left and right paths and returns both lazy
// frames. The two reads are independent (no shared mutable state) and run
// concurrently; the first failure cancels the other side and is returned.
func Frames(ctx context.Context, cfg *config.Compare) (*frame.Lazy, *frame.Lazy, error) {
	r, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}

	var left, right *frame.Lazy
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		left, err = readSide(ctx, r, cfg.Kind, "left", cfg.Left)
		return err
	})
	g.Go(func() error {
		var err error
		right, err = readSide(ctx, r, cfg.Kind, "right", cfg.Right)
		return err
	})
	if err := g.Wait(); err != nil {
		if left != nil {
			left.Release()
		}
		if right != nil {
			right.Release()
		}
		return nil, nil, err
	}
	return left, right, nil
}

// readSide runs one read with timing and row metrics.
func readSide(ctx context.Context, r Reader, kind config.Kind, side, path string) (*frame.Lazy, error) {
	start := time.Now()
	lf, err := r.Read(ctx, path)
	metrics.RecordRead(string(kind), side, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("reader: %s side %s: %w", side, path, err)
	}
	metrics.RecordRows(string(kind), side, lf.NumRows())
	return lf, nil
}

// buildSchema resolves the configured (name, alias) pairs.
func buildSchema(cols []config.SchemaColumn) (schema.Schema, error) {
	raw := make([]schema.RawColumn, len(cols))
	for i, c := range cols {
		raw[i] = schema.RawColumn{Name: c.Name, Type: c.Type}
	}
	return schema.Build(raw)
}

// transposeRows routes raw rows through the transpose/cast pipeline and
// assembles the resulting buffers.
func transposeRows(sch schema.Schema, rows [][]cell.Raw) (*frame.Lazy, error) {
	tr := transpose.New(sch)
	for _, row := range rows {
		if err := tr.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return assemble(sch, tr.Buffers())
}
