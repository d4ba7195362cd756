// Package sqlite implements a SQLite-backed storage.Sink using database/sql.
// Each snapshot becomes one table, created from the frame's schema and filled
// with batched INSERTs inside a transaction; SQLite has no dedicated bulk-load
// API, but transactions keep performance acceptable for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	_ "modernc.org/sqlite"

	"qaframe/internal/frame"
)

// insertBatch is the record size used when walking the table.
const insertBatch = 1024

// Sink is a SQLite-backed implementation of storage.Sink.
type Sink struct {
	db *sql.DB
}

// Open opens a SQLite database using the provided DSN.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:snapshots.db?cache=shared"
//	"snapshots.db"
func Open(ctx context.Context, dsn string) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Sink{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Sink) Close() error { return s.db.Close() }

// Snapshot materializes the frame and writes it into a table named after the
// snapshot, replacing any previous table of the same name. It returns the
// number of rows inserted.
func (s *Sink) Snapshot(ctx context.Context, name string, f *frame.Lazy) (int64, error) {
	tbl, err := f.Collect()
	if err != nil {
		return 0, fmt.Errorf("sqlite: snapshot %s: %w", name, err)
	}
	defer tbl.Release()

	sch := tbl.Schema()
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return 0, fmt.Errorf("sqlite: drop %s: %w", name, err)
	}
	if _, err := s.db.ExecContext(ctx, createSQL(name, sch)); err != nil {
		return 0, fmt.Errorf("sqlite: create %s: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL(name, sch))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	tr := array.NewTableReader(tbl, insertBatch)
	defer tr.Release()
	args := make([]any, sch.NumFields())
	for tr.Next() {
		rec := tr.Record()
		for row := 0; row < int(rec.NumRows()); row++ {
			for col := 0; col < int(rec.NumCols()); col++ {
				args[col] = cellValue(rec.Column(col), row)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				_ = tx.Rollback()
				return inserted, fmt.Errorf("sqlite: insert into %s: %w", name, err)
			}
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// createSQL builds the CREATE TABLE statement for a frame schema.
func createSQL(name string, sch *arrow.Schema) string {
	cols := make([]string, sch.NumFields())
	for i, f := range sch.Fields() {
		cols[i] = fmt.Sprintf("%s %s", quoteIdent(f.Name), sqlType(f.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
}

func insertSQL(name string, sch *arrow.Schema) string {
	cols := make([]string, sch.NumFields())
	marks := make([]string, sch.NumFields())
	for i, f := range sch.Fields() {
		cols[i] = quoteIdent(f.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(cols, ", "), strings.Join(marks, ", "),
	)
}

// sqlType maps a frame column type onto a SQLite storage class. Dates are
// stored as days since the Unix epoch; 128-bit integers as their decimal
// text rendering, which SQLite cannot hold natively.
func sqlType(dt arrow.DataType) string {
	switch dt.ID() {
	case arrow.BOOL, arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64, arrow.DATE32:
		return "INTEGER"
	case arrow.FLOAT32, arrow.FLOAT64:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// cellValue extracts one array element as a database/sql argument.
func cellValue(a arrow.Array, i int) any {
	if a.IsNull(i) {
		return nil
	}
	switch arr := a.(type) {
	case *array.Boolean:
		if arr.Value(i) {
			return int64(1)
		}
		return int64(0)
	case *array.Uint8:
		return int64(arr.Value(i))
	case *array.Uint16:
		return int64(arr.Value(i))
	case *array.Uint32:
		return int64(arr.Value(i))
	case *array.Uint64:
		v := arr.Value(i)
		if v > math.MaxInt64 {
			return arr.ValueStr(i)
		}
		return int64(v)
	case *array.Int8:
		return int64(arr.Value(i))
	case *array.Int16:
		return int64(arr.Value(i))
	case *array.Int32:
		return int64(arr.Value(i))
	case *array.Int64:
		return arr.Value(i)
	case *array.Float32:
		return float64(arr.Value(i))
	case *array.Float64:
		return arr.Value(i)
	case *array.String:
		return arr.Value(i)
	case *array.Date32:
		return int64(arr.Value(i))
	default:
		return a.ValueStr(i)
	}
}
