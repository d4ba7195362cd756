// Package storage defines the narrow persistence interface the rest of the
// program depends on. Concrete backends live in subpackages; callers hold the
// interface so a backend can be swapped without touching read or compare code.
package storage

import (
	"context"

	"qaframe/internal/frame"
)

// Sink persists materialized frames for later inspection. Snapshot writes
// every row of the frame under the given name and reports how many rows it
// stored.
type Sink interface {
	Snapshot(ctx context.Context, name string, f *frame.Lazy) (int64, error)
	Close() error
}
