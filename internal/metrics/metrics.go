// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the frame readers.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//
// The primary use case is instrumentation of the read pipeline (rows
// materialized and read durations per side) without coupling the reader
// code to a specific metrics system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so a concrete system can be plugged in later.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordRead measures one side of a comparison: latency plus
// success/failure, labeled by source kind and side ("left"/"right").
func RecordRead(kind, side string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"kind":   kind,
		"side":   side,
		"status": status,
	}
	backend.IncCounter("qaframe_reads_total", 1, lbls)
	backend.ObserveHistogram("qaframe_read_duration_seconds", d.Seconds(), lbls)
}

// RecordRows counts data rows materialized for one side.
func RecordRows(kind, side string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("qaframe_rows_total", float64(delta), Labels{
		"kind": kind,
		"side": side,
	})
}
