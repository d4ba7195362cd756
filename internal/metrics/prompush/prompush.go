// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the read-pipeline labels (kind, side, status) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint; a comparison run is a short-lived
//     batch job, not a long-running scrape target.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends without changes to the readers.
package prompush

import (
	"fmt"

	"qaframe/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	readCounter  *prometheus.CounterVec // "qaframe_reads_total"
	readDuration *prometheus.SummaryVec // "qaframe_read_duration_seconds"
	rowCounter   *prometheus.CounterVec // "qaframe_rows_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name, typically one per comparison run.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "qaframe"
	}

	reg := prometheus.NewRegistry()

	readCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qaframe_reads_total",
			Help: "Total number of side reads, partitioned by source kind, side, and status.",
		},
		[]string{"kind", "side", "status"},
	)
	readDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "qaframe_read_duration_seconds",
			Help:       "Duration of side reads in seconds, partitioned by source kind, side, and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"kind", "side", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qaframe_rows_total",
			Help: "Data rows materialized, partitioned by source kind and side.",
		},
		[]string{"kind", "side"},
	)

	if err := reg.Register(readCounter); err != nil {
		return nil, fmt.Errorf("prompush: register read counter: %w", err)
	}
	if err := reg.Register(readDuration); err != nil {
		return nil, fmt.Errorf("prompush: register read summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		readCounter:  readCounter,
		readDuration: readDuration,
		rowCounter:   rowCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "qaframe_reads_total":
		if b.readCounter == nil {
			return
		}
		b.readCounter.WithLabelValues(labels["kind"], labels["side"], labels["status"]).Add(delta)

	case "qaframe_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"], labels["side"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "qaframe_read_duration_seconds" || b.readDuration == nil {
		return
	}
	b.readDuration.WithLabelValues(labels["kind"], labels["side"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
