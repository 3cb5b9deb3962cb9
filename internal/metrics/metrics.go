// Package metrics records report runs for the node-exporter textfile collector.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/starford/tgaquery/internal/apperr"
)

const namespace = "tgaquery"

// Recorder holds the collectors of one process.
type Recorder struct {
	registry      *prometheus.Registry
	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.GaugeVec
	graphTriples  prometheus.Gauge
	runs          *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
}

// New registers the collectors on a private registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent evaluating one report query.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"query"}),
		queryRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Rows returned by the last evaluation of a report query.",
		}, []string{"query"}),
		graphTriples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_triples",
			Help:      "Triples in the last loaded ontology graph.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Report runs by outcome.",
		}, []string{"outcome"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last complete report.",
		}),
	}
	r.registry.MustRegister(r.queryDuration, r.queryRows, r.graphTriples, r.runs, r.lastSuccess)
	return r
}

// ObserveQuery records one evaluated query.
func (r *Recorder) ObserveQuery(name string, took time.Duration, rows int) {
	r.queryDuration.WithLabelValues(name).Observe(took.Seconds())
	r.queryRows.WithLabelValues(name).Set(float64(rows))
}

// SetGraphTriples records the size of the loaded graph.
func (r *Recorder) SetGraphTriples(n int) {
	r.graphTriples.Set(float64(n))
}

// RunFinished counts a run under the outcome derived from err.
func (r *Recorder) RunFinished(err error, at time.Time) {
	r.runs.WithLabelValues(Outcome(err)).Inc()
	if err == nil {
		r.lastSuccess.Set(float64(at.Unix()))
	}
}

// Outcome maps a run error onto its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrLoad):
		return "load_error"
	case errors.Is(err, apperr.ErrQuery):
		return "query_error"
	case errors.Is(err, apperr.ErrWrite):
		return "write_error"
	default:
		return "error"
	}
}

// WriteTextfile atomically writes the current values to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
