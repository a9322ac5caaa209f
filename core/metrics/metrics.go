package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects the outcome of one run into its own registry.
type Recorder struct {
	registry   *prometheus.Registry
	path       string
	records    *prometheus.GaugeVec
	entities   *prometheus.GaugeVec
	reconciled prometheus.Gauge
	duration   prometheus.Gauge
	success    prometheus.Gauge
	lastRun    prometheus.Gauge
}

// NewRecorder registers the run gauges under the configured namespace.
func NewRecorder(cfg Config) *Recorder {
	ns := cfg.Namespace
	if ns == "" {
		ns = "medifinder_ingest"
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		path:     cfg.TextfilePath,
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "records",
			Help:      "Records handled by the last run, by outcome.",
		}, []string{"outcome"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "entities",
			Help:      "Entities written by the last run, by entity and action.",
		}, []string{"entity", "action"}),
		reconciled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "reconciled_rows",
			Help:      "Inventory rows zeroed by the last reconciliation pass.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "success",
			Help:      "1 if the last run completed, 0 if it was aborted.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.records, r.entities, r.reconciled, r.duration, r.success, r.lastRun)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// SetRecords records the number of records with the given outcome.
func (r *Recorder) SetRecords(outcome string, n int) {
	r.records.WithLabelValues(outcome).Set(float64(n))
}

// SetEntities records the number of entity rows created or updated.
func (r *Recorder) SetEntities(entity, action string, n int) {
	r.entities.WithLabelValues(entity, action).Set(float64(n))
}

// SetReconciled records the rows zeroed by reconciliation.
func (r *Recorder) SetReconciled(n int64) {
	r.reconciled.Set(float64(n))
}

// Finish stamps duration, outcome and completion time.
func (r *Recorder) Finish(started, finished time.Time, ok bool) {
	r.duration.Set(finished.Sub(started).Seconds())
	if ok {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
	r.lastRun.Set(float64(finished.Unix()))
}

// Flush writes the registry to the textfile path. It is a no-op without a path.
func (r *Recorder) Flush() error {
	if r.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
