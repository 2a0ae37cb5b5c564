// Package metrics exposes prometheus collectors for classification, ingest
// and readiness recompute runs.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Veraticus/dossier/internal/model"
)

// Recorder owns a dedicated registry so batch runs can dump it to a
// node_exporter textfile. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	ingested        *prometheus.CounterVec
	recompute       prometheus.Histogram
	percentage      *prometheus.GaugeVec
	ready           *prometheus.GaugeVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dossier_classifications_total",
				Help: "Total number of rule matcher classifications",
			},
			[]string{"category", "fallback"},
		),
		ingested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dossier_ingested_items_total",
				Help: "Total number of items persisted by the ingest pipeline",
			},
			[]string{"type"},
		),
		recompute: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dossier_readiness_recompute_seconds",
				Help:    "Duration of full readiness recomputes in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),
		percentage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dossier_readiness_percentage",
				Help: "Readiness percentage per award from the last recompute",
			},
			[]string{"award"},
		),
		ready: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dossier_award_ready",
				Help: "1 when the award met its threshold in the last recompute",
			},
			[]string{"award"},
		),
	}

	r.registry.MustRegister(r.classifications, r.ingested, r.recompute, r.percentage, r.ready)
	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveClassification counts one rule matcher result.
func (r *Recorder) ObserveClassification(result model.ClassificationResult) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(result.Category, strconv.FormatBool(result.Fallback)).Inc()
}

// ObserveIngest counts one persisted item.
func (r *Recorder) ObserveIngest(typ model.ItemType) {
	if r == nil {
		return
	}
	r.ingested.WithLabelValues(string(typ)).Inc()
}

// ObserveRecompute records a recompute duration and the resulting per-award
// gauges.
func (r *Recorder) ObserveRecompute(d time.Duration, records map[string]model.AwardReadiness) {
	if r == nil {
		return
	}
	r.recompute.Observe(d.Seconds())
	r.ObserveReadiness(records)
}

// ObserveReadiness sets the per-award gauges without timing a recompute.
func (r *Recorder) ObserveReadiness(records map[string]model.AwardReadiness) {
	if r == nil {
		return
	}
	for key, rec := range records {
		r.percentage.WithLabelValues(key).Set(rec.ReadinessPercentage)
		ready := 0.0
		if rec.IsReady {
			ready = 1
		}
		r.ready.WithLabelValues(key).Set(ready)
	}
}

// WriteTextfile writes the registry in the text exposition format. An empty
// path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
