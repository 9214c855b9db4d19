package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus metrics for the publication worker.
//
// Exposed metrics:
//   - worker_publish_cycle_runs_total: cycle runs by status (success/failure)
//   - worker_publish_cycle_duration_seconds: cycle duration histogram
//   - worker_articles_published_total: articles transitioned to published
//   - worker_articles_failed_total: per-article failures inside cycles
//   - worker_scheduler_ticks_skipped_total: triggers dropped by the
//     single-flight guard
//   - worker_publish_last_success_timestamp: Unix time of the last
//     successful cycle
type Metrics struct {
	CycleRunsTotal        *prometheus.CounterVec
	CycleDurationSeconds  prometheus.Histogram
	ArticlesPublished     prometheus.Counter
	ArticlesFailed        prometheus.Counter
	SchedulerTicksSkipped prometheus.Counter
	LastSuccessTimestamp  prometheus.Gauge
}

// NewMetrics creates and registers the worker metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		CycleRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_publish_cycle_runs_total",
			Help: "Total number of publish cycle runs by status (success/failure)",
		}, []string{"status"}),

		CycleDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_publish_cycle_duration_seconds",
			Help:    "Duration of publish cycle execution in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 30, 60, 300},
		}),

		ArticlesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_articles_published_total",
			Help: "Total number of articles transitioned to published",
		}),

		ArticlesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_articles_failed_total",
			Help: "Total number of per-article failures during publish cycles",
		}),

		SchedulerTicksSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_scheduler_ticks_skipped_total",
			Help: "Total number of scheduler triggers dropped by the single-flight guard",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_publish_last_success_timestamp",
			Help: "Unix timestamp of the last successful publish cycle",
		}),
	}
}

// RecordCycle records the outcome of one publish cycle.
func (m *Metrics) RecordCycle(status string, duration time.Duration, published, failed int) {
	m.CycleRunsTotal.WithLabelValues(status).Inc()
	m.CycleDurationSeconds.Observe(duration.Seconds())
	m.ArticlesPublished.Add(float64(published))
	m.ArticlesFailed.Add(float64(failed))
	if status == "success" {
		m.LastSuccessTimestamp.SetToCurrentTime()
	}
}

// RecordSkippedTick records one trigger dropped by the single-flight guard.
func (m *Metrics) RecordSkippedTick() {
	m.SchedulerTicksSkipped.Inc()
}
