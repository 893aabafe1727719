package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Job run statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Recorder is a Prometheus-backed sink for pipeline and scheduler observations.
// It registers on its own registry so tests can create as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	ingestLocs  *prometheus.CounterVec
	rollupRows  *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aqi_job_runs_total",
			Help: "Scheduled job runs by job and status.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aqi_job_duration_seconds",
			Help:    "Duration of scheduled job runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		ingestLocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aqi_ingest_locations_total",
			Help: "Locations processed by ingestion, by outcome.",
		}, []string{"outcome"}),
		rollupRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aqi_rollup_rows_total",
			Help: "Rows written by rollup jobs.",
		}, []string{"job"}),
	}

	registry.MustRegister(r.jobRuns, r.jobDuration, r.ingestLocs, r.rollupRows)
	return r
}

// Registry returns the underlying Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) JobSkipped(job string) {
	r.jobRuns.WithLabelValues(job, StatusSkipped).Inc()
}

// JobFinished records a completed run. A non-nil err counts as a failure.
func (r *Recorder) JobFinished(job string, d time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	r.jobRuns.WithLabelValues(job, status).Inc()
	r.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (r *Recorder) LocationProcessed(outcome string) {
	r.ingestLocs.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RollupRowsWritten(job string, rows int64) {
	r.rollupRows.WithLabelValues(job).Add(float64(rows))
}
