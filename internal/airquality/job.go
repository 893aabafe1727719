package airquality

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/i474232898/aqi-monitoring/internal/logger"
)

// Job names, also used as scheduler registration keys.
const (
	JobIngest       = "aqi_ingest"
	JobHourlyRollup = "aqi_hourly_rollup"
	JobDailyRollup  = "aqi_daily_features"
)

var (
	// ErrLocationNotFound is returned when no location matches a lookup.
	ErrLocationNotFound = errors.New("location not found")
	// ErrNoReadings is returned when a location has no persisted readings.
	ErrNoReadings = errors.New("no readings for location")
)

var tracer = otel.Tracer("github.com/i474232898/aqi-monitoring/internal/airquality")

// jobDeps carries what every job shares. Jobs keep no other state between runs.
type jobDeps struct {
	log     *logger.Logger
	metrics Metrics
	now     func() time.Time
}

// Option customizes a job.
type Option func(*jobDeps)

// WithClock replaces time.Now as the source of "now" for windowing and timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *jobDeps) { d.now = now }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(d *jobDeps) { d.metrics = m }
}

func newJobDeps(log *logger.Logger, opts []Option) jobDeps {
	if log == nil {
		log = logger.Default()
	}
	d := jobDeps{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&d)
	}
	d.metrics = metricsOrNop(d.metrics)
	return d
}
