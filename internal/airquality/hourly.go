package airquality

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/i474232898/aqi-monitoring/internal/logger"
)

// HourlyRollupJob averages the raw readings of the last completed hour into one
// row per location. The store upserts, so reruns over the same window converge
// on the same rows.
type HourlyRollupJob struct {
	jobDeps
	store HourlyStore
}

func NewHourlyRollupJob(store HourlyStore, log *logger.Logger, opts ...Option) *HourlyRollupJob {
	return &HourlyRollupJob{jobDeps: newJobDeps(log, opts), store: store}
}

func (j *HourlyRollupJob) Name() string { return JobHourlyRollup }

// Run rolls up the hour preceding the current one.
func (j *HourlyRollupJob) Run(ctx context.Context) error {
	_, err := j.Rollup(ctx, PreviousHour(j.now()))
	return err
}

// Rollup aggregates one window. Locations without readings in the window get no row.
func (j *HourlyRollupJob) Rollup(ctx context.Context, w Window) (int64, error) {
	ctx, span := tracer.Start(ctx, "airquality.rollup.hourly")
	defer span.End()
	span.SetAttributes(attribute.String("window", w.String()))

	log := j.log.WithWindow(w.Start, w.End)

	n, err := j.store.RollupHourly(ctx, w)
	if err != nil {
		err = &StoreWriteError{Op: "hourly rollup", Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "rollup failed")
		log.Error("hourly rollup failed", "error", err)
		return 0, err
	}

	j.metrics.RollupRowsWritten(JobHourlyRollup, n)
	log.Info("hourly rollup completed", "rows", n)
	return n, nil
}
