package airquality

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/i474232898/aqi-monitoring/internal/logger"
)

// DailyRollupJob turns the hourly rollups of the last completed UTC day into one
// feature row per location. It never reads raw readings.
type DailyRollupJob struct {
	jobDeps
	store DailyStore
}

func NewDailyRollupJob(store DailyStore, log *logger.Logger, opts ...Option) *DailyRollupJob {
	return &DailyRollupJob{jobDeps: newJobDeps(log, opts), store: store}
}

func (j *DailyRollupJob) Name() string { return JobDailyRollup }

// Run rolls up yesterday (UTC).
func (j *DailyRollupJob) Run(ctx context.Context) error {
	_, err := j.Rollup(ctx, PreviousDay(j.now()))
	return err
}

// Rollup computes and upserts the feature rows of one day window.
func (j *DailyRollupJob) Rollup(ctx context.Context, w Window) (int, error) {
	ctx, span := tracer.Start(ctx, "airquality.rollup.daily")
	defer span.End()
	span.SetAttributes(attribute.String("window", w.String()))

	log := j.log.WithWindow(w.Start, w.End)

	hourly, err := j.store.HourlyRollups(ctx, w)
	if err != nil {
		err = &StoreConnectivityError{Op: "read hourly rollups", Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		log.Error("daily rollup aborted", "error", err)
		return 0, err
	}

	rows := BuildDailyFeatures(hourly)
	if len(rows) == 0 {
		log.Info("daily rollup found no hourly data")
		return 0, nil
	}

	if err := j.store.UpsertDailyFeatures(ctx, rows); err != nil {
		err = &StoreWriteError{Op: "daily features upsert", Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		log.Error("daily rollup failed", "error", err)
		return 0, err
	}

	j.metrics.RollupRowsWritten(JobDailyRollup, int64(len(rows)))
	log.Info("daily rollup completed", "rows", len(rows), "hourly_rows", len(hourly))
	return len(rows), nil
}

// BuildDailyFeatures groups hourly rollups by (location, UTC day) and summarizes
// each group. The result is ordered by location then day.
func BuildDailyFeatures(hourly []HourlyRollup) []DailyFeatureRow {
	type key struct {
		locationID int64
		day        time.Time
	}

	groups := make(map[key][]HourlyRollup)
	for _, h := range hourly {
		b := h.HourBucket.UTC()
		k := key{locationID: h.LocationID, day: time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)}
		groups[k] = append(groups[k], h)
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].locationID != keys[b].locationID {
			return keys[a].locationID < keys[b].locationID
		}
		return keys[a].day.Before(keys[b].day)
	})

	rows := make([]DailyFeatureRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, summarizeDay(k.locationID, k.day, groups[k]))
	}
	return rows
}

func summarizeDay(locationID int64, day time.Time, hours []HourlyRollup) DailyFeatureRow {
	aqi := make([]float64, len(hours))
	var pm25, pm10, no2, co []*float64
	for i, h := range hours {
		aqi[i] = h.AvgAQI
		pm25 = append(pm25, h.AvgPM25)
		pm10 = append(pm10, h.AvgPM10)
		no2 = append(no2, h.AvgNO2)
		co = append(co, h.AvgCO)
	}

	s := summarize(aqi)
	return DailyFeatureRow{
		LocationID:  locationID,
		FeatureDate: day,
		MeanAQI:     s.Mean,
		StdAQI:      s.Std,
		MinAQI:      s.Min,
		MaxAQI:      s.Max,
		MeanPM25:    meanOf(pm25),
		MeanPM10:    meanOf(pm10),
		MeanNO2:     meanOf(no2),
		MeanCO:      meanOf(co),
	}
}
