package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
)

const hourlyRollupQuery = `INSERT INTO hourly_rollup (
		location_id, hour_bucket,
		avg_aqi, avg_pm2_5, avg_pm10, avg_co, avg_no2, avg_so2, avg_o3, avg_nh3
	)
	SELECT
		location_id, %s,
		AVG(aqi), AVG(pm2_5), AVG(pm10), AVG(co), AVG(no2), AVG(so2), AVG(o3), AVG(nh3)
	FROM raw_readings
	WHERE recorded_at >= ? AND recorded_at < ?
	GROUP BY location_id
	ON CONFLICT (location_id, hour_bucket) DO UPDATE SET
		avg_aqi = excluded.avg_aqi,
		avg_pm2_5 = excluded.avg_pm2_5,
		avg_pm10 = excluded.avg_pm10,
		avg_co = excluded.avg_co,
		avg_no2 = excluded.avg_no2,
		avg_so2 = excluded.avg_so2,
		avg_o3 = excluded.avg_o3,
		avg_nh3 = excluded.avg_nh3`

// RollupHourly aggregates every location's raw readings inside w into one row per
// location keyed by w.Start. Existing rows for that bucket are overwritten, so the
// call is idempotent. The window must span exactly one hour.
func (db *DB) RollupHourly(ctx context.Context, w airquality.Window) (int64, error) {
	query := db.Rebind(fmt.Sprintf(hourlyRollupQuery, db.dialect.bucketParam))
	start, end := w.Start.UTC(), w.End.UTC()

	var rows int64
	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, start, start, end)
		if err != nil {
			return fmt.Errorf("failed to roll up hour %s: %w", w, err)
		}
		rows, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// HourlyRollups returns the hourly rows whose bucket falls inside w, ordered by
// location and bucket.
func (db *DB) HourlyRollups(ctx context.Context, w airquality.Window) ([]airquality.HourlyRollup, error) {
	query := db.Rebind(`SELECT location_id, hour_bucket,
			avg_aqi, avg_pm2_5, avg_pm10, avg_co, avg_no2, avg_so2, avg_o3, avg_nh3
		FROM hourly_rollup
		WHERE hour_bucket >= ? AND hour_bucket < ?
		ORDER BY location_id, hour_bucket`)

	var rows []airquality.HourlyRollup
	if err := db.SelectContext(ctx, &rows, query, w.Start.UTC(), w.End.UTC()); err != nil {
		return nil, fmt.Errorf("failed to read hourly rollups for %s: %w", w, err)
	}
	return rows, nil
}

const dailyFeaturesUpsert = `INSERT INTO daily_features (
		location_id, feature_date, mean_aqi, std_aqi, min_aqi, max_aqi,
		mean_pm2_5, mean_pm10, mean_no2, mean_co
	) VALUES (
		:location_id, :feature_date, :mean_aqi, :std_aqi, :min_aqi, :max_aqi,
		:mean_pm2_5, :mean_pm10, :mean_no2, :mean_co
	)
	ON CONFLICT (location_id, feature_date) DO UPDATE SET
		mean_aqi = excluded.mean_aqi,
		std_aqi = excluded.std_aqi,
		min_aqi = excluded.min_aqi,
		max_aqi = excluded.max_aqi,
		mean_pm2_5 = excluded.mean_pm2_5,
		mean_pm10 = excluded.mean_pm10,
		mean_no2 = excluded.mean_no2,
		mean_co = excluded.mean_co`

// UpsertDailyFeatures writes all rows in one transaction: either every row lands
// or none does.
func (db *DB) UpsertDailyFeatures(ctx context.Context, rows []airquality.DailyFeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	return db.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, row := range rows {
			row.FeatureDate = row.FeatureDate.UTC()
			if _, err := tx.NamedExecContext(ctx, dailyFeaturesUpsert, row); err != nil {
				return fmt.Errorf("failed to upsert daily features for location %d on %s: %w",
					row.LocationID, row.FeatureDate.Format("2006-01-02"), err)
			}
		}
		return nil
	})
}

// DailyFeatures returns the feature rows stored for one day, ordered by location.
func (db *DB) DailyFeatures(ctx context.Context, w airquality.Window) ([]airquality.DailyFeatureRow, error) {
	query := db.Rebind(`SELECT location_id, feature_date, mean_aqi, std_aqi, min_aqi, max_aqi,
			mean_pm2_5, mean_pm10, mean_no2, mean_co
		FROM daily_features
		WHERE feature_date >= ? AND feature_date < ?
		ORDER BY location_id, feature_date`)

	var rows []airquality.DailyFeatureRow
	if err := db.SelectContext(ctx, &rows, query, w.Start.UTC(), w.End.UTC()); err != nil {
		return nil, fmt.Errorf("failed to read daily features for %s: %w", w, err)
	}
	return rows, nil
}
