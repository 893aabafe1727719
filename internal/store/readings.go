package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
)

const readingColumns = `location_id, aqi, pm2_5, pm10, co, no2, so2, o3, nh3, recorded_at`

// InsertReading appends one raw reading. The single statement is its own unit of
// durability, independent of any other location's write.
func (db *DB) InsertReading(ctx context.Context, r airquality.RawReading) error {
	query := `INSERT INTO raw_readings (` + readingColumns + `)
		VALUES (:location_id, :aqi, :pm2_5, :pm10, :co, :no2, :so2, :o3, :nh3, :recorded_at)`

	r.RecordedAt = r.RecordedAt.UTC()
	if _, err := db.NamedExecContext(ctx, query, r); err != nil {
		return fmt.Errorf("failed to insert reading for location %d: %w", r.LocationID, err)
	}
	return nil
}

func (db *DB) LatestReading(ctx context.Context, locationID int64) (airquality.RawReading, error) {
	query := db.Rebind(`SELECT ` + readingColumns + ` FROM raw_readings
		WHERE location_id = ?
		ORDER BY recorded_at DESC
		LIMIT 1`)

	var r airquality.RawReading
	err := db.GetContext(ctx, &r, query, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return airquality.RawReading{}, airquality.ErrNoReadings
	}
	if err != nil {
		return airquality.RawReading{}, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return r, nil
}

// ReadingsSince returns a location's readings at or after since, oldest first.
func (db *DB) ReadingsSince(ctx context.Context, locationID int64, since time.Time) ([]airquality.RawReading, error) {
	query := db.Rebind(`SELECT ` + readingColumns + ` FROM raw_readings
		WHERE location_id = ? AND recorded_at >= ?
		ORDER BY recorded_at ASC`)

	readings := []airquality.RawReading{}
	if err := db.SelectContext(ctx, &readings, query, locationID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}
