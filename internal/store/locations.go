package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
)

func (db *DB) ListLocations(ctx context.Context) ([]airquality.Location, error) {
	query := `SELECT location_id, name, latitude, longitude FROM locations ORDER BY location_id`

	var locs []airquality.Location
	if err := db.SelectContext(ctx, &locs, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locs, nil
}

func (db *DB) LocationNames(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM locations ORDER BY name`

	names := []string{}
	if err := db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("failed to list location names: %w", err)
	}
	return names, nil
}

func (db *DB) LocationByName(ctx context.Context, name string) (airquality.Location, error) {
	query := db.Rebind(`SELECT location_id, name, latitude, longitude FROM locations WHERE name = ?`)

	var loc airquality.Location
	err := db.GetContext(ctx, &loc, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return airquality.Location{}, airquality.ErrLocationNotFound
	}
	if err != nil {
		return airquality.Location{}, fmt.Errorf("failed to look up location %q: %w", name, err)
	}
	return loc, nil
}

// SeedLocations inserts reference locations, leaving existing names untouched.
// It returns how many were new.
func (db *DB) SeedLocations(ctx context.Context, locs []airquality.Location) (int64, error) {
	query := `INSERT INTO locations (name, latitude, longitude)
		VALUES (:name, :latitude, :longitude)
		ON CONFLICT (name) DO NOTHING`

	var inserted int64
	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, loc := range locs {
			res, err := tx.NamedExecContext(ctx, query, loc)
			if err != nil {
				return fmt.Errorf("failed to seed location %q: %w", loc.Name, err)
			}
			n, err := res.RowsAffected()
			if err == nil {
				inserted += n
			}
		}
		return nil
	})
	return inserted, err
}
