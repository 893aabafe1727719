package airquality

import (
	"context"
	"time"
)

// Provider abstracts the external air-quality data source.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Reading, error)
}

// IngestStore is what the ingestion job needs from the data store.
type IngestStore interface {
	ListLocations(ctx context.Context) ([]Location, error)
	InsertReading(ctx context.Context, r RawReading) error
}

// HourlyStore aggregates raw readings of a window into hourly rollups,
// returning the number of rows written.
type HourlyStore interface {
	RollupHourly(ctx context.Context, w Window) (int64, error)
}

// DailyStore exposes hourly rollups and persists daily feature rows.
type DailyStore interface {
	HourlyRollups(ctx context.Context, w Window) ([]HourlyRollup, error)
	UpsertDailyFeatures(ctx context.Context, rows []DailyFeatureRow) error
}

// QueryStore backs the read-only query service.
type QueryStore interface {
	Ping(ctx context.Context) error
	LocationNames(ctx context.Context) ([]string, error)
	LocationByName(ctx context.Context, name string) (Location, error)
	LatestReading(ctx context.Context, locationID int64) (RawReading, error)
	ReadingsSince(ctx context.Context, locationID int64, since time.Time) ([]RawReading, error)
	DailyFeatures(ctx context.Context, w Window) ([]DailyFeatureRow, error)
}

// Metrics receives pipeline observations. A nil Metrics is valid.
type Metrics interface {
	LocationProcessed(outcome string)
	RollupRowsWritten(job string, rows int64)
}

// Outcomes reported to Metrics.LocationProcessed.
const (
	OutcomeSuccess       = "success"
	OutcomeProviderError = "provider_error"
	OutcomeStoreError    = "store_error"
)

type nopMetrics struct{}

func (nopMetrics) LocationProcessed(string)        {}
func (nopMetrics) RollupRowsWritten(string, int64) {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
