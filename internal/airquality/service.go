package airquality

import (
	"context"
	"errors"
	"time"
)

// CurrentAQI is the latest reading for a location, with its category.
type CurrentAQI struct {
	City       string                 `json:"city"`
	AQI        int                    `json:"aqi"`
	Category   Category               `json:"category"`
	Pollutants map[Pollutant]*float64 `json:"pollutants"`
	RecordedAt time.Time              `json:"recorded_at"`
}

// HistoryPoint is one entry of a location's recent index history.
type HistoryPoint struct {
	AQI        int       `json:"aqi"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Health describes backend and store availability.
type Health struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	Database  string    `json:"database"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Service answers read-only queries over the persisted readings.
type Service struct {
	store QueryStore
	now   func() time.Time
}

// NewService creates a new Service.
func NewService(store QueryStore) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Cities lists the names of every monitored location.
func (s *Service) Cities(ctx context.Context) ([]string, error) {
	return s.store.LocationNames(ctx)
}

// Current returns the most recent reading for the named location.
func (s *Service) Current(ctx context.Context, city string) (CurrentAQI, error) {
	loc, err := s.store.LocationByName(ctx, city)
	if err != nil {
		return CurrentAQI{}, err
	}

	r, err := s.store.LatestReading(ctx, loc.ID)
	if err != nil {
		return CurrentAQI{}, err
	}

	return CurrentAQI{
		City:       loc.Name,
		AQI:        r.AQI,
		Category:   Classify(r.AQI),
		Pollutants: r.PollutantMap(),
		RecordedAt: r.RecordedAt,
	}, nil
}

// Last24Hours returns the index history of the named location over the past day,
// oldest first. An unknown location yields an empty history.
func (s *Service) Last24Hours(ctx context.Context, city string) ([]HistoryPoint, error) {
	points := []HistoryPoint{}

	loc, err := s.store.LocationByName(ctx, city)
	if errors.Is(err, ErrLocationNotFound) {
		return points, nil
	}
	if err != nil {
		return nil, err
	}

	readings, err := s.store.ReadingsSince(ctx, loc.ID, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	for _, r := range readings {
		points = append(points, HistoryPoint{AQI: r.AQI, RecordedAt: r.RecordedAt})
	}
	return points, nil
}

// DailyFeatures returns the feature rows of every location for one UTC day.
func (s *Service) DailyFeatures(ctx context.Context, day time.Time) ([]DailyFeatureRow, error) {
	d := day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := s.store.DailyFeatures(ctx, Window{Start: start, End: start.AddDate(0, 0, 1)})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []DailyFeatureRow{}
	}
	return rows, nil
}

// Health probes the store with a lightweight round trip.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{
		Status:    "ok",
		Backend:   "online",
		Database:  "offline",
		Message:   "AQI backend is operational",
		Timestamp: s.now(),
	}
	if err := s.store.Ping(ctx); err != nil {
		h.Status = "error"
		h.Database = "unreachable"
		return h
	}
	h.Database = "online"
	return h
}
