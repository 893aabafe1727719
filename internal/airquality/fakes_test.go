package airquality

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type fakeProvider struct {
	readings map[int64]Reading
	fail     map[int64]error
	calls    sync.Map
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(ctx context.Context, loc Location) (Reading, error) {
	p.calls.Store(loc.ID, true)
	if err, ok := p.fail[loc.ID]; ok {
		return Reading{}, err
	}
	return p.readings[loc.ID], nil
}

type fakeIngestStore struct {
	mu        sync.Mutex
	locations []Location
	listErr   error
	writeErr  map[int64]error
	written   []RawReading
}

func (s *fakeIngestStore) ListLocations(ctx context.Context) ([]Location, error) {
	return s.locations, s.listErr
}

func (s *fakeIngestStore) InsertReading(ctx context.Context, r RawReading) error {
	if err, ok := s.writeErr[r.LocationID]; ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, r)
	return nil
}

func (s *fakeIngestStore) byLocation() map[int64][]RawReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64][]RawReading)
	for _, r := range s.written {
		out[r.LocationID] = append(out[r.LocationID], r)
	}
	return out
}

// fakeRollupStore keeps hourly and daily rows keyed like the UNIQUE constraints.
type fakeRollupStore struct {
	raw     []RawReading
	hourly  map[string]HourlyRollup
	daily   map[string]DailyFeatureRow
	windows []Window
	err     error
}

func newFakeRollupStore() *fakeRollupStore {
	return &fakeRollupStore{hourly: map[string]HourlyRollup{}, daily: map[string]DailyFeatureRow{}}
}

func rowKey(id int64, t time.Time) string {
	return fmt.Sprintf("%d/%s", id, t.UTC().Format(time.RFC3339))
}

func (s *fakeRollupStore) RollupHourly(ctx context.Context, w Window) (int64, error) {
	s.windows = append(s.windows, w)
	if s.err != nil {
		return 0, s.err
	}
	sums := map[int64][]float64{}
	for _, r := range s.raw {
		if w.Contains(r.RecordedAt) {
			sums[r.LocationID] = append(sums[r.LocationID], float64(r.AQI))
		}
	}
	for id, vals := range sums {
		s.hourly[rowKey(id, w.Start)] = HourlyRollup{LocationID: id, HourBucket: w.Start, AvgAQI: summarize(vals).Mean}
	}
	return int64(len(sums)), nil
}

func (s *fakeRollupStore) HourlyRollups(ctx context.Context, w Window) ([]HourlyRollup, error) {
	s.windows = append(s.windows, w)
	if s.err != nil {
		return nil, s.err
	}
	var out []HourlyRollup
	for _, h := range s.hourly {
		if w.Contains(h.HourBucket) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeRollupStore) UpsertDailyFeatures(ctx context.Context, rows []DailyFeatureRow) error {
	for _, r := range rows {
		s.daily[rowKey(r.LocationID, r.FeatureDate)] = r
	}
	return nil
}

var errBoom = errors.New("boom")

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	rows     map[string]int64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{outcomes: map[string]int{}, rows: map[string]int64{}}
}

func (m *countingMetrics) LocationProcessed(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *countingMetrics) RollupRowsWritten(job string, rows int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[job] += rows
}
