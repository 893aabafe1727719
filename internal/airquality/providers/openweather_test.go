package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
	"github.com/i474232898/aqi-monitoring/internal/logger"
)

var delhi = airquality.Location{ID: 3, Name: "Delhi", Latitude: 28.61, Longitude: 77.2}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenWeatherProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeatherProvider(HTTPClientConfig{Client: srv.Client(), Timeout: time.Second}, srv.URL, "secret")
}

func TestOpenWeatherFetch_Success(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "28.61", r.URL.Query().Get("lat"))
		assert.Equal(t, "77.2", r.URL.Query().Get("lon"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"coord":{"lon":77.2,"lat":28.61},"list":[{"main":{"aqi":4},
			"components":{"co":1001.36,"no":0.5,"no2":41.13,"o3":12.5,"so2":9.3,"pm2_5":88.1,"pm10":120.4},
			"dt":1760695200}]}`))
	})

	reading, err := p.Fetch(context.Background(), delhi)
	require.NoError(t, err)
	assert.Equal(t, 4, reading.AQI)
	assert.InDelta(t, 88.1, reading.Components[airquality.PM25], 1e-9)
	assert.InDelta(t, 41.13, reading.Components[airquality.NO2], 1e-9)
	assert.Len(t, reading.Components, 6, "nh3 absent, unknown 'no' ignored")
	_, ok := reading.Components[airquality.NH3]
	assert.False(t, ok)
}

func TestOpenWeatherFetch_NullComponentIsAbsent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"list":[{"main":{"aqi":1},"components":{"pm10":null,"co":200}}]}`))
	})

	reading, err := p.Fetch(context.Background(), delhi)
	require.NoError(t, err)
	assert.Equal(t, map[airquality.Pollutant]float64{airquality.CO: 200}, reading.Components)
}

func TestOpenWeatherFetch_Failures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusBadGateway, `{}`, errServerError},
		{"unauthorized", http.StatusUnauthorized, `{"cod":401}`, errClientError},
		{"redirect", http.StatusMultipleChoices, `{}`, errUnexpected},
		{"rate limited", http.StatusTooManyRequests, `{}`, errRateLimited},
		{"missing aqi", http.StatusOK, `{"list":[{"main":{},"components":{"co":1}}]}`, errMalformed},
		{"empty list", http.StatusOK, `{"list":[]}`, errMalformed},
		{"missing components", http.StatusOK, `{"list":[{"main":{"aqi":2}}]}`, errMalformed},
		{"not json", http.StatusOK, `<html>`, errMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := p.Fetch(context.Background(), delhi)
			require.Error(t, err)

			var perr *airquality.ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, int64(3), perr.LocationID)
			assert.Equal(t, "openweathermap", perr.Provider)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestOpenWeatherFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewOpenWeatherProvider(HTTPClientConfig{Client: srv.Client(), Timeout: 50 * time.Millisecond}, srv.URL, "secret")

	_, err := p.Fetch(context.Background(), delhi)
	var perr *airquality.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenWeatherFetch_NoRetry(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := p.Fetch(context.Background(), delhi)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenWeatherFetch_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, err := p.Fetch(context.Background(), delhi)
		require.ErrorIs(t, err, errServerError)
	}

	_, err := p.Fetch(context.Background(), delhi)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, 5, calls)
}

func TestOpenWeatherFetch_CircuitIsPerLocation(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "6" {
			_, _ = w.Write([]byte(`{"list":[{"main":{"aqi":2},"components":{"pm2_5":8}}]}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	for id := int64(1); id <= 5; id++ {
		loc := airquality.Location{ID: id, Latitude: float64(id), Longitude: 1}
		for i := 0; i < 5; i++ {
			_, err := p.Fetch(context.Background(), loc)
			require.ErrorIs(t, err, errServerError)
		}
		_, err := p.Fetch(context.Background(), loc)
		require.ErrorIs(t, err, errCircuitOpen, "location %d", id)
	}

	reading, err := p.Fetch(context.Background(), airquality.Location{ID: 6, Latitude: 6, Longitude: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, reading.AQI)
}

func TestOpenWeatherFetch_ClientErrorsDoNotTripCircuit(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	for i := 0; i < 8; i++ {
		_, err := p.Fetch(context.Background(), delhi)
		require.ErrorIs(t, err, errClientError)
	}
	assert.Equal(t, 8, calls)
}

func TestIngest_BadLocationsDoNotStarveHealthyOne(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lat") == "6" {
			_, _ = w.Write([]byte(`{"list":[{"main":{"aqi":3},"components":{"co":210}}]}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	var locs []airquality.Location
	for id := int64(1); id <= 6; id++ {
		locs = append(locs, airquality.Location{ID: id, Name: "loc-" + strconv.FormatInt(id, 10), Latitude: float64(id), Longitude: 1})
	}
	st := &memoryIngestStore{locations: locs}
	job := airquality.NewIngestionJob(st, p, 1, logger.Discard())

	// Several ticks, so a shared breaker would have had every chance to open.
	for tick := 0; tick < 3; tick++ {
		report, err := job.Ingest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Succeeded())
		assert.Equal(t, 5, report.Failed())
	}

	require.Len(t, st.written, 3)
	for _, r := range st.written {
		assert.Equal(t, int64(6), r.LocationID)
		assert.Equal(t, 3, r.AQI)
	}
}

type memoryIngestStore struct {
	locations []airquality.Location
	written   []airquality.RawReading
}

func (s *memoryIngestStore) ListLocations(ctx context.Context) ([]airquality.Location, error) {
	return s.locations, nil
}

func (s *memoryIngestStore) InsertReading(ctx context.Context, r airquality.RawReading) error {
	s.written = append(s.written, r)
	return nil
}

func TestOpenWeatherFetch_MissingAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(HTTPClientConfig{Client: http.DefaultClient}, "http://127.0.0.1:0", "")

	_, err := p.Fetch(context.Background(), delhi)
	var perr *airquality.ProviderError
	assert.ErrorAs(t, err, &perr)
}
