package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
)

// DefaultOpenWeatherURL is the OpenWeather air pollution endpoint.
const DefaultOpenWeatherURL = "http://api.openweathermap.org/data/2.5/air_pollution"

// OpenWeatherProvider implements the airquality.Provider interface for the
// OpenWeather air pollution API.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig

	mu       sync.Mutex
	circuits map[int64]*gobreaker.CircuitBreaker
}

// NewOpenWeatherProvider creates a provider. An empty baseURL selects the public endpoint.
func NewOpenWeatherProvider(cfg HTTPClientConfig, baseURL, apiKey string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   apiKey,
		baseURL:  baseURL,
		httpCfg:  cfg,
		circuits: make(map[int64]*gobreaker.CircuitBreaker),
	}
}

// circuit returns the location's breaker, so one failing location never blocks another.
func (p *OpenWeatherProvider) circuit(locationID int64) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()
	cb, ok := p.circuits[locationID]
	if !ok {
		cb = newCircuitBreaker(fmt.Sprintf("openweather-%d", locationID))
		p.circuits[locationID] = cb
	}
	return cb
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type airPollutionPayload struct {
	List []struct {
		Main struct {
			AQI *int `json:"aqi"`
		} `json:"main"`
		Components map[string]*float64 `json:"components"`
	} `json:"list"`
}

// Fetch issues one request for the location's coordinates. Every failure is
// returned as *airquality.ProviderError.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc airquality.Location) (airquality.Reading, error) {
	reading, err := p.fetch(ctx, loc)
	if err != nil {
		return airquality.Reading{}, &airquality.ProviderError{Provider: p.name, LocationID: loc.ID, Err: err}
	}
	return reading, nil
}

func (p *OpenWeatherProvider) fetch(ctx context.Context, loc airquality.Location) (airquality.Reading, error) {
	if p.apiKey == "" {
		return airquality.Reading{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
		values.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	var payload airPollutionPayload
	decode := func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(&payload); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return nil
	}

	if err := doRequest(ctx, p.httpCfg, p.circuit(loc.ID), buildRequest, decode); err != nil {
		return airquality.Reading{}, err
	}

	return parseAirPollution(payload)
}

func parseAirPollution(payload airPollutionPayload) (airquality.Reading, error) {
	if len(payload.List) == 0 {
		return airquality.Reading{}, fmt.Errorf("%w: empty list", errMalformed)
	}
	item := payload.List[0]
	if item.Main.AQI == nil {
		return airquality.Reading{}, fmt.Errorf("%w: missing main.aqi", errMalformed)
	}
	if item.Components == nil {
		return airquality.Reading{}, fmt.Errorf("%w: missing components", errMalformed)
	}

	reading := airquality.Reading{
		AQI:        *item.Main.AQI,
		Components: make(map[airquality.Pollutant]float64, len(airquality.Pollutants)),
	}
	for _, p := range airquality.Pollutants {
		if v := item.Components[string(p)]; v != nil {
			reading.Components[p] = *v
		}
	}
	return reading, nil
}
