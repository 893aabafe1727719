package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/robfig/cron/v3"

	"github.com/i474232898/aqi-monitoring/internal/airquality/providers"
	"github.com/i474232898/aqi-monitoring/internal/store"
)

type AppConfig struct {
	OpenWeatherAPIKey string        `mapstructure:"OPENWEATHER_API_KEY" validate:"required"`
	ProviderURL       string        `mapstructure:"PROVIDER_URL" validate:"required,url"`
	ProviderTimeout   time.Duration `mapstructure:"PROVIDER_TIMEOUT" validate:"gt=0"`

	DBDriver   string `mapstructure:"DB_DRIVER" validate:"oneof=postgres sqlite"`
	DBHost     string `mapstructure:"DB_HOST" validate:"required_if=DBDriver postgres"`
	DBPort     string `mapstructure:"DB_PORT" validate:"omitempty,numeric"`
	DBUser     string `mapstructure:"DB_USER" validate:"required_if=DBDriver postgres"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME" validate:"required_if=DBDriver postgres"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	DBPath     string `mapstructure:"DB_PATH" validate:"required_if=DBDriver sqlite"`

	// IngestInterval controls how often every location is polled.
	IngestInterval   time.Duration `mapstructure:"INGEST_INTERVAL" validate:"gte=1m"`
	IngestWorkers    int           `mapstructure:"INGEST_WORKERS" validate:"gte=1,lte=64"`
	HourlyRollupCron string        `mapstructure:"HOURLY_ROLLUP_CRON" validate:"required,cron"`
	DailyRollupCron  string        `mapstructure:"DAILY_ROLLUP_CRON" validate:"required,cron"`

	// LocationsFile optionally seeds reference locations at startup.
	LocationsFile string `mapstructure:"LOCATIONS_FILE"`

	Port          string        `mapstructure:"PORT" validate:"required,numeric"`
	LogLevel      string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat     string        `mapstructure:"LOG_FORMAT" validate:"oneof=text json"`
	OTLPEndpoint  string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ShutdownGrace time.Duration `mapstructure:"SHUTDOWN_GRACE" validate:"gte=0"`
}

var defaults = map[string]string{
	"PROVIDER_URL":       providers.DefaultOpenWeatherURL,
	"PROVIDER_TIMEOUT":   "10s",
	"DB_DRIVER":          store.DriverPostgres,
	"DB_PORT":            "5432",
	"DB_SSLMODE":         "require",
	"INGEST_INTERVAL":    "10m",
	"INGEST_WORKERS":     "1",
	"HOURLY_ROLLUP_CRON": "5 * * * *",
	"DAILY_ROLLUP_CRON":  "10 0 * * *",
	"PORT":               "8080",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "text",
	"SHUTDOWN_GRACE":     "5s",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

// Load reads configuration from a .env file, if present, and the environment.
// It reports whether a .env file was loaded.
func Load() (*AppConfig, bool, error) {
	loaded := godotenv.Load() == nil
	cfg, err := FromEnv(os.Environ())
	return cfg, loaded, err
}

// FromEnv builds a validated AppConfig from KEY=VALUE pairs, filling defaults
// for keys that are absent or empty.
func FromEnv(environ []string) (*AppConfig, error) {
	values := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" {
			continue
		}
		values[k] = v
	}

	cfg := &AppConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, fmt.Errorf("invalid configuration: %s", describe(verrs))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DSN returns the data source name for the configured driver.
func (c *AppConfig) DSN() string {
	if c.DBDriver == store.DriverSQLite {
		return c.DBPath
	}
	return store.PostgresDSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func describe(verrs validator.ValidationErrors) string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", envKey(fe.StructField()), fe.Tag()))
	}
	return strings.Join(fields, "; ")
}

// envKey maps a struct field back to its environment key for error messages.
func envKey(field string) string {
	if f, ok := reflect.TypeOf(AppConfig{}).FieldByName(field); ok {
		return f.Tag.Get("mapstructure")
	}
	return field
}
