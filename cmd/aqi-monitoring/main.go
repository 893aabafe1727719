package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/aqi-monitoring/internal/airquality"
	"github.com/i474232898/aqi-monitoring/internal/airquality/providers"
	httpapi "github.com/i474232898/aqi-monitoring/internal/api/http"
	"github.com/i474232898/aqi-monitoring/internal/config"
	"github.com/i474232898/aqi-monitoring/internal/logger"
	"github.com/i474232898/aqi-monitoring/internal/metrics"
	"github.com/i474232898/aqi-monitoring/internal/scheduler"
	"github.com/i474232898/aqi-monitoring/internal/store"
	"github.com/i474232898/aqi-monitoring/internal/tracing"
)

const serviceName = "aqi-monitoring"

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		logger.Default().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if !envLoaded {
		log.Info("no .env file found, using environment only")
	}

	if err := run(cfg, log); err != nil {
		log.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	db, err := store.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("store ready", "driver", cfg.DBDriver)

	if cfg.LocationsFile != "" {
		locs, err := config.LoadLocations(cfg.LocationsFile)
		if err != nil {
			return err
		}
		n, err := db.SeedLocations(ctx, locs)
		if err != nil {
			return err
		}
		log.Info("locations seeded", "file", cfg.LocationsFile, "new", n, "total", len(locs))
	}

	recorder := metrics.New()

	// Shared HTTP client for outbound provider calls; the per-request deadline
	// comes from the provider timeout.
	provider := providers.NewOpenWeatherProvider(providers.HTTPClientConfig{
		Client:  &http.Client{},
		Timeout: cfg.ProviderTimeout,
	}, cfg.ProviderURL, cfg.OpenWeatherAPIKey)

	jobLog := log.WithComponent("pipeline")
	sched := scheduler.New(log, recorder)
	for _, def := range []scheduler.Definition{
		{
			Job:        airquality.NewIngestionJob(db, provider, cfg.IngestWorkers, jobLog, airquality.WithMetrics(recorder)),
			Trigger:    scheduler.Trigger{Every: cfg.IngestInterval},
			RunOnStart: true,
		},
		{
			Job:        airquality.NewHourlyRollupJob(db, jobLog, airquality.WithMetrics(recorder)),
			Trigger:    scheduler.Trigger{Cron: cfg.HourlyRollupCron},
			RunOnStart: true,
		},
		{
			Job:        airquality.NewDailyRollupJob(db, jobLog, airquality.WithMetrics(recorder)),
			Trigger:    scheduler.Trigger{Cron: cfg.DailyRollupCron},
			RunOnStart: true,
		},
	} {
		if _, err := sched.Register(def); err != nil {
			return err
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, airquality.NewService(db), recorder.Handler())

	// The scheduler starts once the server is accepting connections.
	app.Hooks().OnListen(func(fiber.ListenData) error {
		log.Info("http server listening", "port", cfg.Port)
		sched.Start()
		return nil
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-serverErr:
		sched.Stop(cfg.ShutdownGrace)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	sched.Stop(cfg.ShutdownGrace)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("error during shutdown", "error", err)
	}
	return nil
}
