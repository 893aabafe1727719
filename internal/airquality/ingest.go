package airquality

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/aqi-monitoring/internal/logger"
)

// LocationResult is the outcome of one location's fetch-and-persist unit.
type LocationResult struct {
	Location Location
	Outcome  string
	Reading  *RawReading
	Err      error
}

// IngestReport collects the per-location results of one ingestion tick.
type IngestReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []LocationResult
}

// Succeeded counts locations whose reading was persisted.
func (r IngestReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts locations that were skipped this tick.
func (r IngestReport) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// Err folds every per-location failure into one error, or nil.
func (r IngestReport) Err() error {
	var merr *multierror.Error
	for _, res := range r.Results {
		if res.Err != nil {
			merr = multierror.Append(merr, res.Err)
		}
	}
	return merr.ErrorOrNil()
}

// IngestionJob fetches one reading per known location and appends it to the store.
// Each location is an independent unit: a provider or write failure for one location
// is logged and skipped and never affects the others.
type IngestionJob struct {
	jobDeps
	store    IngestStore
	provider Provider
	workers  int
}

// NewIngestionJob creates an IngestionJob. workers bounds how many locations are
// processed at once; values below 1 mean sequential processing.
func NewIngestionJob(store IngestStore, provider Provider, workers int, log *logger.Logger, opts ...Option) *IngestionJob {
	if workers < 1 {
		workers = 1
	}
	return &IngestionJob{
		jobDeps:  newJobDeps(log, opts),
		store:    store,
		provider: provider,
		workers:  workers,
	}
}

func (j *IngestionJob) Name() string { return JobIngest }

// Run performs one ingestion tick. It only fails when the location list cannot be read.
func (j *IngestionJob) Run(ctx context.Context) error {
	_, err := j.Ingest(ctx)
	return err
}

// Ingest performs one ingestion tick and returns the per-location results.
func (j *IngestionJob) Ingest(ctx context.Context) (IngestReport, error) {
	ctx, span := tracer.Start(ctx, "airquality.ingest")
	defer span.End()

	report := IngestReport{StartedAt: j.now()}

	locs, err := j.store.ListLocations(ctx)
	if err != nil {
		err = &StoreConnectivityError{Op: "list locations", Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "location list unavailable")
		j.log.Error("ingestion aborted", "error", err)
		return report, err
	}

	report.Results = make([]LocationResult, len(locs))

	g := new(errgroup.Group)
	g.SetLimit(j.workers)
	for i, loc := range locs {
		i, loc := i, loc
		g.Go(func() error {
			report.Results[i] = j.ingestLocation(ctx, loc)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = j.now()
	span.SetAttributes(
		attribute.Int("locations", len(locs)),
		attribute.Int("succeeded", report.Succeeded()),
	)

	if err := report.Err(); err != nil {
		j.log.Warn("ingestion completed with failures",
			"locations", len(locs),
			"succeeded", report.Succeeded(),
			"failed", report.Failed(),
			"error", err)
	} else {
		j.log.Info("ingestion completed", "locations", len(locs), "succeeded", report.Succeeded())
	}
	return report, nil
}

func (j *IngestionJob) ingestLocation(ctx context.Context, loc Location) LocationResult {
	ctx, span := tracer.Start(ctx, "airquality.ingest.location", trace.WithAttributes(
		attribute.Int64("location.id", loc.ID),
		attribute.String("location.name", loc.Name),
	))
	defer span.End()

	log := j.log.WithLocation(loc.ID, loc.Name)
	res := LocationResult{Location: loc}

	reading, err := j.provider.Fetch(ctx, loc)
	if err != nil {
		var perr *ProviderError
		if !errors.As(err, &perr) {
			err = &ProviderError{Provider: j.provider.Name(), LocationID: loc.ID, Err: err}
		}
		res.Outcome, res.Err = OutcomeProviderError, err
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		j.metrics.LocationProcessed(res.Outcome)
		log.Error("air quality fetch failed", "error", err)
		return res
	}

	raw := NewRawReading(loc.ID, reading, j.now())
	if err := j.store.InsertReading(ctx, raw); err != nil {
		res.Outcome = OutcomeStoreError
		res.Err = &StoreWriteError{Op: "insert reading", LocationID: loc.ID, Err: err}
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "insert failed")
		j.metrics.LocationProcessed(res.Outcome)
		log.Error("storing reading failed", "error", res.Err)
		return res
	}

	res.Outcome, res.Reading = OutcomeSuccess, &raw
	j.metrics.LocationProcessed(res.Outcome)
	log.Debug("reading stored", "aqi", raw.AQI)
	return res
}
