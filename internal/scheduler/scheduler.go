package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/i474232898/aqi-monitoring/internal/logger"
)

// Job is a unit of scheduled work. Run must be safe to repeat: a skipped or
// abandoned run is recovered by the next one.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Trigger says when a job fires. Exactly one of Every and Cron is set.
type Trigger struct {
	Every time.Duration
	Cron  string
}

func (t Trigger) validate() error {
	switch {
	case t.Every > 0 && t.Cron != "":
		return errors.New("trigger has both interval and cron expression")
	case t.Every <= 0 && t.Cron == "":
		return errors.New("trigger has neither interval nor cron expression")
	}
	return nil
}

func (t Trigger) String() string {
	if t.Cron != "" {
		return "cron " + t.Cron
	}
	return "every " + t.Every.String()
}

// Definition describes one registered job.
// RunOnStart executes the job once when the scheduler starts; that single run
// stands in for every firing missed while the process was down.
type Definition struct {
	Job        Job
	Trigger    Trigger
	RunOnStart bool
}

// Observer receives run outcomes. metrics.Recorder satisfies it.
type Observer interface {
	JobSkipped(job string)
	JobFinished(job string, d time.Duration, err error)
}

type entry struct {
	def     Definition
	running atomic.Bool
}

// Scheduler runs named jobs on interval or cron triggers in UTC, at most one
// run per job at a time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	log       *logger.Logger
	observer  Observer

	mu      sync.Mutex
	entries map[string]*entry
	started bool

	runs   sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. observer may be nil.
func New(log *logger.Logger, observer Observer) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		log:       log.WithComponent("scheduler"),
		observer:  observer,
		entries:   make(map[string]*entry),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Register adds a job keyed by its name. Registering a name that already exists
// is a no-op and reports false.
func (s *Scheduler) Register(def Definition) (bool, error) {
	if def.Job == nil {
		return false, errors.New("job is nil")
	}
	name := def.Job.Name()
	if err := def.Trigger.validate(); err != nil {
		return false, fmt.Errorf("job %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.scheduler.FindJobsByTag(name); err == nil && len(existing) > 0 {
		s.log.Debug("job already registered", "job", name)
		return false, nil
	}

	e := &entry{def: def}
	var err error
	if def.Trigger.Cron != "" {
		_, err = s.scheduler.Cron(def.Trigger.Cron).Tag(name).Do(s.tick, e)
	} else {
		_, err = s.scheduler.Every(def.Trigger.Every).WaitForSchedule().Tag(name).Do(s.tick, e)
	}
	if err != nil {
		return false, fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.entries[name] = e
	s.log.Info("job registered", "job", name, "trigger", def.Trigger.String(), "run_on_start", def.RunOnStart)
	if s.started && def.RunOnStart {
		s.catchUp(e)
	}
	return true, nil
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// NextRun returns when the named job fires next.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	jobs, err := s.scheduler.FindJobsByTag(name)
	if err != nil || len(jobs) == 0 {
		return time.Time{}, false
	}
	return jobs[0].NextRun(), true
}

// Start begins firing triggers and launches the catch-up run of every
// RunOnStart job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.scheduler.StartAsync()
	for _, e := range s.entries {
		if e.def.RunOnStart {
			s.catchUp(e)
		}
	}
	s.log.Info("scheduler started", "jobs", len(s.entries))
}

// catchUp counts the run before its goroutine starts so a Stop racing with
// Start still waits for it.
func (s *Scheduler) catchUp(e *entry) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		s.fire(e)
	}()
}

// tick is the function gocron invokes on each trigger.
func (s *Scheduler) tick(e *entry) {
	s.runs.Add(1)
	defer s.runs.Done()
	s.fire(e)
}

// Stop halts the triggers and waits up to grace for in-flight runs. Runs still
// executing after grace are abandoned: their context is cancelled and Stop returns.
func (s *Scheduler) Stop(grace time.Duration) {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()
	if !started {
		return
	}

	done := make(chan struct{})
	go func() {
		s.scheduler.Stop()
		s.runs.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		s.log.Info("scheduler stopped")
	case <-timer.C:
		s.log.Warn("scheduler stopped with runs in flight", "grace", grace)
	}
	s.cancel()
}

// fire runs one tick of a job unless a previous run is still active, in which
// case the tick is dropped.
func (s *Scheduler) fire(e *entry) {
	name := e.def.Job.Name()
	if !e.running.CompareAndSwap(false, true) {
		s.log.Warn("skipping run, previous run still active", "job", name)
		if s.observer != nil {
			s.observer.JobSkipped(name)
		}
		return
	}
	defer e.running.Store(false)

	runID := uuid.NewString()
	log := s.log.WithJob(name, runID)
	log.Info("job run started")

	start := time.Now()
	err := s.run(e.def.Job)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.JobFinished(name, elapsed, err)
	}
	if err != nil {
		log.Error("job run failed", "duration", elapsed, "error", err)
		return
	}
	log.Info("job run completed", "duration", elapsed)
}

func (s *Scheduler) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(s.ctx)
}
