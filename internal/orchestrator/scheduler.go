package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs every five minutes, on the minute
const DefaultSchedule = "0 */5 * * * *"

var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule parses a six-field cron expression (seconds first) or a descriptor like @hourly
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Scheduler triggers a job on a cron schedule. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	spec       string
	job        func(ctx context.Context)
	logger     *slog.Logger
	runOnStart bool
}

// NewScheduler validates spec and creates a Scheduler
func NewScheduler(spec string, job func(ctx context.Context), logger *slog.Logger) (*Scheduler, error) {
	if _, err := ParseSchedule(spec); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		spec:   spec,
		job:    job,
		logger: logger.With(slog.String("component", "scheduler")),
	}, nil
}

// RunOnStart makes Run trigger the job once immediately
func (s *Scheduler) RunOnStart(enabled bool) *Scheduler {
	s.runOnStart = enabled
	return s
}

// Run blocks until ctx is done, then waits for the in-flight job to return
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{s.logger}
	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	entryID, err := c.AddFunc(s.spec, func() { s.job(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	c.Start()
	s.logger.Info("scheduler started", "schedule", s.spec, "next", c.Entry(entryID).Next.Format(time.RFC3339))

	var startup sync.WaitGroup
	if s.runOnStart {
		// Goes through the job wrapper so it counts as running for SkipIfStillRunning
		job := c.Entry(entryID).WrappedJob
		startup.Add(1)
		go func() {
			defer startup.Done()
			job.Run()
		}()
	}

	<-ctx.Done()
	s.logger.Info("scheduler stopping")
	<-c.Stop().Done()
	startup.Wait()
	return nil
}

// Next returns the next activation times of spec after from
func Next(spec string, from time.Time, n int) ([]time.Time, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, n)
	t := from
	for range n {
		t = schedule.Next(t)
		times = append(times, t)
	}
	return times, nil
}

// cronLogger routes cron's logr-style logging to slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
