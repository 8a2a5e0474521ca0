package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/workflow"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
	"github.com/garyjia/hrone-autopunch/pkg/utils"
)

// TickRunner runs one tick of a named job
type TickRunner interface {
	Run(ctx context.Context, job string) (*entity.TickRun, error)
}

// Entry is a scheduled job and its next activation
type Entry struct {
	Job  string    `json:"job"`
	Spec string    `json:"schedule"`
	Next time.Time `json:"next"`
}

// Scheduler fires job ticks on their cron schedule in the organisation time zone.
// A tick that is due while the same job is still running is skipped.
type Scheduler struct {
	runner   TickRunner
	jobs     []workflow.Job
	location *time.Location
	logger   *zap.Logger

	mu       sync.Mutex
	cron     *cron.Cron
	entries  map[cron.EntryID]workflow.Job
	ctx      context.Context
	cancel   context.CancelFunc
	stopWait time.Duration
}

// NewScheduler creates a scheduler for jobs
func NewScheduler(runner TickRunner, jobs []workflow.Job, loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		runner:   runner,
		jobs:     jobs,
		location: loc,
		logger:   logger,
		stopWait: 5 * time.Minute,
	}
}

// Name implements Worker
func (s *Scheduler) Name() string {
	return "cron-scheduler"
}

// Start registers every job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("scheduler is already running")
	}

	logger := cronLogger{logger: s.logger.Named("cron")}
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	s.ctx, s.cancel = context.WithCancel(ctx)
	entries := make(map[cron.EntryID]workflow.Job, len(s.jobs))
	for _, job := range s.jobs {
		job := job
		id, err := c.AddFunc(job.Schedule, func() { s.runJob(job.Name) })
		if err != nil {
			s.cancel()
			return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
		}
		entries[id] = job
		s.logger.Info("Job scheduled",
			zap.String("job", job.Name),
			zap.String("schedule", job.Schedule),
			zap.String("timezone", s.location.String()))
	}

	s.cron = c
	s.entries = entries
	c.Start()
	return nil
}

// Stop stops the cron loop and waits for a running tick to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	done := c.Stop()
	select {
	case <-done.Done():
	case <-time.After(s.stopWait):
		s.logger.Warn("Timed out waiting for running tick, cancelling")
	}
	s.cancel()
}

// Entries returns the scheduled jobs with their next activation time
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	var out []Entry
	for _, e := range s.cron.Entries() {
		job := s.entries[e.ID]
		out = append(out, Entry{Job: job.Name, Spec: job.Schedule, Next: e.Next})
	}
	return out
}

func (s *Scheduler) runJob(job string) {
	run, err := s.runner.Run(s.ctx, job)
	if err != nil {
		if errors.Is(err, entity.ErrTickInProgress) {
			s.logger.Warn("Tick skipped, another tick is running", zap.String("job", job))
			return
		}
		s.logger.Error("Tick failed", zap.String("job", job), zap.Error(err))
		return
	}

	s.logger.Info("Tick completed",
		zap.String("job", job),
		zap.String("tick_id", run.ID),
		zap.Int("punched", run.Punched),
		zap.Int("failed", run.Failed))
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, utils.ToZapFields(keysAndValues...)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(utils.ToZapFields(keysAndValues...), zap.Error(err))...)
}

// ValidateSchedule reports whether spec is a valid five field cron expression (or descriptor)
func ValidateSchedule(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// Verify interface compliance
var _ Worker = (*Scheduler)(nil)
