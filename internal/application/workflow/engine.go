// Package workflow runs the per-account punch procedure for every account of a tick.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/application/service"
	"github.com/garyjia/hrone-autopunch/internal/domain/clock"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
	domainwf "github.com/garyjia/hrone-autopunch/internal/domain/workflow"
)

// Notifier is the alert surface the engine reports through
type Notifier interface {
	Failure(ctx context.Context, account *entity.Account, message string) error
	Skipped(ctx context.Context, account *entity.Account, message string) error
	Punched(ctx context.Context, account *entity.Account, direction decision.Direction, punchTime string) error
}

// Engine runs ticks of registered jobs
type Engine interface {
	// Run executes one tick of job at the current time
	Run(ctx context.Context, job string) (*entity.TickRun, error)

	// RunAt executes one tick of job as if it were at
	RunAt(ctx context.Context, job string, at time.Time) (*entity.TickRun, error)

	// Jobs returns the registered jobs
	Jobs() []Job
}

// Dependencies groups the collaborators of the engine
type Dependencies struct {
	Accounts    port.AccountRepository
	Ticks       port.TickRepository // optional
	Credentials service.CredentialService
	Attendance  service.AttendanceService
	Punches     service.PunchService
	Notifier    Notifier
	Logger      service.Logger
}

type engineImpl struct {
	deps     Dependencies
	jobs     []Job
	byName   map[string]Job
	windows  decision.Windows
	gate     decision.Gate
	location *time.Location
	now      func() time.Time
	newID    func() string

	// one tick at a time, whichever job it belongs to
	running sync.Mutex
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithJobs replaces the default job set
func WithJobs(jobs ...Job) EngineOption {
	return func(e *engineImpl) {
		e.jobs = jobs
	}
}

// WithWindows overrides the check-in/check-out hours
func WithWindows(w decision.Windows) EngineOption {
	return func(e *engineImpl) {
		e.windows = w
	}
}

// WithGate sets the jitter gate used by jobs that enable it
func WithGate(g decision.Gate) EngineOption {
	return func(e *engineImpl) {
		e.gate = g
	}
}

// WithLocation sets the organisation time zone
func WithLocation(loc *time.Location) EngineOption {
	return func(e *engineImpl) {
		e.location = loc
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		e.now = now
	}
}

// WithIDGenerator replaces the tick id generator
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *engineImpl) {
		e.newID = newID
	}
}

// NewEngine creates a new workflow engine
func NewEngine(deps Dependencies, opts ...EngineOption) Engine {
	e := &engineImpl{
		deps:     deps,
		jobs:     DefaultJobs(),
		windows:  decision.DefaultWindows(),
		gate:     decision.AlwaysAllow,
		location: time.UTC,
		now:      time.Now,
		newID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.byName = make(map[string]Job, len(e.jobs))
	for _, j := range e.jobs {
		e.byName[j.Name] = j
	}

	return e
}

func (e *engineImpl) Jobs() []Job {
	out := make([]Job, len(e.jobs))
	copy(out, e.jobs)
	return out
}

func (e *engineImpl) Run(ctx context.Context, job string) (*entity.TickRun, error) {
	return e.RunAt(ctx, job, e.now())
}

func (e *engineImpl) RunAt(ctx context.Context, jobName string, at time.Time) (*entity.TickRun, error) {
	job, ok := e.byName[jobName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, jobName)
	}

	if !e.running.TryLock() {
		e.deps.Logger.Warn("Tick dropped, previous tick still running", "job", jobName)
		return nil, entity.ErrTickInProgress
	}
	defer e.running.Unlock()

	// built once so every account sees the same hour
	now := clock.New(at, e.location)

	run := &entity.TickRun{
		ID:        e.newID(),
		Job:       job.Name,
		StartedAt: now.Time(),
	}

	e.deps.Logger.Info("Tick started", "job", job.Name, "tick_id", run.ID, "punch_time", now.PunchKey())

	accounts, err := e.deps.Accounts.List(ctx)
	if err != nil {
		e.deps.Logger.Error("Failed to list accounts", "error", err, "job", job.Name)
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	for _, account := range accounts {
		run.Record(e.processAccount(ctx, job, now, account))
	}

	finished := e.now()
	run.FinishedAt = &finished

	e.deps.Logger.Info("Tick finished",
		"job", job.Name,
		"tick_id", run.ID,
		"accounts", run.Accounts,
		"punched", run.Punched,
		"skipped", run.Skipped,
		"failed", run.Failed,
	)

	if e.deps.Ticks != nil {
		if err := e.deps.Ticks.Save(ctx, run); err != nil {
			e.deps.Logger.Error("Failed to save tick run", "error", err, "tick_id", run.ID)
		}
	}

	return run, nil
}

// accountRun carries one account through the punch machine
type accountRun struct {
	e       *engineImpl
	job     Job
	now     clock.Context
	account *entity.Account
	machine domainwf.StateMachine
	outcome *entity.PunchOutcome
	act     bool
}

func (e *engineImpl) processAccount(ctx context.Context, job Job, now clock.Context, account *entity.Account) *entity.PunchOutcome {
	r := &accountRun{
		e:       e,
		job:     job,
		now:     now,
		account: account,
		outcome: &entity.PunchOutcome{
			AccountID: account.ID,
			Username:  account.Username,
			CreatedAt: now.Time(),
		},
	}
	r.machine = domainwf.NewPunchMachine(func(context.Context) bool { return r.act })

	r.run(ctx)
	return r.outcome
}

func (r *accountRun) run(ctx context.Context) {
	account := r.account
	at := r.now.Time()

	if account.HasSkipUntil(at) {
		r.skip(ctx, decision.ReasonSkipUntil)
		return
	}
	if account.HasLeave(at) {
		r.skip(ctx, decision.ReasonOnLeave)
		return
	}
	if r.job.Policy.ApplyRandomJitter && !r.e.gate.Allow(account) {
		r.skip(ctx, decision.ReasonJitter)
		return
	}
	r.advance(ctx, domainwf.TriggerPrecheck)

	creds, err := r.e.deps.Credentials.EnsureValidToken(ctx, account, at)
	if err != nil {
		r.fail(ctx, classify(err, entity.ErrCredentialFailure, decision.ReasonCredential), err)
		return
	}
	r.advance(ctx, domainwf.TriggerAuthenticate)

	employeeID, err := r.e.deps.Credentials.EnsureValidEmployeeID(ctx, account, creds.Token)
	if err != nil {
		r.fail(ctx, classify(err, entity.ErrIdentityFailure, decision.ReasonIdentity), err)
		return
	}
	creds.EmployeeID = employeeID
	r.advance(ctx, domainwf.TriggerIdentify)

	day, err := r.e.deps.Attendance.TodayCalendarEntry(ctx, creds, r.now)
	if err != nil {
		r.fail(ctx, decision.ReasonCalendar, err)
		return
	}
	if !day.IsWorkingDay() {
		r.skip(ctx, decision.ReasonNonWorkingDay)
		return
	}
	r.advance(ctx, domainwf.TriggerReadCalendar)

	state, err := r.e.deps.Attendance.PunchState(ctx, creds, r.now)
	if err != nil {
		r.fail(ctx, decision.ReasonPunchState, err)
		return
	}
	if err := r.e.deps.Accounts.UpdateLastPunch(ctx, account.ID, state); err != nil {
		r.e.deps.Logger.Warn("Failed to record punch state", "error", err, "account_id", account.ID)
	}
	r.advance(ctx, domainwf.TriggerReadPunches)

	verdict := r.e.windows.Evaluate(r.now.HourInt(), state)
	if !verdict.Act {
		r.skip(ctx, verdict.Reason)
		return
	}
	r.act = true

	direction, err := r.e.deps.Punches.Punch(ctx, account, creds, r.now)
	r.outcome.Direction = direction.String()
	r.outcome.PunchTime = r.now.PunchKey()
	if err != nil {
		r.fail(ctx, decision.ReasonPunchRejected, err)
		return
	}

	r.finish(ctx, domainwf.TriggerPunch, entity.OutcomePunched, decision.ReasonNone)
	r.e.deps.Logger.Info("Account punched",
		"job", r.job.Name,
		"account_id", account.ID,
		"direction", direction,
	)

	r.sendAlert(ctx, func() error {
		return r.e.deps.Notifier.Punched(ctx, account, direction, r.now.PunchKey())
	})
}

func (r *accountRun) skip(ctx context.Context, reason decision.SkipReason) {
	r.finish(ctx, domainwf.TriggerSkip, entity.OutcomeSkipped, reason)
	r.e.deps.Logger.Info("Account skipped",
		"job", r.job.Name,
		"account_id", r.account.ID,
		"username", r.account.Username,
		"reason", reason,
	)

	if r.job.Policy.AlertOnEveryStep {
		r.sendAlert(ctx, func() error {
			return r.e.deps.Notifier.Skipped(ctx, r.account, reason.Message())
		})
	}
}

func (r *accountRun) fail(ctx context.Context, reason decision.SkipReason, cause error) {
	r.finish(ctx, domainwf.TriggerFail, entity.OutcomeFailed, reason)
	r.e.deps.Logger.Error("Account failed",
		"job", r.job.Name,
		"account_id", r.account.ID,
		"username", r.account.Username,
		"reason", reason,
		"error", cause,
	)

	r.sendAlert(ctx, func() error {
		return r.e.deps.Notifier.Failure(ctx, r.account, reason.Message())
	})
}

// advance moves the machine one step forward
func (r *accountRun) advance(ctx context.Context, trigger domainwf.Trigger) {
	if err := r.machine.Fire(ctx, trigger); err != nil {
		r.e.deps.Logger.Error("Unexpected workflow transition", "error", err, "trigger", trigger, "state", r.machine.State())
	}
}

func (r *accountRun) finish(ctx context.Context, trigger domainwf.Trigger, outcome string, reason decision.SkipReason) {
	r.outcome.Stage = r.machine.State().String()
	r.outcome.Outcome = outcome
	r.outcome.Reason = reason.String()
	r.advance(ctx, trigger)
}

// sendAlert delivers an alert; delivery problems never change the outcome
func (r *accountRun) sendAlert(ctx context.Context, send func() error) {
	if err := send(); err != nil {
		r.e.deps.Logger.Warn("Alert delivery failed", "error", err, "account_id", r.account.ID)
	}
}

// classify maps a step error to its reason; errors other than sentinel come from persistence
func classify(err error, sentinel error, reason decision.SkipReason) decision.SkipReason {
	if errors.Is(err, sentinel) {
		return reason
	}
	return decision.ReasonRepositoryError
}
