package workflow

import "errors"

// Job names
const (
	JobMarkAttendance = "mark-attendance"
	JobEnsurePunches  = "ensure-punches"
)

// ErrUnknownJob is returned when a tick is requested for a job that is not registered
var ErrUnknownJob = errors.New("unknown job")

// Policy toggles the behaviour that differs between jobs
type Policy struct {
	// AlertOnEveryStep sends a skip notice whenever an account is skipped by policy.
	// Failures and successful punches are always reported.
	AlertOnEveryStep bool `mapstructure:"alert_on_every_step" json:"alert_on_every_step"`

	// ApplyRandomJitter passes every account through the engine's Gate first
	ApplyRandomJitter bool `mapstructure:"apply_random_jitter" json:"apply_random_jitter"`
}

// Job is a named, scheduled replay of the punch workflow over all accounts
type Job struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Policy   Policy `json:"policy"`
}

// DefaultJobs returns the two weekday jobs: the main run one minute into each
// window and a follow-up five minutes later that only catches misses
func DefaultJobs() []Job {
	return []Job{
		{
			Name:     JobMarkAttendance,
			Schedule: "1 8,17 * * 1-5",
			Policy:   Policy{AlertOnEveryStep: true},
		},
		{
			Name:     JobEnsurePunches,
			Schedule: "6 8,17 * * 1-5",
			Policy:   Policy{},
		},
	}
}
