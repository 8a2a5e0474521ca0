package entity

import "time"

// Outcome values recorded per account per tick
const (
	OutcomePunched = "PUNCHED"
	OutcomeSkipped = "SKIPPED"
	OutcomeFailed  = "FAILED"
)

// TickRun is one scheduled (or manual) execution of a job across all accounts
type TickRun struct {
	ID         string          `json:"id"`
	Job        string          `json:"job"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Accounts   int             `json:"accounts"`
	Punched    int             `json:"punched"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
	Outcomes   []*PunchOutcome `json:"outcomes,omitempty"`
}

// PunchOutcome is what the workflow decided for one account during a tick
type PunchOutcome struct {
	ID        int64     `json:"id"`
	TickID    string    `json:"tick_id"`
	AccountID int64     `json:"account_id"`
	Username  string    `json:"username"`
	Stage     string    `json:"stage"`
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	Direction string    `json:"direction,omitempty"`
	PunchTime string    `json:"punch_time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Record updates the run counters for a finished account
func (r *TickRun) Record(o *PunchOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Accounts++
	switch o.Outcome {
	case OutcomePunched:
		r.Punched++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}
