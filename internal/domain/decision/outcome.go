package decision

import "github.com/garyjia/hrone-autopunch/internal/domain/entity"

// SkipReason names why an account was not punched during a tick
type SkipReason string

const (
	ReasonNone            SkipReason = ""
	ReasonSkipUntil       SkipReason = "skip_until"
	ReasonOnLeave         SkipReason = "on_leave"
	ReasonJitter          SkipReason = "jitter"
	ReasonCredential      SkipReason = "credential_failure"
	ReasonIdentity        SkipReason = "identity_failure"
	ReasonCalendar        SkipReason = "calendar_unavailable"
	ReasonNonWorkingDay   SkipReason = "non_working_day"
	ReasonPunchState      SkipReason = "punch_state_unavailable"
	ReasonAlreadyPunched  SkipReason = "already_punched"
	ReasonPunchRejected   SkipReason = "punch_rejected"
	ReasonRepositoryError SkipReason = "repository_error"
)

var reasonMessages = map[SkipReason]string{
	ReasonSkipUntil:       "Because of an active skip window",
	ReasonOnLeave:         "Because of applied leaves on records",
	ReasonJitter:          "Because of random jitter",
	ReasonCredential:      "Failed to get valid token",
	ReasonIdentity:        "Failed to get empId",
	ReasonCalendar:        "Failed to get today's calendar",
	ReasonNonWorkingDay:   "Because of non-working day",
	ReasonPunchState:      "Failed to get punch details",
	ReasonAlreadyPunched:  "Because of already punched by the user",
	ReasonPunchRejected:   "HR-One server returned error",
	ReasonRepositoryError: "Failed to save refreshed credentials",
}

// String returns the string representation of the reason
func (r SkipReason) String() string {
	return string(r)
}

// Message returns the human readable text used in alerts
func (r SkipReason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// IsFailure reports whether the reason comes from a failed step rather than a policy skip
func (r SkipReason) IsFailure() bool {
	switch r {
	case ReasonCredential, ReasonIdentity, ReasonCalendar, ReasonPunchState, ReasonPunchRejected, ReasonRepositoryError:
		return true
	}
	return false
}

// Outcome is the result of evaluating one account: either act or skip with a reason
type Outcome struct {
	Act    bool
	Reason SkipReason
}

// Act returns an outcome that proceeds to the punch
func Act() Outcome {
	return Outcome{Act: true}
}

// Skip returns an outcome that stops with reason
func Skip(reason SkipReason) Outcome {
	return Outcome{Reason: reason}
}

// Evaluate turns the current hour and punch state into an Outcome
func (w Windows) Evaluate(hour int, state entity.PunchState) Outcome {
	if w.ShouldPunch(hour, state) {
		return Act()
	}
	return Skip(ReasonAlreadyPunched)
}
