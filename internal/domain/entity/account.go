package entity

import "time"

// Account is a registered HROne login the service punches for
type Account struct {
	ID            int64       `json:"id"`
	Username      string      `json:"username"`
	Password      string      `json:"-"`
	AccessToken   string      `json:"-"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
	EmployeeID    string      `json:"employee_id,omitempty"`
	WebhookURL    string      `json:"webhook_url,omitempty"`
	SkipUntil     *time.Time  `json:"skip_until,omitempty"`
	HasLeaveUntil *time.Time  `json:"has_leave_until,omitempty"`
	LastPunch     *PunchState `json:"last_punch,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// IsTokenExpired reports whether a new token must be requested.
// A token is only valid while its expiry is strictly after now.
func (a *Account) IsTokenExpired(now time.Time) bool {
	if a.AccessToken == "" || a.ExpiresAt == nil {
		return true
	}
	return !a.ExpiresAt.After(now)
}

// HasSkipUntil reports whether automated punching is suppressed at now
func (a *Account) HasSkipUntil(now time.Time) bool {
	return a.SkipUntil != nil && now.Before(*a.SkipUntil)
}

// HasLeave reports whether a recorded leave period still covers now
func (a *Account) HasLeave(now time.Time) bool {
	return a.HasLeaveUntil != nil && now.Before(*a.HasLeaveUntil)
}

// DisplayName is the label used in alerts: employee id when known, else username
func (a *Account) DisplayName() string {
	if a.EmployeeID != "" {
		return a.EmployeeID
	}
	return a.Username
}

// PunchState is the check-in/check-out pair reconstructed from the raw punch list
type PunchState struct {
	TimeIn  bool `json:"time_in"`
	TimeOut bool `json:"time_out"`
}
