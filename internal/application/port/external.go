package port

import (
	"context"

	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// TokenGrant is the auth endpoint's answer to a password login
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RawPunch is one entry of the raw punch list
type RawPunch struct {
	PunchDateTime string `json:"punchDateTime"`
}

// RawPunches is the raw punch endpoint response: the status is kept because
// 204 and 200 carry different meanings for the attendance reader
type RawPunches struct {
	StatusCode int
	Records    []RawPunch
}

// PunchRequest is the form posted to the punch submission endpoint
type PunchRequest struct {
	EmployeeID string
	PunchTime  string
}

// HROneClient defines the vendor API operations used by the workflow
type HROneClient interface {
	RequestToken(ctx context.Context, username, password string) (*TokenGrant, error)
	GetEmployeeID(ctx context.Context, token string) (string, error)
	GetCalendar(ctx context.Context, token, employeeID, month, year string) ([]entity.CalendarDay, error)
	GetRawPunches(ctx context.Context, token, employeeID, date string) (*RawPunches, error)
	SubmitPunch(ctx context.Context, token string, req PunchRequest) error
}

// Alert is one webhook message
type Alert struct {
	Title       string
	Description string
	Color       int
}

// AlertSender posts an alert to a webhook URL
type AlertSender interface {
	Send(ctx context.Context, url string, alert Alert) error
}

// MessageSender mirrors alert text to a chat
type MessageSender interface {
	SendText(ctx context.Context, chatID, content string) error
}
