package hrone

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
	"go.uber.org/zap"
)

const (
	DefaultAuthURL = "https://hroneauthapi.hrone.cloud/oauth2/token"
	DefaultBaseURL = "https://hronewebapi.hrone.cloud"

	profilePath  = "/api/LogOnUser/LogOnUserDetail"
	calendarPath = "/api/timeoffice/attendance/Calendar"
	rawPunchPath = "/api/timeoffice/attendance/RawPunch"
	punchPath    = "/api/timeoffice/mobile/checkin/Attendance/Request"

	// Fixed values expected by the mobile check-in endpoint
	attendanceSource = "W"
	attendanceType   = "Online"
	requestType      = "A"
	loginType        = "1"
)

// Config holds HROne API configuration
type Config struct {
	AuthURL       string
	BaseURL       string
	CompanyDomain string
	IPAddress     string
	Timeout       time.Duration
}

// StatusError is returned when HROne answers with an unexpected HTTP status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// Client talks to the HROne web API. It never retries; callers decide.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new HROne client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// RequestToken exchanges username and password for an access token
func (c *Client) RequestToken(ctx context.Context, username, password string) (*port.TokenGrant, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	form.Set("loginType", loginType)
	form.Set("companyDomainCode", c.cfg.CompanyDomain)

	status, body, err := c.do(ctx, http.MethodPost, c.cfg.AuthURL, "", form)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrCredentialFailure, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", entity.ErrCredentialFailure, &StatusError{Op: "token", StatusCode: status, Body: truncate(body)})
	}

	var grant port.TokenGrant
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %w", entity.ErrCredentialFailure, err)
	}
	if grant.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", entity.ErrCredentialFailure)
	}

	return &grant, nil
}

// GetEmployeeID returns the employee id bound to token
func (c *Client) GetEmployeeID(ctx context.Context, token string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+profilePath, token, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entity.ErrIdentityFailure, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: %w", entity.ErrIdentityFailure, &StatusError{Op: "profile", StatusCode: status, Body: truncate(body)})
	}

	var profile struct {
		EmployeeID json.Number `json:"employeeId"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("%w: failed to decode profile response: %w", entity.ErrIdentityFailure, err)
	}
	id := profile.EmployeeID.String()
	if id == "" || id == "0" {
		return "", fmt.Errorf("%w: profile response has no employeeId", entity.ErrIdentityFailure)
	}

	return id, nil
}

// GetCalendar returns the attendance calendar of one month
func (c *Client) GetCalendar(ctx context.Context, token, employeeID, month, year string) ([]entity.CalendarDay, error) {
	form := url.Values{}
	form.Set("attendanceMonth", month)
	form.Set("attendanceYear", year)
	form.Set("employeeId", employeeID)

	status, body, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+calendarPath, token, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrCalendarUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", entity.ErrCalendarUnavailable, &StatusError{Op: "calendar", StatusCode: status, Body: truncate(body)})
	}

	var days []entity.CalendarDay
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("%w: failed to decode calendar response: %w", entity.ErrCalendarUnavailable, err)
	}

	return days, nil
}

// GetRawPunches returns the raw punch list for one date (YYYY-MM-DD).
// Any HTTP status is returned to the caller; only a malformed 200 body is an error.
func (c *Client) GetRawPunches(ctx context.Context, token, employeeID, date string) (*port.RawPunches, error) {
	endpoint := fmt.Sprintf("%s%s/%s/%s", c.cfg.BaseURL, rawPunchPath, url.PathEscape(employeeID), url.PathEscape(date))

	status, body, err := c.do(ctx, http.MethodGet, endpoint, token, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrPunchStateUnavailable, err)
	}

	result := &port.RawPunches{StatusCode: status}
	if status != http.StatusOK {
		return result, nil
	}

	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &result.Records); err != nil {
			return nil, fmt.Errorf("%w: failed to decode raw punch response: %w", entity.ErrPunchStateUnavailable, err)
		}
	}

	return result, nil
}

// SubmitPunch posts an online attendance request
func (c *Client) SubmitPunch(ctx context.Context, token string, req port.PunchRequest) error {
	form := url.Values{}
	form.Set("ipAddress", c.cfg.IPAddress)
	form.Set("attendanceSource", attendanceSource)
	form.Set("attendanceType", attendanceType)
	form.Set("employeeId", req.EmployeeID)
	form.Set("punchTime", req.PunchTime)
	form.Set("requestType", requestType)

	status, body, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+punchPath, token, form)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrPunchRejected, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: %w", entity.ErrPunchRejected, &StatusError{Op: "punch", StatusCode: status, Body: truncate(body)})
	}

	return nil
}

// do sends one request and returns status and body
func (c *Client) do(ctx context.Context, method, endpoint, token string, form url.Values) (int, []byte, error) {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("HROne request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Error(err))
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("HROne request completed",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	return resp.StatusCode, body, nil
}

// IsStatus reports whether err carries an HROne StatusError with code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}

// Verify interface compliance
var _ port.HROneClient = (*Client)(nil)
