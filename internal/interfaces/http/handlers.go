package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/hrone-autopunch/internal/application/workflow"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   Dependencies
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger Logger) *Handlers {
	return &Handlers{
		deps:   deps,
		logger: logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// AccountResponse is an account without its secrets
type AccountResponse struct {
	ID            int64              `json:"id"`
	Username      string             `json:"username"`
	EmployeeID    string             `json:"employee_id,omitempty"`
	HasWebhook    bool               `json:"has_webhook"`
	TokenValid    bool               `json:"token_valid"`
	SkipUntil     *string            `json:"skip_until,omitempty"`
	HasLeaveUntil *string            `json:"has_leave_until,omitempty"`
	LastPunch     *entity.PunchState `json:"last_punch,omitempty"`
	CreatedAt     string             `json:"created_at"`
	UpdatedAt     string             `json:"updated_at"`
}

// CreateAccountRequest is the body of POST /api/v1/accounts
type CreateAccountRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	WebhookURL string `json:"webhook_url" binding:"omitempty,url"`
}

// UntilRequest is the body of the skip-until and leave-until endpoints.
// A null until clears the window.
type UntilRequest struct {
	Until *time.Time `json:"until"`
}

// ListTicksRequest represents query parameters for listing ticks
type ListTicksRequest struct {
	Limit int `form:"limit"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListAccounts handles GET /api/v1/accounts
func (h *Handlers) ListAccounts(c *gin.Context) {
	accounts, err := h.deps.Accounts.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve accounts",
		})
		return
	}

	responseAccounts := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responseAccounts = append(responseAccounts, toAccountResponse(account))
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    responseAccounts,
	})
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *Handlers) GetAccount(c *gin.Context) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	account, err := h.deps.Accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.accountError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toAccountResponse(account),
	})
}

// CreateAccount handles POST /api/v1/accounts
func (h *Handlers) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	account := &entity.Account{
		Username:   req.Username,
		Password:   req.Password,
		WebhookURL: req.WebhookURL,
	}
	if err := h.deps.Accounts.Create(c.Request.Context(), account); err != nil {
		if errors.Is(err, entity.ErrDuplicateAccount) {
			c.JSON(http.StatusConflict, Response{
				Success: false,
				Error:   "username already registered",
			})
			return
		}
		h.logger.Error("Failed to create account", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to create account",
		})
		return
	}

	h.logger.Info("Account registered", "account_id", account.ID, "username", account.Username)

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toAccountResponse(account),
	})
}

// SetSkipUntil handles PUT /api/v1/accounts/:id/skip-until
func (h *Handlers) SetSkipUntil(c *gin.Context) {
	h.setWindow(c, "skip_until", h.deps.Accounts.SetSkipUntil)
}

// SetLeaveUntil handles PUT /api/v1/accounts/:id/leave-until
func (h *Handlers) SetLeaveUntil(c *gin.Context) {
	h.setWindow(c, "has_leave_until", h.deps.Accounts.SetLeaveUntil)
}

func (h *Handlers) setWindow(c *gin.Context, field string, set func(ctx context.Context, id int64, until *time.Time) error) {
	id, ok := h.accountID(c)
	if !ok {
		return
	}

	var req UntilRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body, expected {\"until\": RFC3339 timestamp or null}",
		})
		return
	}

	if err := set(c.Request.Context(), id, req.Until); err != nil {
		h.accountError(c, id, err)
		return
	}

	account, err := h.deps.Accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.accountError(c, id, err)
		return
	}

	h.logger.Info("Account window updated", "account_id", id, "field", field, "until", formatTimePtr(req.Until))

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toAccountResponse(account),
	})
}

// ListJobs handles GET /api/v1/jobs
func (h *Handlers) ListJobs(c *gin.Context) {
	if h.deps.Schedule != nil {
		c.JSON(http.StatusOK, Response{
			Success: true,
			Data:    h.deps.Schedule.Entries(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.deps.Engine.Jobs(),
	})
}

// TriggerTick handles POST /api/v1/ticks/:job.
// An optional ?at=RFC3339 runs the tick as if it were that instant.
func (h *Handlers) TriggerTick(c *gin.Context) {
	job := c.Param("job")

	// the tick outlives a client that hangs up
	ctx := context.WithoutCancel(c.Request.Context())

	var (
		run *entity.TickRun
		err error
	)
	if at := c.Query("at"); at != "" {
		ts, perr := time.Parse(time.RFC3339, at)
		if perr != nil {
			c.JSON(http.StatusBadRequest, Response{
				Success: false,
				Error:   "invalid at, expected RFC3339 timestamp",
			})
			return
		}
		run, err = h.deps.Engine.RunAt(ctx, job, ts)
	} else {
		run, err = h.deps.Engine.Run(ctx, job)
	}

	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrUnknownJob):
			c.JSON(http.StatusNotFound, Response{
				Success: false,
				Error:   fmt.Sprintf("unknown job %q", job),
			})
		case errors.Is(err, entity.ErrTickInProgress):
			c.JSON(http.StatusConflict, Response{
				Success: false,
				Error:   "a tick is already in progress",
			})
		default:
			h.logger.Error("Manual tick failed", "job", job, "error", err)
			c.JSON(http.StatusInternalServerError, Response{
				Success: false,
				Error:   "tick failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    run,
	})
}

// ListTicks handles GET /api/v1/ticks
func (h *Handlers) ListTicks(c *gin.Context) {
	var req ListTicksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}

	runs, err := h.deps.Ticks.ListRecent(c.Request.Context(), req.Limit)
	if err != nil {
		h.logger.Error("Failed to list ticks", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve ticks",
		})
		return
	}

	if runs == nil {
		runs = []*entity.TickRun{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    runs,
	})
}

// MonthlyReport handles GET /api/v1/reports/:year/:month
func (h *Handlers) MonthlyReport(c *gin.Context) {
	if h.deps.Reports == nil {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "reports are not enabled",
		})
		return
	}

	year, yerr := strconv.Atoi(c.Param("year"))
	month, merr := strconv.Atoi(c.Param("month"))
	if yerr != nil || merr != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid year or month",
		})
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Reports.Write(c.Request.Context(), &buf, year, time.Month(month)); err != nil {
		h.logger.Error("Failed to build monthly report", "year", year, "month", month, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to build report",
		})
		return
	}

	filename := fmt.Sprintf("attendance-%04d-%02d.xlsx", year, month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handlers) accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid account id",
		})
		return 0, false
	}
	return id, true
}

func (h *Handlers) accountError(c *gin.Context, id int64, err error) {
	if errors.Is(err, entity.ErrAccountNotFound) {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "account not found",
		})
		return
	}

	h.logger.Error("Account operation failed", "account_id", id, "error", err)
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   "account operation failed",
	})
}

// toAccountResponse converts an entity.Account to AccountResponse
func toAccountResponse(account *entity.Account) AccountResponse {
	return AccountResponse{
		ID:            account.ID,
		Username:      account.Username,
		EmployeeID:    account.EmployeeID,
		HasWebhook:    account.WebhookURL != "",
		TokenValid:    !account.IsTokenExpired(time.Now()),
		SkipUntil:     formatTimePtr(account.SkipUntil),
		HasLeaveUntil: formatTimePtr(account.HasLeaveUntil),
		LastPunch:     account.LastPunch,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
