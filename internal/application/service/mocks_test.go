package service

import (
	"context"
	"time"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

type mockHROneClient struct {
	requestTokenFunc  func(ctx context.Context, username, password string) (*port.TokenGrant, error)
	getEmployeeIDFunc func(ctx context.Context, token string) (string, error)
	getCalendarFunc   func(ctx context.Context, token, employeeID, month, year string) ([]entity.CalendarDay, error)
	getRawPunchesFunc func(ctx context.Context, token, employeeID, date string) (*port.RawPunches, error)
	submitPunchFunc   func(ctx context.Context, token string, req port.PunchRequest) error

	requestTokenCalls int
	submitted         []port.PunchRequest
}

func (m *mockHROneClient) RequestToken(ctx context.Context, username, password string) (*port.TokenGrant, error) {
	m.requestTokenCalls++
	if m.requestTokenFunc != nil {
		return m.requestTokenFunc(ctx, username, password)
	}
	return &port.TokenGrant{AccessToken: "fresh-token", ExpiresIn: 3600}, nil
}

func (m *mockHROneClient) GetEmployeeID(ctx context.Context, token string) (string, error) {
	if m.getEmployeeIDFunc != nil {
		return m.getEmployeeIDFunc(ctx, token)
	}
	return "1042", nil
}

func (m *mockHROneClient) GetCalendar(ctx context.Context, token, employeeID, month, year string) ([]entity.CalendarDay, error) {
	if m.getCalendarFunc != nil {
		return m.getCalendarFunc(ctx, token, employeeID, month, year)
	}
	return nil, nil
}

func (m *mockHROneClient) GetRawPunches(ctx context.Context, token, employeeID, date string) (*port.RawPunches, error) {
	if m.getRawPunchesFunc != nil {
		return m.getRawPunchesFunc(ctx, token, employeeID, date)
	}
	return &port.RawPunches{StatusCode: 204}, nil
}

func (m *mockHROneClient) SubmitPunch(ctx context.Context, token string, req port.PunchRequest) error {
	m.submitted = append(m.submitted, req)
	if m.submitPunchFunc != nil {
		return m.submitPunchFunc(ctx, token, req)
	}
	return nil
}

type mockAccountRepo struct {
	updateTokenFunc      func(ctx context.Context, id int64, token string, expiresAt time.Time) error
	updateEmployeeIDFunc func(ctx context.Context, id int64, employeeID string) error

	tokenUpdates      int
	employeeIDUpdates int
}

func (m *mockAccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	return nil, nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	return nil, entity.ErrAccountNotFound
}

func (m *mockAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	return nil
}

func (m *mockAccountRepo) UpdateToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	m.tokenUpdates++
	if m.updateTokenFunc != nil {
		return m.updateTokenFunc(ctx, id, token, expiresAt)
	}
	return nil
}

func (m *mockAccountRepo) UpdateEmployeeID(ctx context.Context, id int64, employeeID string) error {
	m.employeeIDUpdates++
	if m.updateEmployeeIDFunc != nil {
		return m.updateEmployeeIDFunc(ctx, id, employeeID)
	}
	return nil
}

func (m *mockAccountRepo) UpdateLastPunch(ctx context.Context, id int64, state entity.PunchState) error {
	return nil
}

func (m *mockAccountRepo) SetSkipUntil(ctx context.Context, id int64, until *time.Time) error {
	return nil
}

func (m *mockAccountRepo) SetLeaveUntil(ctx context.Context, id int64, until *time.Time) error {
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
