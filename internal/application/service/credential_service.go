package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// Logger defines the logging interface for services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Credentials is the session material a tick needs for one account
type Credentials struct {
	Token      string
	ExpiresAt  time.Time
	EmployeeID string
}

// CredentialService keeps an account's token and employee id usable
type CredentialService interface {
	// EnsureValidToken returns a token valid at now, logging in again when the cached one expired.
	// A refreshed token is persisted before it is returned.
	EnsureValidToken(ctx context.Context, account *entity.Account, now time.Time) (Credentials, error)

	// EnsureValidEmployeeID returns the cached employee id or resolves it with token
	EnsureValidEmployeeID(ctx context.Context, account *entity.Account, token string) (string, error)
}

type credentialServiceImpl struct {
	client      port.HROneClient
	accountRepo port.AccountRepository
	logger      Logger
}

// NewCredentialService creates a new CredentialService
func NewCredentialService(client port.HROneClient, accountRepo port.AccountRepository, logger Logger) CredentialService {
	return &credentialServiceImpl{
		client:      client,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (s *credentialServiceImpl) EnsureValidToken(ctx context.Context, account *entity.Account, now time.Time) (Credentials, error) {
	if !account.IsTokenExpired(now) {
		return Credentials{
			Token:      account.AccessToken,
			ExpiresAt:  *account.ExpiresAt,
			EmployeeID: account.EmployeeID,
		}, nil
	}

	s.logger.Info("Requesting new access token", "account_id", account.ID, "username", account.Username)

	grant, err := s.client.RequestToken(ctx, account.Username, account.Password)
	if err != nil {
		s.logger.Error("Failed to request access token", "error", err, "account_id", account.ID)
		return Credentials{}, err
	}

	expiresAt := now.Add(time.Duration(grant.ExpiresIn) * time.Second)
	if err := s.accountRepo.UpdateToken(ctx, account.ID, grant.AccessToken, expiresAt); err != nil {
		s.logger.Error("Failed to persist access token", "error", err, "account_id", account.ID)
		return Credentials{}, fmt.Errorf("persist token: %w", err)
	}

	s.logger.Info("Access token refreshed", "account_id", account.ID, "expires_at", expiresAt)

	return Credentials{
		Token:      grant.AccessToken,
		ExpiresAt:  expiresAt,
		EmployeeID: account.EmployeeID,
	}, nil
}

func (s *credentialServiceImpl) EnsureValidEmployeeID(ctx context.Context, account *entity.Account, token string) (string, error) {
	if account.EmployeeID != "" {
		return account.EmployeeID, nil
	}

	employeeID, err := s.client.GetEmployeeID(ctx, token)
	if err != nil {
		s.logger.Error("Failed to resolve employee id", "error", err, "account_id", account.ID)
		return "", err
	}

	if err := s.accountRepo.UpdateEmployeeID(ctx, account.ID, employeeID); err != nil {
		s.logger.Error("Failed to persist employee id", "error", err, "account_id", account.ID)
		return "", fmt.Errorf("persist employee id: %w", err)
	}

	s.logger.Info("Employee id resolved", "account_id", account.ID, "employee_id", employeeID)
	return employeeID, nil
}
