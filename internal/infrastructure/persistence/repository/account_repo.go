package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
	"github.com/garyjia/hrone-autopunch/internal/infrastructure/persistence/sqlite"
	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const accountColumns = `
	id, username, password, access_token, expires_at, employee_id,
	webhook_url, skip_until, has_leave_until, last_time_in, last_time_out,
	created_at, updated_at
`

// AccountRepository implements port.AccountRepository
type AccountRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlite.DB, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

// List returns every account ordered by id
func (r *AccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	account, err := scanAccount(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAccountNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get account by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// Create inserts a new account and sets its ID
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO accounts (
			username, password, access_token, expires_at, employee_id,
			webhook_url, skip_until, has_leave_until, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		account.Username,
		account.Password,
		nullString(account.AccessToken),
		nullTime(account.ExpiresAt),
		nullString(account.EmployeeID),
		nullString(account.WebhookURL),
		nullTime(account.SkipUntil),
		nullTime(account.HasLeaveUntil),
		now,
		now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", entity.ErrDuplicateAccount, account.Username)
		}
		r.logger.Error("Failed to create account",
			zap.String("username", account.Username),
			zap.Error(err))
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	account.ID = id
	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

// UpdateToken stores a refreshed access token and its expiry
func (r *AccountRepository) UpdateToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return r.update(ctx, "update token", id,
		`UPDATE accounts SET access_token = ?, expires_at = ?, updated_at = ? WHERE id = ?`,
		token, expiresAt.UTC(), time.Now().UTC(), id)
}

// UpdateEmployeeID stores the employee id resolved from the profile endpoint
func (r *AccountRepository) UpdateEmployeeID(ctx context.Context, id int64, employeeID string) error {
	return r.update(ctx, "update employee id", id,
		`UPDATE accounts SET employee_id = ?, updated_at = ? WHERE id = ?`,
		employeeID, time.Now().UTC(), id)
}

// UpdateLastPunch stores the punch state observed during the latest tick
func (r *AccountRepository) UpdateLastPunch(ctx context.Context, id int64, state entity.PunchState) error {
	return r.update(ctx, "update last punch", id,
		`UPDATE accounts SET last_time_in = ?, last_time_out = ?, updated_at = ? WHERE id = ?`,
		state.TimeIn, state.TimeOut, time.Now().UTC(), id)
}

// SetSkipUntil sets or clears (nil) the skip window
func (r *AccountRepository) SetSkipUntil(ctx context.Context, id int64, until *time.Time) error {
	return r.update(ctx, "set skip until", id,
		`UPDATE accounts SET skip_until = ?, updated_at = ? WHERE id = ?`,
		nullTime(until), time.Now().UTC(), id)
}

// SetLeaveUntil sets or clears (nil) the recorded leave period
func (r *AccountRepository) SetLeaveUntil(ctx context.Context, id int64, until *time.Time) error {
	return r.update(ctx, "set leave until", id,
		`UPDATE accounts SET has_leave_until = ?, updated_at = ? WHERE id = ?`,
		nullTime(until), time.Now().UTC(), id)
}

func (r *AccountRepository) update(ctx context.Context, op string, id int64, query string, args ...interface{}) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op,
			zap.Int64("account_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return entity.ErrAccountNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*entity.Account, error) {
	var account entity.Account
	var accessToken, employeeID, webhookURL sql.NullString
	var expiresAt, skipUntil, leaveUntil sql.NullTime
	var timeIn, timeOut sql.NullBool

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Password,
		&accessToken,
		&expiresAt,
		&employeeID,
		&webhookURL,
		&skipUntil,
		&leaveUntil,
		&timeIn,
		&timeOut,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.AccessToken = accessToken.String
	account.EmployeeID = employeeID.String
	account.WebhookURL = webhookURL.String
	account.ExpiresAt = timePtr(expiresAt)
	account.SkipUntil = timePtr(skipUntil)
	account.HasLeaveUntil = timePtr(leaveUntil)
	if timeIn.Valid || timeOut.Valid {
		account.LastPunch = &entity.PunchState{TimeIn: timeIn.Bool, TimeOut: timeOut.Bool}
	}

	return &account, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Verify interface compliance
var _ port.AccountRepository = (*AccountRepository)(nil)
