package port

import (
	"context"
	"time"

	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// AccountRepository defines persistence operations for Account.
// Update methods touch only the named columns so a refresh never
// overwrites fields edited concurrently through the admin API.
type AccountRepository interface {
	List(ctx context.Context) ([]*entity.Account, error)
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	Create(ctx context.Context, account *entity.Account) error
	UpdateToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	UpdateEmployeeID(ctx context.Context, id int64, employeeID string) error
	UpdateLastPunch(ctx context.Context, id int64, state entity.PunchState) error
	SetSkipUntil(ctx context.Context, id int64, until *time.Time) error
	SetLeaveUntil(ctx context.Context, id int64, until *time.Time) error
}

// TickRepository stores the history of ticks and their per-account outcomes
type TickRepository interface {
	Save(ctx context.Context, run *entity.TickRun) error
	ListRecent(ctx context.Context, limit int) ([]*entity.TickRun, error)
	ListOutcomes(ctx context.Context, from, to time.Time) ([]*entity.PunchOutcome, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
