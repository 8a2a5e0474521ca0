package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
	"github.com/garyjia/hrone-autopunch/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hrone-autopunch/migrations"
	"github.com/garyjia/hrone-autopunch/pkg/database"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrationsFS(migrations.FS))

	return sqlite.NewDB(db.DB, logger)
}

func createAccount(t *testing.T, repo *AccountRepository, username string) *entity.Account {
	t.Helper()
	account := &entity.Account{
		Username:   username,
		Password:   "pw-" + username,
		WebhookURL: "https://hooks.example.com/" + username,
	}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

func TestAccountRepository_CreateAndGet(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	created := createAccount(t, repo, "alice")
	assert.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "pw-alice", got.Password)
	assert.Equal(t, "https://hooks.example.com/alice", got.WebhookURL)
	assert.Empty(t, got.AccessToken)
	assert.Nil(t, got.ExpiresAt)
	assert.Nil(t, got.SkipUntil)
	assert.Nil(t, got.LastPunch)
	assert.True(t, got.IsTokenExpired(time.Now()))
}

func TestAccountRepository_GetByID_NotFound(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())

	_, err := repo.GetByID(context.Background(), 999)

	assert.ErrorIs(t, err, entity.ErrAccountNotFound)
}

func TestAccountRepository_Create_DuplicateUsername(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())
	createAccount(t, repo, "alice")

	err := repo.Create(context.Background(), &entity.Account{Username: "alice", Password: "x"})

	assert.ErrorIs(t, err, entity.ErrDuplicateAccount)
}

func TestAccountRepository_List(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())
	createAccount(t, repo, "alice")
	createAccount(t, repo, "bob")

	accounts, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Username)
	assert.Equal(t, "bob", accounts[1].Username)
}

func TestAccountRepository_FieldScopedUpdates(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()
	account := createAccount(t, repo, "alice")

	expiry := time.Date(2024, 3, 8, 2, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateToken(ctx, account.ID, "tok-1", expiry))
	require.NoError(t, repo.UpdateEmployeeID(ctx, account.ID, "1042"))
	require.NoError(t, repo.UpdateLastPunch(ctx, account.ID, entity.PunchState{TimeIn: true}))

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.AccessToken)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, expiry.Equal(*got.ExpiresAt))
	assert.Equal(t, "1042", got.EmployeeID)
	require.NotNil(t, got.LastPunch)
	assert.Equal(t, entity.PunchState{TimeIn: true}, *got.LastPunch)

	// untouched columns survive
	assert.Equal(t, "pw-alice", got.Password)
	assert.Equal(t, "https://hooks.example.com/alice", got.WebhookURL)
}

func TestAccountRepository_SkipAndLeaveWindows(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()
	account := createAccount(t, repo, "alice")

	until := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetSkipUntil(ctx, account.ID, &until))
	require.NoError(t, repo.SetLeaveUntil(ctx, account.ID, &until))

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SkipUntil)
	require.NotNil(t, got.HasLeaveUntil)
	assert.True(t, got.HasSkipUntil(until.Add(-time.Hour)))
	assert.True(t, got.HasLeave(until.Add(-time.Hour)))

	require.NoError(t, repo.SetSkipUntil(ctx, account.ID, nil))
	got, err = repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SkipUntil)
	assert.NotNil(t, got.HasLeaveUntil)
}

func TestAccountRepository_UpdateUnknownAccount(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	assert.ErrorIs(t, repo.UpdateToken(ctx, 42, "tok", time.Now()), entity.ErrAccountNotFound)
	assert.ErrorIs(t, repo.UpdateEmployeeID(ctx, 42, "1"), entity.ErrAccountNotFound)
	assert.ErrorIs(t, repo.SetSkipUntil(ctx, 42, nil), entity.ErrAccountNotFound)
}

func TestAccountRepository_TransactionRollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db, zap.NewNop())
	ctx := context.Background()
	account := createAccount(t, repo, "alice")

	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.UpdateEmployeeID(ctx, account.ID, "1042"))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, got.EmployeeID)
}

func TestTickRepository_SaveAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewTickRepository(db, zap.NewNop())
	ctx := context.Background()

	started := time.Date(2024, 3, 7, 2, 31, 0, 0, time.UTC)
	finished := started.Add(2 * time.Second)
	run := &entity.TickRun{ID: "tick-1", Job: "mark-attendance", StartedAt: started, FinishedAt: &finished}
	run.Record(&entity.PunchOutcome{AccountID: 1, Username: "alice", Stage: "PUNCHED", Outcome: entity.OutcomePunched, Direction: "in", PunchTime: "2024-03-07T08:01"})
	run.Record(&entity.PunchOutcome{AccountID: 2, Username: "bob", Stage: "LOADED", Outcome: entity.OutcomeSkipped, Reason: "skip_until"})

	require.NoError(t, repo.Save(ctx, run))
	assert.NotZero(t, run.Outcomes[0].ID)
	assert.Equal(t, "tick-1", run.Outcomes[1].TickID)

	older := &entity.TickRun{ID: "tick-0", Job: "ensure-punches", StartedAt: started.Add(-24 * time.Hour)}
	require.NoError(t, repo.Save(ctx, older))

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "tick-1", runs[0].ID)
	assert.Equal(t, 2, runs[0].Accounts)
	assert.Equal(t, 1, runs[0].Punched)
	assert.Equal(t, 1, runs[0].Skipped)
	require.NotNil(t, runs[0].FinishedAt)
	assert.Nil(t, runs[1].FinishedAt)

	outcomes, err := repo.ListOutcomes(ctx, started.Add(-time.Hour), started.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "alice", outcomes[0].Username)
	assert.Equal(t, "in", outcomes[0].Direction)
	assert.Equal(t, "skip_until", outcomes[1].Reason)
}

func TestTickRepository_SaveDuplicateRollsBack(t *testing.T) {
	repo := NewTickRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()
	started := time.Date(2024, 3, 7, 2, 31, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, &entity.TickRun{ID: "tick-1", Job: "j", StartedAt: started}))

	dup := &entity.TickRun{ID: "tick-1", Job: "j", StartedAt: started}
	dup.Record(&entity.PunchOutcome{AccountID: 1, Username: "alice", Stage: "LOADED", Outcome: entity.OutcomeFailed})
	assert.Error(t, repo.Save(ctx, dup))

	outcomes, err := repo.ListOutcomes(ctx, started.Add(-time.Hour), started.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}
