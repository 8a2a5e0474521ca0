package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
	"github.com/garyjia/hrone-autopunch/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// TickRepository implements port.TickRepository
type TickRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTickRepository creates a new tick history repository
func NewTickRepository(db *sqlite.DB, logger *zap.Logger) *TickRepository {
	return &TickRepository{
		db:     db,
		logger: logger,
	}
}

// Save stores the run and all of its outcomes in one transaction
func (r *TickRepository) Save(ctx context.Context, run *entity.TickRun) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context) error {
		exec := r.db.Executor(ctx)

		var finishedAt sql.NullTime
		if run.FinishedAt != nil {
			finishedAt = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
		}

		_, err := exec.ExecContext(ctx, `
			INSERT INTO tick_runs (id, job, started_at, finished_at, accounts, punched, skipped, failed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, run.Job, run.StartedAt.UTC(), finishedAt, run.Accounts, run.Punched, run.Skipped, run.Failed)
		if err != nil {
			r.logger.Error("Failed to save tick run",
				zap.String("tick_id", run.ID),
				zap.Error(err))
			return fmt.Errorf("failed to save tick run: %w", err)
		}

		for _, o := range run.Outcomes {
			if o.CreatedAt.IsZero() {
				o.CreatedAt = run.StartedAt
			}
			o.TickID = run.ID

			result, err := exec.ExecContext(ctx, `
				INSERT INTO punch_outcomes (
					tick_id, account_id, username, stage, outcome,
					reason, direction, punch_time, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, o.TickID, o.AccountID, o.Username, o.Stage, o.Outcome,
				nullString(o.Reason), nullString(o.Direction), nullString(o.PunchTime), o.CreatedAt.UTC())
			if err != nil {
				r.logger.Error("Failed to save punch outcome",
					zap.String("tick_id", run.ID),
					zap.Int64("account_id", o.AccountID),
					zap.Error(err))
				return fmt.Errorf("failed to save punch outcome: %w", err)
			}

			if id, err := result.LastInsertId(); err == nil {
				o.ID = id
			}
		}

		return nil
	})
}

// ListRecent returns the latest runs, newest first, without outcomes
func (r *TickRepository) ListRecent(ctx context.Context, limit int) ([]*entity.TickRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT id, job, started_at, finished_at, accounts, punched, skipped, failed
		FROM tick_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		r.logger.Error("Failed to list tick runs", zap.Error(err))
		return nil, fmt.Errorf("failed to list tick runs: %w", err)
	}
	defer rows.Close()

	var runs []*entity.TickRun
	for rows.Next() {
		var run entity.TickRun
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.Job, &run.StartedAt, &finishedAt,
			&run.Accounts, &run.Punched, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan tick run: %w", err)
		}
		run.FinishedAt = timePtr(finishedAt)
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// ListOutcomes returns outcomes created in [from, to), oldest first
func (r *TickRepository) ListOutcomes(ctx context.Context, from, to time.Time) ([]*entity.PunchOutcome, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, `
		SELECT id, tick_id, account_id, username, stage, outcome,
			reason, direction, punch_time, created_at
		FROM punch_outcomes
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at, id
	`, from.UTC(), to.UTC())
	if err != nil {
		r.logger.Error("Failed to list punch outcomes",
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list punch outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*entity.PunchOutcome
	for rows.Next() {
		var o entity.PunchOutcome
		var reason, direction, punchTime sql.NullString
		if err := rows.Scan(&o.ID, &o.TickID, &o.AccountID, &o.Username, &o.Stage, &o.Outcome,
			&reason, &direction, &punchTime, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan punch outcome: %w", err)
		}
		o.Reason = reason.String
		o.Direction = direction.String
		o.PunchTime = punchTime.String
		outcomes = append(outcomes, &o)
	}

	return outcomes, rows.Err()
}

// Verify interface compliance
var _ port.TickRepository = (*TickRepository)(nil)
