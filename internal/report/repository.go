package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListDue(ctx context.Context, now time.Time, limit int) ([]Schedule, error) {
	query := `
		SELECT id, report_id, cadence, timezone, anchor_at, last_run_at, next_run_at, delivery_emails, format, is_active
		FROM report_schedules
		WHERE is_active AND next_run_at <= $1
		ORDER BY next_run_at ASC, id ASC
		LIMIT $2
	`

	schedules := []Schedule{}
	if err := r.db.SelectContext(ctx, &schedules, query, now, limit); err != nil {
		return nil, fmt.Errorf("list due report schedules: %w", err)
	}
	return schedules, nil
}

func (r *repository) Advance(ctx context.Context, id int, prevNext, lastRun, next time.Time) (bool, error) {
	query := `
		UPDATE report_schedules
		SET last_run_at = $3, next_run_at = $4
		WHERE id = $1 AND next_run_at = $2 AND is_active
	`

	result, err := r.db.ExecContext(ctx, query, id, prevNext, lastRun, next)
	if err != nil {
		return false, apperr.Wrap(apperr.StoreWriteFailed, "report.Advance", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Wrap(apperr.StoreWriteFailed, "report.Advance", err)
	}
	return rowsAffected == 1, nil
}
