package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/db"

	"github.com/jmoiron/sqlx"
)

const subscriptionColumns = `id, member_id, delinquency_state, grace_period_until, grace_notice_sent_at, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.SubscriptionNotFound, "subscription.GetByID")
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription %d: %w", id, err)
	}
	return sub, nil
}

func (r *repository) ListGraceExpiring(ctx context.Context, now time.Time, window time.Duration, after Cursor, limit int) ([]*Subscription, error) {
	subs := []*Subscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE delinquency_state = 'pending_retry'
		  AND grace_period_until >= $1
		  AND grace_period_until <= $2
		  AND grace_notice_sent_at IS NULL
		  AND (grace_period_until, id) > ($3, $4)
		ORDER BY grace_period_until, id
		LIMIT $5
	`, now, now.Add(window), after.GraceUntil, after.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list grace expiring: %w", err)
	}
	return subs, nil
}

func (r *repository) ClaimGraceNotice(ctx context.Context, id int, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET grace_notice_sent_at = $2
		WHERE id = $1
		  AND delinquency_state = 'pending_retry'
		  AND grace_notice_sent_at IS NULL
	`, id, now)
	if err != nil {
		return false, apperr.Wrap(apperr.StoreWriteFailed, "subscription.ClaimGraceNotice", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Wrap(apperr.StoreWriteFailed, "subscription.ClaimGraceNotice", err)
	}
	return rows == 1, nil
}

func (r *repository) ListGraceElapsed(ctx context.Context, now time.Time, after Cursor, limit int) ([]*Subscription, error) {
	subs := []*Subscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE delinquency_state = 'pending_retry'
		  AND grace_period_until < $1
		  AND (grace_period_until, id) > ($2, $3)
		ORDER BY grace_period_until, id
		LIMIT $4
	`, now, after.GraceUntil, after.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list grace elapsed: %w", err)
	}
	return subs, nil
}

func (r *repository) MarkPastDue(ctx context.Context, id int, now time.Time) (bool, error) {
	moved := false
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var memberID int
		err := tx.QueryRowxContext(ctx, `
			UPDATE subscriptions
			SET delinquency_state = 'past_due', grace_period_until = NULL, updated_at = $2
			WHERE id = $1
			  AND delinquency_state = 'pending_retry'
			  AND grace_period_until < $2
			RETURNING member_id
		`, id, now).Scan(&memberID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := setAccess(ctx, tx, memberID, "restricted", now); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, apperr.Wrap(apperr.StoreWriteFailed, "subscription.MarkPastDue", err)
	}
	return moved, nil
}

func (r *repository) EnterGrace(ctx context.Context, id int, graceUntil, now time.Time) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE subscriptions
		SET delinquency_state = 'pending_retry',
		    grace_period_until = $2,
		    grace_notice_sent_at = NULL,
		    updated_at = $3
		WHERE id = $1 AND delinquency_state = 'current'
		RETURNING `+subscriptionColumns,
		id, graceUntil, now).StructScan(sub)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.InvalidTransition, "subscription.EnterGrace")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreWriteFailed, "subscription.EnterGrace", err)
	}
	return sub, nil
}

func (r *repository) Recover(ctx context.Context, id int, from DelinquencyState, now time.Time) (*Subscription, error) {
	sub := &Subscription{}
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			UPDATE subscriptions
			SET delinquency_state = 'current',
			    grace_period_until = NULL,
			    grace_notice_sent_at = NULL,
			    updated_at = $3
			WHERE id = $1 AND delinquency_state = $2
			RETURNING `+subscriptionColumns,
			id, from, now).StructScan(sub)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.InvalidTransition, "subscription.Recover")
		}
		if err != nil {
			return err
		}
		return setAccess(ctx, tx, sub.MemberID, "active", now)
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.StoreWriteFailed, "subscription.Recover", err)
	}
	return sub, nil
}

func setAccess(ctx context.Context, tx *sqlx.Tx, memberID int, state string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO member_access (member_id, access_state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id) DO UPDATE
		SET access_state = EXCLUDED.access_state, updated_at = EXCLUDED.updated_at
	`, memberID, state, now)
	return err
}
