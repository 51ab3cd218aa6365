package checkin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/db"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateToken(ctx context.Context, t *CheckinToken) error {
	query := `
		INSERT INTO checkin_tokens (token, member_id, facility_id, expires_at, used, created_by, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, t.Token, t.MemberID, t.FacilityID, t.ExpiresAt, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return apperr.Wrap(apperr.StoreWriteFailed, "checkin.CreateToken", err)
	}
	return nil
}

func (r *repository) GetToken(ctx context.Context, token string) (*CheckinToken, error) {
	query := `
		SELECT token, member_id, facility_id, expires_at, used, used_at, used_by, created_by, created_at
		FROM checkin_tokens
		WHERE token = $1
	`

	var t CheckinToken
	if err := r.db.GetContext(ctx, &t, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.TokenNotFound, "checkin.GetToken")
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) Consume(ctx context.Context, token string, staffID int, now time.Time) (*CheckinRecord, error) {
	var rec CheckinRecord

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		claim := `
			UPDATE checkin_tokens
			SET used = TRUE, used_at = $2, used_by = $3
			WHERE token = $1 AND used = FALSE AND expires_at >= $2
			RETURNING member_id, facility_id
		`

		var memberID, facilityID int
		err := tx.QueryRowxContext(ctx, claim, token, now, staffID).Scan(&memberID, &facilityID)
		if errors.Is(err, sql.ErrNoRows) {
			return classifyLostClaim(ctx, tx, token, now)
		}
		if err != nil {
			return apperr.Wrap(apperr.StoreWriteFailed, "checkin.Consume", err)
		}

		insert := `
			INSERT INTO checkins (token, member_id, facility_id, staff_id, checked_in_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, token, member_id, facility_id, staff_id, checked_in_at
		`
		if err := tx.GetContext(ctx, &rec, insert, token, memberID, facilityID, staffID, now); err != nil {
			return apperr.Wrap(apperr.StoreWriteFailed, "checkin.Consume", err)
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.StoreWriteFailed, "checkin.Consume", err)
	}
	return &rec, nil
}

// classifyLostClaim explains why the guarded update matched no row.
func classifyLostClaim(ctx context.Context, tx *sqlx.Tx, token string, now time.Time) error {
	var state struct {
		Used      bool      `db:"used"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	err := tx.GetContext(ctx, &state, `SELECT used, expires_at FROM checkin_tokens WHERE token = $1`, token)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.New(apperr.TokenNotFound, "checkin.Consume")
	case err != nil:
		return apperr.Wrap(apperr.StoreWriteFailed, "checkin.Consume", err)
	case state.Used:
		return apperr.New(apperr.TokenAlreadyUsed, "checkin.Consume")
	case now.After(state.ExpiresAt):
		return apperr.New(apperr.TokenExpired, "checkin.Consume")
	default:
		return apperr.New(apperr.StoreWriteFailed, "checkin.Consume")
	}
}
