package member

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const memberColumns = `
	m.id, m.user_id, m.name, m.email, m.status,
	COALESCE(a.access_state, 'active') AS access_state,
	m.created_at
`

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Member, error) {
	query := `
		SELECT` + memberColumns + `
		FROM members m
		LEFT JOIN member_access a ON a.member_id = m.id
		WHERE m.user_id = $1
	`

	var m Member
	if err := r.db.GetContext(ctx, &m, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.MemberNotFound, "member.GetByUserID")
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Member, error) {
	query := `
		SELECT` + memberColumns + `
		FROM members m
		LEFT JOIN member_access a ON a.member_id = m.id
		WHERE m.id = $1
	`

	var m Member
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.MemberNotFound, "member.GetByID")
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) GetStaffByUserID(ctx context.Context, userID int) (*Staff, error) {
	query := `
		SELECT id, user_id, facility_id, name, created_at
		FROM staff
		WHERE user_id = $1
	`

	var s Staff
	if err := r.db.GetContext(ctx, &s, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.StaffNotFound, "member.GetStaffByUserID")
		}
		return nil, err
	}
	return &s, nil
}
