package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/classes"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrCapacityReached = errors.New("class capacity reached")
	ErrWaitlistEmpty   = errors.New("no waitlisted bookings")
)

const uniqueViolation = "23505"

const bookingColumns = `id, class_instance_id, member_id, status, booked_at, promoted_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int) (*ClassBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM class_bookings WHERE id = $1`

	var b ClassBooking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.BookingNotFound, "booking.GetByID")
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return &b, nil
}

func (r *repository) Book(ctx context.Context, classID, memberID int, now time.Time) (*ClassBooking, error) {
	var b ClassBooking
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cls, err := lockClass(ctx, tx, classID)
		if err != nil {
			return err
		}
		if !cls.Bookable(now) {
			return apperr.New(apperr.ClassUnavailable, "booking.Book")
		}

		var counts struct {
			Booked     int `db:"booked"`
			Waitlisted int `db:"waitlisted"`
		}
		err = tx.GetContext(ctx, &counts, `
			SELECT
				COUNT(*) FILTER (WHERE status = 'booked') AS booked,
				COUNT(*) FILTER (WHERE status = 'waitlisted') AS waitlisted
			FROM class_bookings
			WHERE class_instance_id = $1
		`, classID)
		if err != nil {
			return err
		}

		status := StatusWaitlisted
		if counts.Booked < cls.Capacity && counts.Waitlisted == 0 {
			status = StatusBooked
		}

		err = tx.GetContext(ctx, &b, `
			INSERT INTO class_bookings (class_instance_id, member_id, status, booked_at)
			VALUES ($1, $2, $3, $4)
			RETURNING `+bookingColumns,
			classID, memberID, status, now)
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.New(apperr.AlreadyBooked, "booking.Book")
		}
		return err
	})
	if err != nil {
		return nil, storeError("booking.Book", err)
	}
	return &b, nil
}

func (r *repository) Promote(ctx context.Context, classID int, now time.Time) (*ClassBooking, error) {
	var b ClassBooking
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		cls, err := lockClass(ctx, tx, classID)
		if err != nil {
			return err
		}
		if !cls.Bookable(now) {
			return apperr.New(apperr.ClassUnavailable, "booking.Promote")
		}

		var booked int
		err = tx.GetContext(ctx, &booked, `
			SELECT COUNT(*)
			FROM class_bookings
			WHERE class_instance_id = $1 AND status = 'booked'
		`, classID)
		if err != nil {
			return err
		}
		if booked >= cls.Capacity {
			return ErrCapacityReached
		}

		var nextID int
		err = tx.GetContext(ctx, &nextID, `
			SELECT id
			FROM class_bookings
			WHERE class_instance_id = $1 AND status = 'waitlisted'
			ORDER BY booked_at ASC, id ASC
			LIMIT 1
		`, classID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWaitlistEmpty
		}
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &b, `
			UPDATE class_bookings
			SET status = 'booked', promoted_at = $2
			WHERE id = $1 AND status = 'waitlisted'
			RETURNING `+bookingColumns,
			nextID, now)
		if errors.Is(err, sql.ErrNoRows) {
			// canceled between the select and the update
			return ErrWaitlistEmpty
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCapacityReached) || errors.Is(err, ErrWaitlistEmpty) {
			return nil, err
		}
		return nil, storeError("booking.Promote", err)
	}
	return &b, nil
}

func (r *repository) Cancel(ctx context.Context, id int) (*ClassBooking, error) {
	query := `
		UPDATE class_bookings
		SET status = 'canceled'
		WHERE id = $1 AND status <> 'canceled'
		RETURNING ` + bookingColumns

	var b ClassBooking
	err := r.db.GetContext(ctx, &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.BookingNotFound, "booking.Cancel")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.StoreWriteFailed, "booking.Cancel", err)
	}
	return &b, nil
}

func (r *repository) Roster(ctx context.Context, classID int) ([]RosterEntry, error) {
	query := `
		SELECT
			b.id,
			b.class_instance_id,
			b.member_id,
			b.status,
			b.booked_at,
			b.promoted_at,
			m.name AS member_name,
			m.email AS member_email
		FROM class_bookings b
		JOIN members m ON m.id = b.member_id
		WHERE b.class_instance_id = $1 AND b.status <> 'canceled'
		ORDER BY b.status ASC, b.booked_at ASC, b.id ASC
	`

	entries := []RosterEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, classID); err != nil {
		return nil, fmt.Errorf("roster for class %d: %w", classID, err)
	}
	return entries, nil
}

// lockClass reads the class row with FOR UPDATE so seat counts taken in the
// same transaction cannot go stale.
func lockClass(ctx context.Context, tx *sqlx.Tx, classID int) (*classes.ClassInstance, error) {
	var cls classes.ClassInstance
	err := tx.GetContext(ctx, &cls, `
		SELECT id, facility_id, name, capacity, status, start_at, created_at
		FROM class_instances
		WHERE id = $1
		FOR UPDATE
	`, classID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ClassNotFound, "booking.lockClass")
	}
	if err != nil {
		return nil, err
	}
	return &cls, nil
}

func storeError(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.StoreWriteFailed, op, err)
}
