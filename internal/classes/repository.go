package classes

import (
	"context"
	"database/sql"
	"errors"
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

func (r *repository) GetByID(ctx context.Context, id int) (*ClassInstance, error) {
	query := `
		SELECT id, facility_id, name, capacity, status, start_at, created_at
		FROM class_instances
		WHERE id = $1
	`

	var c ClassInstance
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ClassNotFound, "classes.GetByID")
	}
	if err != nil {
		return nil, fmt.Errorf("get class instance %d: %w", id, err)
	}
	return &c, nil
}

func (r *repository) ListPromotable(ctx context.Context, now time.Time, after Cursor, limit int) ([]ClassWithAvailability, error) {
	query := `
		SELECT
			c.id, c.facility_id, c.name, c.capacity, c.status, c.start_at, c.created_at,
			COUNT(b.id) FILTER (WHERE b.status = 'booked') AS booked_count,
			COUNT(b.id) FILTER (WHERE b.status = 'waitlisted') AS waitlisted_count
		FROM class_instances c
		JOIN class_bookings b ON b.class_instance_id = c.id
		WHERE c.status = 'scheduled' AND c.start_at >= $1
		  AND (c.start_at, c.id) > ($2, $3)
		GROUP BY c.id
		HAVING COUNT(b.id) FILTER (WHERE b.status = 'booked') < c.capacity
		   AND COUNT(b.id) FILTER (WHERE b.status = 'waitlisted') > 0
		ORDER BY c.start_at ASC, c.id ASC
		LIMIT $4
	`

	var rows []ClassWithAvailability
	if err := r.db.SelectContext(ctx, &rows, query, now, after.StartAt, after.ID, limit); err != nil {
		return nil, fmt.Errorf("list promotable classes: %w", err)
	}

	result := make([]ClassWithAvailability, 0, len(rows))
	for _, row := range rows {
		result = append(result, NewClassWithAvailability(row.ClassInstance, row.BookedCount, row.WaitlistedCount))
	}
	return result, nil
}

func (r *repository) ListWithAvailability(ctx context.Context, facilityID int, now time.Time) ([]ClassWithAvailability, error) {
	query := `
		SELECT
			c.id, c.facility_id, c.name, c.capacity, c.status, c.start_at, c.created_at,
			COUNT(b.id) FILTER (WHERE b.status = 'booked') AS booked_count,
			COUNT(b.id) FILTER (WHERE b.status = 'waitlisted') AS waitlisted_count
		FROM class_instances c
		LEFT JOIN class_bookings b ON b.class_instance_id = c.id
		WHERE c.facility_id = $1 AND c.status = 'scheduled' AND c.start_at >= $2
		GROUP BY c.id
		ORDER BY c.start_at ASC
	`

	var rows []ClassWithAvailability
	if err := r.db.SelectContext(ctx, &rows, query, facilityID, now); err != nil {
		return nil, fmt.Errorf("list classes for facility %d: %w", facilityID, err)
	}

	result := make([]ClassWithAvailability, 0, len(rows))
	for _, row := range rows {
		result = append(result, NewClassWithAvailability(row.ClassInstance, row.BookedCount, row.WaitlistedCount))
	}
	return result, nil
}
