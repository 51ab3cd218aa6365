package classes

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*ClassInstance, error)
	// ListPromotable returns scheduled instances starting at or after now
	// that have a free seat and someone waitlisted, earliest first and
	// strictly after the cursor.
	ListPromotable(ctx context.Context, now time.Time, after Cursor, limit int) ([]ClassWithAvailability, error)
	ListWithAvailability(ctx context.Context, facilityID int, now time.Time) ([]ClassWithAvailability, error)
}
