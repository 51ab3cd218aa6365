package booking

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*ClassBooking, error)
	// Book takes a seat when one is free and nobody is queued, otherwise it
	// joins the waitlist.
	Book(ctx context.Context, classID, memberID int, now time.Time) (*ClassBooking, error)
	// Promote seats the earliest waitlisted booking. It returns
	// ErrCapacityReached when the class is full and ErrWaitlistEmpty when
	// nobody is queued.
	Promote(ctx context.Context, classID int, now time.Time) (*ClassBooking, error)
	Cancel(ctx context.Context, id int) (*ClassBooking, error)
	Roster(ctx context.Context, classID int) ([]RosterEntry, error)
}
