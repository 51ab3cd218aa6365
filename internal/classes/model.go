package classes

import "time"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

type ClassInstance struct {
	ID         int       `db:"id" json:"id"`
	FacilityID int       `db:"facility_id" json:"facility_id"`
	Name       string    `db:"name" json:"name"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Status     Status    `db:"status" json:"status"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Bookable reports whether new bookings and promotions are accepted at now.
func (c *ClassInstance) Bookable(now time.Time) bool {
	return c.Status == StatusScheduled && !c.StartAt.Before(now)
}

type ClassWithAvailability struct {
	ClassInstance
	BookedCount     int  `db:"booked_count" json:"booked_count"`
	WaitlistedCount int  `db:"waitlisted_count" json:"waitlisted_count"`
	Available       int  `json:"available"`
	IsFull          bool `json:"is_full"`
}

func NewClassWithAvailability(c ClassInstance, booked, waitlisted int) ClassWithAvailability {
	available := c.Capacity - booked
	if available < 0 {
		available = 0
	}
	return ClassWithAvailability{
		ClassInstance:   c,
		BookedCount:     booked,
		WaitlistedCount: waitlisted,
		Available:       available,
		IsFull:          available == 0,
	}
}

// Cursor is a keyset position in (start_at, id) order.
type Cursor struct {
	StartAt time.Time
	ID      int
}
