package booking

import "time"

type Status string

const (
	StatusBooked     Status = "booked"
	StatusWaitlisted Status = "waitlisted"
	StatusCanceled   Status = "canceled"
)

// PromotedEvent is published when a waitlisted booking takes a seat.
const PromotedEvent = "waitlist.promoted"

type ClassBooking struct {
	ID              int        `db:"id" json:"id"`
	ClassInstanceID int        `db:"class_instance_id" json:"class_instance_id"`
	MemberID        int        `db:"member_id" json:"member_id"`
	Status          Status     `db:"status" json:"status"`
	BookedAt        time.Time  `db:"booked_at" json:"booked_at"`
	PromotedAt      *time.Time `db:"promoted_at" json:"promoted_at,omitempty"`
}

type RosterEntry struct {
	ClassBooking
	MemberName  string `db:"member_name" json:"member_name"`
	MemberEmail string `db:"member_email" json:"member_email"`
}

type Roster struct {
	ClassInstanceID int           `json:"class_instance_id"`
	Capacity        int           `json:"capacity"`
	Booked          []RosterEntry `json:"booked"`
	Waitlisted      []RosterEntry `json:"waitlisted"`
}

type SweepResult struct {
	Promoted int `json:"promoted"`
	Scanned  int `json:"scanned"`
	Failed   int `json:"failed"`
}
