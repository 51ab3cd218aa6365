package subscription

import "time"

type DelinquencyState string

const (
	StateCurrent      DelinquencyState = "current"
	StatePendingRetry DelinquencyState = "pending_retry"
	StatePastDue      DelinquencyState = "past_due"
)

// Subscription carries billing delinquency for one member. GracePeriodUntil
// is set exactly while the state is pending_retry.
type Subscription struct {
	ID                int              `db:"id" json:"id"`
	MemberID          int              `db:"member_id" json:"member_id"`
	DelinquencyState  DelinquencyState `db:"delinquency_state" json:"delinquency_state"`
	GracePeriodUntil  *time.Time       `db:"grace_period_until" json:"grace_period_until,omitempty"`
	GraceNoticeSentAt *time.Time       `db:"grace_notice_sent_at" json:"grace_notice_sent_at,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

type SweepResult struct {
	Notified     int `json:"notified"`
	Transitioned int `json:"transitioned"`
	Scanned      int `json:"scanned"`
	Failed       int `json:"failed"`
}

// Cursor is a keyset position in (grace_period_until, id) order. The zero
// value starts from the beginning.
type Cursor struct {
	GraceUntil time.Time
	ID         int
}

func cursorAfter(sub *Subscription) Cursor {
	c := Cursor{ID: sub.ID}
	if sub.GracePeriodUntil != nil {
		c.GraceUntil = *sub.GracePeriodUntil
	}
	return c
}
