package subscription

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int) (*Subscription, error)
	// ListGraceExpiring returns pending_retry rows whose grace ends within
	// [now, now+window] and that have not been notified yet, positioned
	// strictly after the cursor.
	ListGraceExpiring(ctx context.Context, now time.Time, window time.Duration, after Cursor, limit int) ([]*Subscription, error)
	ClaimGraceNotice(ctx context.Context, id int, now time.Time) (bool, error)
	ListGraceElapsed(ctx context.Context, now time.Time, after Cursor, limit int) ([]*Subscription, error)
	// MarkPastDue moves an elapsed pending_retry row to past_due and
	// restricts the member in one transaction. It reports false when the row
	// no longer qualifies.
	MarkPastDue(ctx context.Context, id int, now time.Time) (bool, error)
	EnterGrace(ctx context.Context, id int, graceUntil, now time.Time) (*Subscription, error)
	Recover(ctx context.Context, id int, from DelinquencyState, now time.Time) (*Subscription, error)
}
