package report

import (
	"context"
	"time"
)

type Repository interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]Schedule, error)
	// Advance moves a schedule forward only if its next_run_at still equals
	// prevNext. It reports false when another run got there first.
	Advance(ctx context.Context, id int, prevNext, lastRun, next time.Time) (bool, error)
}
