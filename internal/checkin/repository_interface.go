package checkin

import (
	"context"
	"time"
)

type Repository interface {
	CreateToken(ctx context.Context, token *CheckinToken) error
	GetToken(ctx context.Context, token string) (*CheckinToken, error)
	// Consume marks the token used and records the check-in as one atomic
	// step. It succeeds for exactly one caller per token; others receive
	// TokenAlreadyUsed, or TokenExpired if the token lapsed before now.
	Consume(ctx context.Context, token string, staffID int, now time.Time) (*CheckinRecord, error)
}
