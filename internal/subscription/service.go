package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/clock"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/metrics"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/notify"
)

type Service interface {
	Sweep(ctx context.Context) (*SweepResult, error)
	RecordPaymentFailed(ctx context.Context, subscriptionID int) (*Subscription, error)
	RecordPaymentSucceeded(ctx context.Context, subscriptionID int) (*Subscription, error)
}

type service struct {
	repo      Repository
	publisher notify.Publisher
	clock     clock.Clock
	cfg       config.BillingConfig
}

func NewService(repo Repository, publisher notify.Publisher, clk clock.Clock, cfg config.BillingConfig) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// Sweep warns members whose grace period ends within the notice window and
// moves elapsed grace periods to past_due. Every predicate is re-read from
// the store, so running it again right away changes nothing. Both phases
// page with a keyset cursor, so rows that keep failing cannot hold back the
// rows behind them.
func (s *service) Sweep(ctx context.Context) (*SweepResult, error) {
	const op = "subscription.Sweep"

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	start := time.Now()
	now := s.clock.Now()
	res := &SweepResult{}

	exhausted, err := s.page(ctx, "notify", res, func(after Cursor) ([]*Subscription, error) {
		return s.repo.ListGraceExpiring(ctx, now, s.cfg.GraceNoticeWindow, after, s.cfg.BatchSize)
	}, func(sub *Subscription) {
		s.notifyExpiring(ctx, sub, now, res)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, op, err)
	}
	if exhausted {
		return s.finish(start, res), nil
	}

	_, err = s.page(ctx, "transition", res, func(after Cursor) ([]*Subscription, error) {
		return s.repo.ListGraceElapsed(ctx, now, after, s.cfg.BatchSize)
	}, func(sub *Subscription) {
		s.markPastDue(ctx, sub, now, res)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, op, err)
	}
	return s.finish(start, res), nil
}

// page walks list batch by batch until a short batch or the sweep budget
// ends it. It reports whether the budget ran out.
func (s *service) page(
	ctx context.Context,
	phase string,
	res *SweepResult,
	list func(after Cursor) ([]*Subscription, error),
	handle func(sub *Subscription),
) (bool, error) {
	var after Cursor
	for {
		batch, err := list(after)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("delinquency sweep budget exhausted", "phase", phase, "scanned", res.Scanned)
				return true, nil
			}
			return false, err
		}
		for _, sub := range batch {
			if ctx.Err() != nil {
				logger.Warn("delinquency sweep budget exhausted", "phase", phase, "scanned", res.Scanned)
				return true, nil
			}
			res.Scanned++
			handle(sub)
			after = cursorAfter(sub)
		}
		if len(batch) == 0 || len(batch) < s.cfg.BatchSize {
			return false, nil
		}
	}
}

func (s *service) notifyExpiring(ctx context.Context, sub *Subscription, now time.Time, res *SweepResult) {
	claimed, err := s.repo.ClaimGraceNotice(ctx, sub.ID, now)
	if err != nil {
		res.Failed++
		logger.Error("failed to claim grace notice", "subscription_id", sub.ID, "error", err)
		return
	}
	if !claimed {
		return
	}
	s.publisher.Publish(notify.Event{
		Name:     s.cfg.GraceExpiringEvent,
		MemberID: sub.MemberID,
		Payload: map[string]any{
			"subscription_id":    sub.ID,
			"grace_period_until": sub.GracePeriodUntil,
		},
		OccurredAt: now,
	})
	res.Notified++
}

func (s *service) markPastDue(ctx context.Context, sub *Subscription, now time.Time, res *SweepResult) {
	moved, err := s.repo.MarkPastDue(ctx, sub.ID, now)
	if err != nil {
		res.Failed++
		logger.Error("failed to mark subscription past due", "subscription_id", sub.ID, "error", err)
		return
	}
	if !moved {
		return
	}
	res.Transitioned++
	metrics.RecordTransition(string(StatePendingRetry), string(StatePastDue))
	logger.Info("subscription past due, access restricted", "subscription_id", sub.ID, "member_id", sub.MemberID)
}

func (s *service) finish(start time.Time, res *SweepResult) *SweepResult {
	metrics.RecordSweep("delinquency", time.Since(start).Seconds(), map[string]int{
		"notified":     res.Notified,
		"transitioned": res.Transitioned,
		"failed":       res.Failed,
	})
	logger.Info("delinquency sweep finished",
		"scanned", res.Scanned,
		"notified", res.Notified,
		"transitioned", res.Transitioned,
		"failed", res.Failed,
	)
	return res
}

func (s *service) RecordPaymentFailed(ctx context.Context, subscriptionID int) (*Subscription, error) {
	const op = "subscription.RecordPaymentFailed"

	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if !CanTransition(sub.DelinquencyState, StatePendingRetry) {
		return nil, rejectTransition(op, sub, StatePendingRetry)
	}

	now := s.clock.Now()
	updated, err := s.repo.EnterGrace(ctx, sub.ID, now.Add(s.cfg.GracePeriod), now)
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(sub.DelinquencyState), string(StatePendingRetry))
	logger.Info("payment failed, grace period started", "subscription_id", sub.ID, "grace_period_until", updated.GracePeriodUntil)
	return updated, nil
}

func (s *service) RecordPaymentSucceeded(ctx context.Context, subscriptionID int) (*Subscription, error) {
	const op = "subscription.RecordPaymentSucceeded"

	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if !CanTransition(sub.DelinquencyState, StateCurrent) {
		return nil, rejectTransition(op, sub, StateCurrent)
	}

	updated, err := s.repo.Recover(ctx, sub.ID, sub.DelinquencyState, s.clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(sub.DelinquencyState), string(StateCurrent))
	logger.Info("payment recovered", "subscription_id", sub.ID, "from", sub.DelinquencyState)
	return updated, nil
}

func lookupError(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.Internal, op, err)
}

func rejectTransition(op string, sub *Subscription, to DelinquencyState) error {
	logger.Warn("delinquency transition rejected",
		"subscription_id", sub.ID,
		"from", sub.DelinquencyState,
		"to", to,
		"allowed", validTransitionsFrom(sub.DelinquencyState),
	)
	return apperr.New(apperr.InvalidTransition, op)
}
