package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/classes"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/clock"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/member"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/metrics"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/notify"
)

type Service interface {
	Sweep(ctx context.Context) (*SweepResult, error)
	Promote(ctx context.Context, classID int) (bool, error)
	Book(ctx context.Context, userID, classID int) (*ClassBooking, error)
	Cancel(ctx context.Context, userID, bookingID int) (*ClassBooking, error)
	Roster(ctx context.Context, classID int) (*Roster, error)
}

type service struct {
	repo      Repository
	classRepo classes.Repository
	members   member.Repository
	publisher notify.Publisher
	clock     clock.Clock
	cfg       config.WaitlistConfig
}

func NewService(
	repo Repository,
	classRepo classes.Repository,
	members member.Repository,
	publisher notify.Publisher,
	clk clock.Clock,
	cfg config.WaitlistConfig,
) Service {
	return &service{
		repo:      repo,
		classRepo: classRepo,
		members:   members,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// Sweep fills free seats in upcoming classes from their waitlists, oldest
// request first. Only classes with a free seat and a waitlist are listed,
// and a keyset cursor pages past classes that fail, so later classes are
// always reached within the budget.
func (s *service) Sweep(ctx context.Context) (*SweepResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	start := time.Now()
	now := s.clock.Now()
	res := &SweepResult{}

	var after classes.Cursor
	for done := false; !done; {
		batch, err := s.classRepo.ListPromotable(ctx, now, after, s.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				logger.Warn("waitlist sweep budget exhausted", "scanned", res.Scanned)
				break
			}
			return nil, apperr.Wrap(apperr.Internal, "booking.Sweep", err)
		}
		done = len(batch) == 0 || len(batch) < s.cfg.BatchSize

		for _, cls := range batch {
			if ctx.Err() != nil {
				logger.Warn("waitlist sweep budget exhausted", "scanned", res.Scanned)
				done = true
				break
			}
			res.Scanned++
			after = classes.Cursor{StartAt: cls.StartAt, ID: cls.ID}
			s.fill(ctx, cls, now, res)
		}
	}

	metrics.RecordSweep("waitlist", time.Since(start).Seconds(), map[string]int{
		"promoted": res.Promoted,
		"failed":   res.Failed,
	})
	logger.Info("waitlist sweep finished", "scanned", res.Scanned, "promoted", res.Promoted, "failed", res.Failed)
	return res, nil
}

// fill promotes up to min(free seats, waitlisted) bookings. Promote re-checks
// capacity under the class lock, so stale counts only cost an extra call.
func (s *service) fill(ctx context.Context, cls classes.ClassWithAvailability, now time.Time, res *SweepResult) {
	for n := min(cls.Available, cls.WaitlistedCount); n > 0; n-- {
		_, err := s.promote(ctx, cls.ID, now)
		if errors.Is(err, ErrCapacityReached) || errors.Is(err, ErrWaitlistEmpty) {
			return
		}
		if err != nil {
			res.Failed++
			logger.Error("waitlist promotion failed", "class_instance_id", cls.ID, "error", err)
			return
		}
		res.Promoted++
	}
}

// Promote seats at most one waitlisted booking. Losing the race for the last
// seat is reported as false, not as an error.
func (s *service) Promote(ctx context.Context, classID int) (bool, error) {
	_, err := s.promote(ctx, classID, s.clock.Now())
	if errors.Is(err, ErrCapacityReached) || errors.Is(err, ErrWaitlistEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) promote(ctx context.Context, classID int, now time.Time) (*ClassBooking, error) {
	b, err := s.repo.Promote(ctx, classID, now)
	if err != nil {
		return nil, err
	}

	metrics.RecordPromotion()
	logger.Info("waitlisted booking promoted", "booking_id", b.ID, "class_instance_id", classID, "member_id", b.MemberID)
	s.publisher.Publish(notify.Event{
		Name:     PromotedEvent,
		MemberID: b.MemberID,
		Payload: map[string]any{
			"booking_id":        b.ID,
			"class_instance_id": classID,
		},
		OccurredAt: now,
	})
	return b, nil
}

func (s *service) Book(ctx context.Context, userID, classID int) (*ClassBooking, error) {
	const op = "booking.Book"

	m, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if m.Status != member.StatusActive {
		return nil, apperr.New(apperr.MembershipInactive, op)
	}

	b, err := s.repo.Book(ctx, classID, m.ID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(string(b.Status))
	logger.Info("class booked", "booking_id", b.ID, "class_instance_id", classID, "member_id", m.ID, "status", b.Status)
	return b, nil
}

func (s *service) Cancel(ctx context.Context, userID, bookingID int) (*ClassBooking, error) {
	const op = "booking.Cancel"

	m, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		return nil, lookupError(op, err)
	}

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if b.MemberID != m.ID {
		return nil, apperr.New(apperr.Forbidden, op)
	}

	canceled, err := s.repo.Cancel(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation()
	logger.Info("booking canceled", "booking_id", bookingID, "class_instance_id", b.ClassInstanceID, "was", b.Status)
	return canceled, nil
}

func (s *service) Roster(ctx context.Context, classID int) (*Roster, error) {
	const op = "booking.Roster"

	cls, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, lookupError(op, err)
	}

	entries, err := s.repo.Roster(ctx, classID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, op, err)
	}

	roster := &Roster{
		ClassInstanceID: cls.ID,
		Capacity:        cls.Capacity,
		Booked:          []RosterEntry{},
		Waitlisted:      []RosterEntry{},
	}
	for _, e := range entries {
		switch e.Status {
		case StatusBooked:
			roster.Booked = append(roster.Booked, e)
		case StatusWaitlisted:
			roster.Waitlisted = append(roster.Waitlisted, e)
		}
	}
	return roster, nil
}

func lookupError(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.Internal, op, err)
}
