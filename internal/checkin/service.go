package checkin

import (
	"context"
	"errors"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/clock"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/member"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/metrics"

	"github.com/google/uuid"
)

type Service interface {
	Issue(ctx context.Context, userID, facilityID int) (*CheckinToken, error)
	Redeem(ctx context.Context, staffUserID int, token string) (*CheckinRecord, error)
}

type service struct {
	repo    Repository
	members member.Repository
	clock   clock.Clock
	cfg     config.CheckinConfig
}

func NewService(repo Repository, members member.Repository, clk clock.Clock, cfg config.CheckinConfig) Service {
	return &service{
		repo:    repo,
		members: members,
		clock:   clk,
		cfg:     cfg,
	}
}

func (s *service) Issue(ctx context.Context, userID, facilityID int) (*CheckinToken, error) {
	const op = "checkin.Issue"

	if facilityID <= 0 {
		return nil, apperr.New(apperr.InvalidRequest, op)
	}

	m, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if m.Status != member.StatusActive {
		return nil, apperr.New(apperr.MembershipInactive, op)
	}

	now := s.clock.Now()
	tok := &CheckinToken{
		// Version 4 UUIDs carry 122 random bits from crypto/rand.
		Token:      uuid.NewString(),
		MemberID:   m.ID,
		FacilityID: facilityID,
		ExpiresAt:  now.Add(s.cfg.TokenTTL),
		CreatedBy:  userID,
		CreatedAt:  now,
	}

	if err := s.repo.CreateToken(ctx, tok); err != nil {
		logger.Error("failed to persist check-in token", "member_id", m.ID, "facility_id", facilityID, "error", err)
		return nil, asStoreError(op, err)
	}

	metrics.RecordTokenIssued()
	logger.Info("check-in token issued", "member_id", m.ID, "facility_id", facilityID, "expires_at", tok.ExpiresAt)
	return tok, nil
}

func (s *service) Redeem(ctx context.Context, staffUserID int, token string) (*CheckinRecord, error) {
	rec, err := s.redeem(ctx, staffUserID, token)
	if err != nil {
		metrics.RecordRedemption(string(apperr.KindOf(err)))
		return nil, err
	}
	metrics.RecordRedemption("ok")
	return rec, nil
}

func (s *service) redeem(ctx context.Context, staffUserID int, token string) (*CheckinRecord, error) {
	const op = "checkin.Redeem"

	tok, err := s.repo.GetToken(ctx, token)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if tok.Used {
		return nil, apperr.New(apperr.TokenAlreadyUsed, op)
	}

	now := s.clock.Now()
	if tok.Expired(now) {
		return nil, apperr.New(apperr.TokenExpired, op)
	}

	staff, err := s.members.GetStaffByUserID(ctx, staffUserID)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if staff.FacilityID != tok.FacilityID {
		return nil, apperr.New(apperr.StaffFacilityMismatch, op)
	}

	m, err := s.members.GetByID(ctx, tok.MemberID)
	if err != nil {
		return nil, lookupError(op, err)
	}
	if !m.CanEnter() {
		return nil, apperr.New(apperr.MemberInactive, op)
	}

	rec, err := s.repo.Consume(ctx, token, staff.ID, now)
	if err != nil {
		if !errors.Is(err, apperr.ErrTokenAlreadyUsed) && !errors.Is(err, apperr.ErrTokenExpired) {
			logger.Error("check-in redemption write failed", "member_id", tok.MemberID, "staff_id", staff.ID, "error", err)
		}
		return nil, asStoreError(op, err)
	}

	logger.Info("member checked in",
		"checkin_id", rec.ID,
		"member_id", rec.MemberID,
		"facility_id", rec.FacilityID,
		"staff_id", rec.StaffID,
	)
	return rec, nil
}

// lookupError keeps typed errors from the stores and hides anything else
// behind Internal.
func lookupError(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.Internal, op, err)
}

func asStoreError(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Wrap(apperr.StoreWriteFailed, op, err)
}
