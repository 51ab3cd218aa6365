package classes

import (
	"context"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/clock"
)

type Service interface {
	GetClass(ctx context.Context, id int) (*ClassInstance, error)
	ListSchedule(ctx context.Context, facilityID int) ([]ClassWithAvailability, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{
		repo:  repo,
		clock: clk,
	}
}

func (s *service) GetClass(ctx context.Context, id int) (*ClassInstance, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.ClassNotFound {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Internal, "classes.GetClass", err)
	}
	return c, nil
}

func (s *service) ListSchedule(ctx context.Context, facilityID int) ([]ClassWithAvailability, error) {
	if facilityID <= 0 {
		return nil, apperr.New(apperr.InvalidRequest, "classes.ListSchedule")
	}
	result, err := s.repo.ListWithAvailability(ctx, facilityID, s.clock.Now())
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "classes.ListSchedule", err)
	}
	return result, nil
}
