package report

import (
	"context"
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
}

type service struct {
	repo  Repository
	jobs  notify.Publisher
	clock clock.Clock
	cfg   config.ReportConfig
}

func NewService(repo Repository, jobs notify.Publisher, clk clock.Clock, cfg config.ReportConfig) Service {
	return &service{
		repo:  repo,
		jobs:  jobs,
		clock: clk,
		cfg:   cfg,
	}
}

// Sweep advances every due schedule and queues one generation job for each
// schedule this run advanced.
func (s *service) Sweep(ctx context.Context) (*SweepResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SweepTimeout)
	defer cancel()

	start := time.Now()
	now := s.clock.Now()

	due, err := s.repo.ListDue(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "report.Sweep", err)
	}

	res := &SweepResult{Processed: []int{}, Scanned: len(due)}
	for _, sch := range due {
		if ctx.Err() != nil {
			logger.Warn("report sweep budget exhausted", "scanned", res.Scanned, "processed", len(res.Processed))
			break
		}

		next, err := NextRun(sch.Cadence, sch.AnchorAt, sch.Timezone, now)
		if err != nil {
			res.Failed++
			logger.Error("cannot compute next report run", "schedule_id", sch.ID, "error", err)
			continue
		}

		advanced, err := s.repo.Advance(ctx, sch.ID, sch.NextRunAt, now, next)
		if err != nil {
			res.Failed++
			logger.Error("failed to advance report schedule", "schedule_id", sch.ID, "error", err)
			continue
		}
		if !advanced {
			logger.Debug("report schedule advanced elsewhere", "schedule_id", sch.ID)
			continue
		}

		s.jobs.Publish(notify.Event{
			Name: GenerateEvent,
			Payload: map[string]any{
				"schedule_id":     sch.ID,
				"report_id":       sch.ReportID,
				"format":          sch.Format,
				"delivery_emails": []string(sch.DeliveryEmails),
			},
			OccurredAt: now,
		})
		res.Processed = append(res.Processed, sch.ID)
		logger.Info("report schedule advanced", "schedule_id", sch.ID, "next_run_at", next)
	}

	metrics.RecordSweep("reports", time.Since(start).Seconds(), map[string]int{
		"processed": len(res.Processed),
		"failed":    res.Failed,
	})
	logger.Info("report sweep finished", "scanned", res.Scanned, "processed", len(res.Processed), "failed", res.Failed)
	return res, nil
}
