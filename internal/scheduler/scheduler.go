package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"

	"github.com/robfig/cron/v3"
)

// Job is a periodic entry point. Run receives a context that is canceled
// when the scheduler stops.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler triggers sweeps on cron specs. A job that is still running when
// its next tick fires is skipped for that tick.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.SchedulerConfig
	mu       sync.Mutex
	entryIDs map[string]cron.EntryID
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopped  chan struct{}
}

func New(cfg config.SchedulerConfig) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     newCron(),
		cfg:      cfg,
		entryIDs: make(map[string]cron.EntryID),
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
	}
}

func newCron() *cron.Cron {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	log := cronLogger{}
	return cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
}

// Register adds job. Names are unique; registering a name twice is a no-op.
func (s *Scheduler) Register(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entryIDs[job.Name]; exists {
		return nil
	}
	if job.Spec == "" {
		return fmt.Errorf("job %q has no schedule", job.Name)
	}

	j := job
	id, err := s.cron.AddFunc(j.Spec, func() { s.execute(j) })
	if err != nil {
		return fmt.Errorf("invalid cron expression for %q: %w", j.Name, err)
	}
	s.entryIDs[j.Name] = id
	logger.Info("scheduler: registered job", "job", j.Name, "spec", j.Spec)
	return nil
}

func (s *Scheduler) execute(job Job) {
	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		logger.Error("scheduler: job failed", "job", job.Name, "duration", time.Since(start), "error", err)
		return
	}
	logger.Debug("scheduler: job finished", "job", job.Name, "duration", time.Since(start))
}

// Start begins ticking. It returns immediately and stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Enabled {
		logger.Info("scheduler disabled by config")
		s.Stop()
		return
	}

	s.cron.Start()
	logger.Info("scheduler started", "jobs", len(s.JobNames()))

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.stopped:
		}
	}()
}

// Stop cancels running jobs and waits for them to return. Safe to call more
// than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		if !s.cfg.Enabled {
			close(s.stopped)
			return
		}
		<-s.cron.Stop().Done()
		close(s.stopped)
		logger.Info("scheduler stopped")
	})
}

func (s *Scheduler) Done() <-chan struct{} {
	return s.stopped
}

func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entryIDs))
	for name := range s.entryIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cronLogger routes cron's own messages into the service log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
