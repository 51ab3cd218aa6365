package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/booking"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/checkin"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/classes"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/clock"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/db"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/member"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/notify"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/report"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/scheduler"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/server"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/subscription"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// @title Gym Operations API
// @version 1.0
// @description Check-in, class booking, billing and reporting core.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting gym operations core")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	notificationQueue := notify.NewRedisQueue(rdb, cfg.Notify.NotificationQueue)
	reportQueue := notify.NewRedisQueue(rdb, cfg.Notify.ReportQueue)
	notifications := notify.NewDispatcher("notifications", notificationQueue, cfg.Notify)
	reportJobs := notify.NewDispatcher("report_jobs", reportQueue, cfg.Notify)
	notifications.Start()
	reportJobs.Start()

	clk := clock.Real{}
	members := member.NewRepository(database)
	classRepo := classes.NewRepository(database)

	checkinSvc := checkin.NewService(checkin.NewRepository(database), members, clk, cfg.Checkin)
	classSvc := classes.NewService(classRepo, clk)
	bookingSvc := booking.NewService(booking.NewRepository(database), classRepo, members, notifications, clk, cfg.Waitlist)
	subscriptionSvc := subscription.NewService(subscription.NewRepository(database), notifications, clk, cfg.Billing)
	reportSvc := report.NewService(report.NewRepository(database), reportJobs, clk, cfg.Reports)

	sched := scheduler.New(cfg.Scheduler)
	jobs := []scheduler.Job{
		{Name: "delinquency", Spec: cfg.Scheduler.DelinquencySpec, Run: func(ctx context.Context) error {
			_, err := subscriptionSvc.Sweep(ctx)
			return err
		}},
		{Name: "waitlist", Spec: cfg.Scheduler.WaitlistSpec, Run: func(ctx context.Context) error {
			_, err := bookingSvc.Sweep(ctx)
			return err
		}},
		{Name: "reports", Spec: cfg.Scheduler.ReportSpec, Run: func(ctx context.Context) error {
			_, err := reportSvc.Sweep(ctx)
			return err
		}},
	}
	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			logger.Fatalf("Failed to register %s sweep: %v", job.Name, err)
		}
	}

	srv := server.New(cfg, server.Handlers{
		Checkin:      checkin.NewHandler(checkinSvc),
		Classes:      classes.NewHandler(classSvc),
		Booking:      booking.NewHandler(bookingSvc),
		Subscription: subscription.NewHandler(subscriptionSvc),
		Report:       report.NewHandler(reportSvc),
	}, map[string]server.HealthCheck{
		"postgres": database.PingContext,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
		"notification_queue": notificationQueue.Check,
		"report_queue":       reportQueue.Check,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		sched.Start(gctx)
		<-sched.Done()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		sched.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		if err := notifications.Stop(shutdownCtx); err != nil {
			logger.Warn("Notification dispatcher did not drain", "error", err)
		}
		if err := reportJobs.Stop(shutdownCtx); err != nil {
			logger.Warn("Report job dispatcher did not drain", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server error: %v", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
