package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/auth"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/booking"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/checkin"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/classes"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/report"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/subscription"

	"github.com/gin-gonic/gin"
)

// Handlers groups the domain handlers mounted on the router.
type Handlers struct {
	Checkin      *checkin.Handler
	Classes      *classes.Handler
	Booking      *booking.Handler
	Subscription *subscription.Handler
	Report       *report.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, h Handlers, checks map[string]HealthCheck) *Server {
	api.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", Health(checks))
	router.GET("/metrics", Metrics())

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	limited := router.Group("/")
	limited.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst), authMiddleware)

	member := limited.Group("/")
	member.Use(auth.RequireRole(auth.RoleMember))
	{
		member.POST("/checkin/tokens", h.Checkin.IssueToken)
		member.POST("/classes/:classID/book", h.Booking.Book)
		member.POST("/bookings/:bookingID/cancel", h.Booking.Cancel)
	}

	anyone := limited.Group("/")
	anyone.Use(auth.RequireRole(auth.RoleMember, auth.RoleStaff, auth.RoleAdmin))
	{
		anyone.GET("/facilities/:facilityID/classes", h.Classes.ListSchedule)
	}

	staff := limited.Group("/")
	staff.Use(auth.RequireRole(auth.RoleStaff, auth.RoleAdmin))
	{
		staff.POST("/checkin/redeem", h.Checkin.Redeem)
		staff.GET("/classes/:classID/roster", h.Booking.Roster)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/subscriptions/:subscriptionID/payment-failed", h.Subscription.PaymentFailed)
		admin.POST("/subscriptions/:subscriptionID/payment-succeeded", h.Subscription.PaymentSucceeded)
	}

	internal := router.Group("/internal/sweeps")
	internal.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		internal.POST("/delinquency", h.Subscription.Sweep)
		internal.POST("/waitlist", h.Booking.Sweep)
		internal.POST("/reports", h.Report.Sweep)
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
