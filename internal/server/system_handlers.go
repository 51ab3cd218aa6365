package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// @Summary      Health check
// @Description  Pings every registered dependency. Any failure reports 503.
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		var (
			mu      sync.Mutex
			wg      sync.WaitGroup
			results = make(map[string]string, len(checks))
			healthy = true
		)
		for name, check := range checks {
			wg.Add(1)
			go func(name string, check HealthCheck) {
				defer wg.Done()
				status := "ok"
				if err := check(ctx); err != nil {
					logger.Warn("health check failed", "check", name, "error", err)
					status = "unavailable"
				}
				mu.Lock()
				results[name] = status
				if status != "ok" {
					healthy = false
				}
				mu.Unlock()
			}(name, check)
		}
		wg.Wait()

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "degraded", Checks: results})
			return
		}
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Checks: results})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
