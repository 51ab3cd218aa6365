package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/auth"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/booking"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/checkin"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/classes"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/config"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/report"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/subscription"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubReports struct{ calls int }

func (s *stubReports) Sweep(ctx context.Context) (*report.SweepResult, error) {
	s.calls++
	return &report.SweepResult{Processed: []int{7}, Scanned: 1}, nil
}

func newTestServer(t *testing.T, reports report.Service, checks map[string]HealthCheck) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Port:           "0",
		JWTSecret:      testSecret,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	// Domain services are nil: every request below is settled before a
	// service would be reached, except the report sweep.
	return New(cfg, Handlers{
		Checkin:      checkin.NewHandler(nil),
		Classes:      classes.NewHandler(nil),
		Booking:      booking.NewHandler(nil),
		Subscription: subscription.NewHandler(nil),
		Report:       report.NewHandler(reports),
	}, checks)
}

func do(t *testing.T, s *Server, method, path, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, err := auth.GenerateAccessToken(42, role, testSecret)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestRoutesRequireCredentials(t *testing.T) {
	s := newTestServer(t, &stubReports{}, nil)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/checkin/tokens"},
		{http.MethodPost, "/checkin/redeem"},
		{http.MethodGet, "/classes/1/roster"},
		{http.MethodPost, "/classes/1/book"},
		{http.MethodPost, "/bookings/1/cancel"},
		{http.MethodGet, "/facilities/1/classes"},
		{http.MethodPost, "/internal/sweeps/delinquency"},
		{http.MethodPost, "/internal/sweeps/waitlist"},
		{http.MethodPost, "/internal/sweeps/reports"},
		{http.MethodPost, "/admin/subscriptions/1/payment-failed"},
		{http.MethodPost, "/admin/subscriptions/1/payment-succeeded"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := do(t, s, p.method, p.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRoutesEnforceRoles(t *testing.T) {
	s := newTestServer(t, &stubReports{}, nil)

	tests := []struct {
		name, method, path, role string
	}{
		{"staff cannot issue tokens", http.MethodPost, "/checkin/tokens", auth.RoleStaff},
		{"member cannot redeem", http.MethodPost, "/checkin/redeem", auth.RoleMember},
		{"member cannot read roster", http.MethodGet, "/classes/1/roster", auth.RoleMember},
		{"staff cannot book", http.MethodPost, "/classes/1/book", auth.RoleStaff},
		{"member cannot sweep", http.MethodPost, "/internal/sweeps/waitlist", auth.RoleMember},
		{"staff cannot sweep", http.MethodPost, "/internal/sweeps/reports", auth.RoleStaff},
		{"staff cannot record payments", http.MethodPost, "/admin/subscriptions/1/payment-failed", auth.RoleStaff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, tt.method, tt.path, tt.role, "")
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
		})
	}
}

func TestRoutesReachHandlers(t *testing.T) {
	reports := &stubReports{}
	s := newTestServer(t, reports, nil)

	t.Run("member token request is validated", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/checkin/tokens", auth.RoleMember, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotEmpty(t, body.Details)
		assert.Equal(t, "facility_id", body.Details[0].Field)
	})

	t.Run("admin may use staff routes", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/classes/abc/roster", auth.RoleAdmin, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin runs report sweep", func(t *testing.T) {
		w := do(t, s, http.MethodPost, "/internal/sweeps/reports", auth.RoleAdmin, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, reports.calls)
		assert.Contains(t, w.Body.String(), `"processed":[7]`)
	})
}

func TestHealth(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		s := newTestServer(t, &stubReports{}, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return nil },
		})
		w := do(t, s, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`, w.Body.String())
	})

	t.Run("failing check degrades", func(t *testing.T) {
		s := newTestServer(t, &stubReports{}, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		w := do(t, s, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"unavailable"}}`, w.Body.String())
	})

	t.Run("no checks", func(t *testing.T) {
		s := newTestServer(t, &stubReports{}, nil)
		w := do(t, s, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubReports{}, nil)
	w := do(t, s, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
