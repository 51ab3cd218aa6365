package subscription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct{ mock.Mock }

func (m *MockService) Sweep(ctx context.Context) (*SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SweepResult), args.Error(1)
}

func (m *MockService) RecordPaymentFailed(ctx context.Context, id int) (*Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockService) RecordPaymentSucceeded(ctx context.Context, id int) (*Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.POST("/internal/sweeps/delinquency", h.Sweep)
	r.POST("/admin/subscriptions/:subscriptionID/payment-failed", h.PaymentFailed)
	r.POST("/admin/subscriptions/:subscriptionID/payment-succeeded", h.PaymentSucceeded)
	return r
}

func post(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestSweepHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Sweep", mock.Anything).Return(&SweepResult{Notified: 2, Transitioned: 1, Scanned: 4, Failed: 1}, nil)

	w := post(setupRouter(svc), "/internal/sweeps/delinquency")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"notified":2,"transitioned":1,"scanned":4,"failed":1}`, w.Body.String())
}

func TestPaymentFailedHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("RecordPaymentFailed", mock.Anything, 5).Return(&Subscription{ID: 5, DelinquencyState: StatePendingRetry}, nil)

	w := post(setupRouter(svc), "/admin/subscriptions/5/payment-failed")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"delinquency_state":"pending_retry"`)
}

func TestPaymentSucceededInvalidTransition(t *testing.T) {
	svc := new(MockService)
	svc.On("RecordPaymentSucceeded", mock.Anything, 5).Return(nil, apperr.New(apperr.InvalidTransition, "test"))

	w := post(setupRouter(svc), "/admin/subscriptions/5/payment-succeeded")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"InvalidTransition"}`, w.Body.String())
}

func TestPaymentHandlerBadID(t *testing.T) {
	svc := new(MockService)

	w := post(setupRouter(svc), "/admin/subscriptions/abc/payment-failed")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "RecordPaymentFailed", mock.Anything, mock.Anything)
}
