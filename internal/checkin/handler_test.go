package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) Issue(ctx context.Context, userID, facilityID int) (*CheckinToken, error) {
	args := m.Called(ctx, userID, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckinToken), args.Error(1)
}

func (m *MockService) Redeem(ctx context.Context, staffUserID int, token string) (*CheckinRecord, error) {
	args := m.Called(ctx, staffUserID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckinRecord), args.Error(1)
}

func setupRouter(svc Service, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	h := NewHandler(svc)
	r.POST("/checkin/tokens", h.IssueToken)
	r.POST("/checkin/redeem", h.Redeem)
	return r
}

func doJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueTokenHandler(t *testing.T) {
	svc := new(MockService)
	expires := time.Date(2024, 5, 1, 8, 2, 0, 0, time.UTC)
	svc.On("Issue", mock.Anything, 5, 3).Return(&CheckinToken{Token: "tok", FacilityID: 3, ExpiresAt: expires}, nil)

	w := doJSON(setupRouter(svc, 5), "/checkin/tokens", IssueTokenRequest{FacilityID: 3})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp IssueTokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	assert.True(t, expires.Equal(resp.ExpiresAt))
}

func TestIssueTokenHandlerBadBody(t *testing.T) {
	svc := new(MockService)

	w := doJSON(setupRouter(svc, 5), "/checkin/tokens", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "InvalidRequest", body["error"])
	assert.NotEmpty(t, body["details"])
	svc.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeemHandlerErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{apperr.New(apperr.TokenExpired, "test"), http.StatusGone, "TokenExpired"},
		{apperr.New(apperr.TokenAlreadyUsed, "test"), http.StatusConflict, "TokenAlreadyUsed"},
		{apperr.New(apperr.TokenNotFound, "test"), http.StatusNotFound, "TokenNotFound"},
		{apperr.New(apperr.StaffFacilityMismatch, "test"), http.StatusForbidden, "StaffFacilityMismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Redeem", mock.Anything, 9, "tok").Return(nil, tt.err)

			w := doJSON(setupRouter(svc, 9), "/checkin/redeem", RedeemRequest{Token: "tok"})
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.kind+`"}`, w.Body.String())
		})
	}
}

func TestRedeemHandlerSuccess(t *testing.T) {
	svc := new(MockService)
	svc.On("Redeem", mock.Anything, 9, "tok").Return(&CheckinRecord{ID: 77, MemberID: 10, FacilityID: 3, StaffID: 20}, nil)

	w := doJSON(setupRouter(svc, 9), "/checkin/redeem", RedeemRequest{Token: "tok"})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 77, body["checkin_id"])
	assert.NotContains(t, body, "token")
}
