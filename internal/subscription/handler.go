package subscription

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/auth"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Sweep godoc
// @Summary      Run delinquency sweep
// @Description  Sends grace-expiry notices and moves elapsed grace periods to past_due.
// @Tags         internal
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  SweepResult
// @Failure      500  {object}  api.ErrorResponse
// @Router       /internal/sweeps/delinquency [post]
func (h *Handler) Sweep(c *gin.Context) {
	res, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PaymentFailed godoc
// @Summary      Record failed payment
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        subscriptionID  path      int  true  "Subscription ID"
// @Success      200             {object}  Subscription
// @Failure      404             {object}  api.ErrorResponse
// @Failure      409             {object}  api.ErrorResponse
// @Router       /admin/subscriptions/{subscriptionID}/payment-failed [post]
func (h *Handler) PaymentFailed(c *gin.Context) {
	h.applyPaymentEvent(c, h.service.RecordPaymentFailed)
}

// PaymentSucceeded godoc
// @Summary      Record successful payment
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        subscriptionID  path      int  true  "Subscription ID"
// @Success      200             {object}  Subscription
// @Failure      404             {object}  api.ErrorResponse
// @Failure      409             {object}  api.ErrorResponse
// @Router       /admin/subscriptions/{subscriptionID}/payment-succeeded [post]
func (h *Handler) PaymentSucceeded(c *gin.Context) {
	h.applyPaymentEvent(c, h.service.RecordPaymentSucceeded)
}

func (h *Handler) applyPaymentEvent(c *gin.Context, apply func(context.Context, int) (*Subscription, error)) {
	id, err := strconv.Atoi(c.Param("subscriptionID"))
	if err != nil || id <= 0 {
		api.Fail(c, apperr.New(apperr.InvalidRequest, "subscription.Handler"))
		return
	}

	sub, err := apply(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}

	actor, _ := auth.GetActor(c)
	logger.Info("payment event recorded",
		"subscription_id", sub.ID,
		"state", sub.DelinquencyState,
		"actor_id", actor.UserID,
		"actor_role", actor.Role,
	)
	c.JSON(http.StatusOK, sub)
}
