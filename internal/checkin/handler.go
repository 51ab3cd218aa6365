package checkin

import (
	"net/http"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// IssueToken godoc
// @Summary      Issue check-in token
// @Description  Issues a single-use check-in token for the authenticated member.
// @Tags         checkin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      IssueTokenRequest  true  "Facility"
// @Success      201   {object}  IssueTokenResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      403   {object}  api.ErrorResponse
// @Failure      404   {object}  api.ErrorResponse
// @Router       /checkin/tokens [post]
func (h *Handler) IssueToken(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		api.Fail(c, apperr.ErrInvalidUser)
		return
	}

	var req IssueTokenRequest
	if !api.BindJSON(c, &req) {
		return
	}

	tok, err := h.service.Issue(c.Request.Context(), actor.UserID, req.FacilityID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, IssueTokenResponse{
		Token:      tok.Token,
		FacilityID: tok.FacilityID,
		ExpiresAt:  tok.ExpiresAt,
	})
}

// Redeem godoc
// @Summary      Redeem check-in token
// @Description  Admits the member holding the token. Staff only.
// @Tags         checkin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      RedeemRequest  true  "Token"
// @Success      200   {object}  CheckinRecord
// @Failure      404   {object}  api.ErrorResponse
// @Failure      409   {object}  api.ErrorResponse
// @Failure      410   {object}  api.ErrorResponse
// @Router       /checkin/redeem [post]
func (h *Handler) Redeem(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		api.Fail(c, apperr.ErrInvalidUser)
		return
	}

	var req RedeemRequest
	if !api.BindJSON(c, &req) {
		return
	}

	rec, err := h.service.Redeem(c.Request.Context(), actor.UserID, req.Token)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
