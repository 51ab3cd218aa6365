package classes

import (
	"net/http"
	"strconv"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List upcoming classes
// @Description  Scheduled classes at a facility with seat and waitlist counts
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        facilityID path int true "Facility ID"
// @Success      200 {array} classes.ClassWithAvailability
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Router       /facilities/{facilityID}/classes [get]
func (h *Handler) ListSchedule(c *gin.Context) {
	facilityID, err := strconv.Atoi(c.Param("facilityID"))
	if err != nil {
		api.Fail(c, apperr.Wrap(apperr.InvalidRequest, "classes.ListSchedule", err))
		return
	}

	result, err := h.service.ListSchedule(c.Request.Context(), facilityID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
