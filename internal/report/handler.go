package report

import (
	"net/http"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Sweep godoc
// @Summary      Run report schedule sweep
// @Tags         internal
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} report.SweepResult
// @Failure      500 {object} api.ErrorResponse
// @Router       /internal/sweeps/reports [post]
func (h *Handler) Sweep(c *gin.Context) {
	res, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
