package api

import (
	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/apperr"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string            `json:"error" example:"TokenExpired"`
	Details []ValidationError `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Fail writes err as {"error": <Kind>} with the kind's status code.
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.JSON(kind.Status(), ErrorResponse{Error: string(kind)})
}

// Abort is Fail for middleware: it also stops the handler chain.
func Abort(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	c.AbortWithStatusJSON(kind.Status(), ErrorResponse{Error: string(kind)})
}
