package booking

import (
	"net/http"
	"strconv"

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

// Book godoc
// @Summary      Book a class
// @Description  Takes a seat when one is free, otherwise joins the waitlist
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class instance ID"
// @Success      201 {object} booking.ClassBooking
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /classes/{classID}/book [post]
func (h *Handler) Book(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		api.Fail(c, apperr.ErrInvalidUser)
		return
	}

	classID, ok := pathID(c, "classID")
	if !ok {
		return
	}

	b, err := h.service.Book(c.Request.Context(), actor.UserID, classID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// Cancel godoc
// @Summary      Cancel booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.ClassBooking
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		api.Fail(c, apperr.ErrInvalidUser)
		return
	}

	bookingID, ok := pathID(c, "bookingID")
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), actor.UserID, bookingID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// Roster godoc
// @Summary      Class roster
// @Description  Staff: booked and waitlisted members for a class
// @Tags         staff,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        classID path int true "Class instance ID"
// @Success      200 {object} booking.Roster
// @Failure      404 {object} api.ErrorResponse
// @Router       /classes/{classID}/roster [get]
func (h *Handler) Roster(c *gin.Context) {
	classID, ok := pathID(c, "classID")
	if !ok {
		return
	}

	roster, err := h.service.Roster(c.Request.Context(), classID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, roster)
}

// Sweep godoc
// @Summary      Run waitlist sweep
// @Tags         internal
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} booking.SweepResult
// @Router       /internal/sweeps/waitlist [post]
func (h *Handler) Sweep(c *gin.Context) {
	res, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		api.Fail(c, apperr.New(apperr.InvalidRequest, "booking.pathID"))
		return 0, false
	}
	return id, true
}
