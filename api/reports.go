package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/bookingengine/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administrative ticket listing and per-user reports.
type AdminHandler struct {
	service booking.BookingUseCase
}

func NewAdminHandler(service booking.BookingUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/tickets", h.tickets)
	router.GET("/reports", h.report)
}

func (h *AdminHandler) tickets(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	tickets, err := h.service.ListTickets(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *AdminHandler) report(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "user_id: must be an integer")
		return
	}
	report, err := h.service.UserReport(c.Request.Context(), actor, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
