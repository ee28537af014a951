package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/bookingengine/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/classes/:class_id/availability", h.availability)
}

func (h *FlightHandler) availability(c *gin.Context) {
	flightID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "flight id must be an integer")
		return
	}
	classID, err := strconv.ParseInt(c.Param("class_id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "class id must be an integer")
		return
	}
	a, err := h.service.Availability(c.Request.Context(), flightID, classID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
