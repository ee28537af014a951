package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/bookingengine/internal/domain"
	"github.com/Domenick1991/bookingengine/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	writes  []gin.HandlerFunc
}

type passengerRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	SeatNo string `json:"seat_no"`
}

type paymentRequest struct {
	Mode           string `json:"mode"`
	TransactionRef string `json:"transaction_ref"`
}

type createBookingRequest struct {
	FlightID   int64              `json:"flight_id"`
	ClassID    int64              `json:"class_id"`
	Passengers []passengerRequest `json:"passengers"`
	Payment    paymentRequest     `json:"payment"`
}

func (r createBookingRequest) input() booking.CreateBookingInput {
	in := booking.CreateBookingInput{
		FlightID:   r.FlightID,
		ClassID:    r.ClassID,
		Passengers: make([]booking.PassengerInput, len(r.Passengers)),
		Payment: booking.PaymentInput{
			Mode:           domain.PaymentMode(r.Payment.Mode),
			TransactionRef: r.Payment.TransactionRef,
		},
	}
	for i, p := range r.Passengers {
		in.Passengers[i] = booking.PassengerInput{
			Name:   p.Name,
			Age:    p.Age,
			Gender: domain.Gender(p.Gender),
			SeatNo: p.SeatNo,
		}
	}
	return in
}

type messageResponse struct {
	Message string `json:"message"`
}

// NewBookingHandler serves the booking routes. writeMiddleware runs in front of
// create and cancel only.
func NewBookingHandler(service booking.BookingUseCase, writeMiddleware ...gin.HandlerFunc) *BookingHandler {
	return &BookingHandler{service: service, writes: writeMiddleware}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.chain(h.create)...)
	router.GET("", h.list)
	router.GET("/:pnr", h.get)
	router.DELETE("/:pnr", h.chain(h.cancel)...)
}

func (h *BookingHandler) chain(handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(h.writes)+1)
	handlers = append(handlers, h.writes...)
	return append(handlers, handler)
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeValidation, "malformed request body: "+err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), actor, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	pnr := c.Param("pnr")
	if err := h.service.CancelBooking(c.Request.Context(), actor, pnr); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "booking " + booking.NormalizePNR(pnr) + " cancelled"})
}

func (h *BookingHandler) get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), actor, c.Param("pnr"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var owner int64
	if raw := c.Query("owner"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			abortWithError(c, http.StatusBadRequest, CodeValidation, "owner: must be a positive integer")
			return
		}
		owner = id
	}
	bookings, err := h.service.ListBookings(c.Request.Context(), actor, owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
