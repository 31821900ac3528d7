package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skyreserve/booking-service/internal/domain"
	"github.com/skyreserve/booking-service/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.POST("/payments", h.pay)
	router.DELETE("/:id", h.cancel)
	router.POST("/reap", h.reap)
}

type createBookingRequest struct {
	FlightID  int64 `json:"flightId" binding:"required"`
	UserID    int64 `json:"userId" binding:"required"`
	NoOfSeats int   `json:"noOfSeats" binding:"required"`
}

type paymentRequest struct {
	BookingID int64 `json:"bookingId" binding:"required"`
	UserID    int64 `json:"userId" binding:"required"`
	TotalCost int64 `json:"totalCost" binding:"required"`
}

type bookingResponse struct {
	ID        int64  `json:"id"`
	FlightID  int64  `json:"flightId"`
	UserID    int64  `json:"userId"`
	Status    string `json:"status"`
	NoOfSeats int    `json:"noOfSeats"`
	TotalCost int64  `json:"totalCost"`
	CreatedAt string `json:"createdAt"`
}

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// fail maps the error taxonomy onto HTTP statuses. Upstream and internal
// causes never reach the client body; they are logged where they happen.
func fail(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		c.JSON(http.StatusBadRequest, envelope{Message: "request could not be processed", Error: err.Error()})
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, envelope{Message: "resource not found", Error: err.Error()})
	case domain.KindConflict:
		c.JSON(http.StatusConflict, envelope{Message: "conflicting booking state", Error: err.Error()})
	case domain.KindUpstream:
		c.JSON(http.StatusBadGateway, envelope{Message: "upstream service unavailable", Error: "flight service request failed"})
	default:
		c.JSON(http.StatusInternalServerError, envelope{Message: "something went wrong", Error: "internal error"})
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID,
		FlightID:  b.FlightID,
		UserID:    b.UserID,
		Status:    string(b.Status),
		NoOfSeats: b.NoOfSeats,
		TotalCost: b.TotalCost,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: "invalid request body", Error: err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:  req.FlightID,
		UserID:    req.UserID,
		NoOfSeats: req.NoOfSeats,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusCreated, "booking created successfully", toBookingResponse(created))
}

func (h *BookingHandler) pay(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: "invalid request body", Error: err.Error()})
		return
	}

	receipt, err := h.service.MakePayment(c.Request.Context(), booking.PaymentInput{
		BookingID:      req.BookingID,
		UserID:         req.UserID,
		TotalCost:      req.TotalCost,
		IdempotencyKey: c.GetHeader("x-idempotency-key"),
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "payment processed successfully", receipt)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, envelope{Message: "invalid booking id", Error: err.Error()})
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "booking cancelled successfully", result)
}

func (h *BookingHandler) reap(c *gin.Context) {
	result, err := h.service.ReapExpired(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, http.StatusOK, "expired bookings processed", result)
}
