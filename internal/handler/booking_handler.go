package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/dto"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

// BookingHandler handles amenity reservation requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	span := startSpan(c, "handler.booking.create")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, span, err)
		return
	}
	span.SetAttributes(
		attribute.String("user_id", actor.UserID),
		attribute.String("amenity_id", req.AmenityID),
	)

	booking, err := h.bookingService.Create(c.Request.Context(), actor, req.ToBookingRequest())
	if err != nil {
		handleError(c, span, "booking.create", err)
		return
	}
	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("status", string(booking.Status)),
	)
	span.SetStatus(codes.Ok, "")
	response.Created(c, booking)
}

// List handles GET /bookings
func (h *BookingHandler) List(c *gin.Context) {
	span := startSpan(c, "handler.booking.list")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	filter := repository.BookingFilter{
		AmenityID: c.Query("amenity_id"),
		UserID:    c.Query("user_id"),
		Date:      c.Query("date"),
		Status:    domain.BookingStatus(c.Query("status")),
	}

	bookings, err := h.bookingService.List(c.Request.Context(), actor, filter)
	if err != nil {
		handleError(c, span, "booking.list", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.List(c, bookings, len(bookings))
}

// Get handles GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	span := startSpan(c, "handler.booking.get")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	booking, err := h.bookingService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, span, "booking.get", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, booking)
}

// Transition returns a handler for POST /bookings/:id/<action>
func (h *BookingHandler) Transition(action domain.BookingAction) gin.HandlerFunc {
	operation := "booking." + string(action)
	return func(c *gin.Context) {
		span := startSpan(c, "handler."+operation)
		defer span.End()

		actor, ok := requireActor(c, span)
		if !ok {
			return
		}
		bookingID := c.Param("id")
		span.SetAttributes(attribute.String("booking_id", bookingID))

		booking, err := h.bookingService.Transition(c.Request.Context(), actor, bookingID, action)
		if err != nil {
			handleError(c, span, operation, err)
			return
		}
		span.SetAttributes(attribute.String("status", string(booking.Status)))
		span.SetStatus(codes.Ok, "")
		response.Success(c, booking)
	}
}

// Pay handles POST /bookings/:id/pay
func (h *BookingHandler) Pay(c *gin.Context) {
	span := startSpan(c, "handler.booking.pay")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := h.bookingService.Pay(c.Request.Context(), actor, bookingID)
	if err != nil {
		handleError(c, span, "booking.pay", err)
		return
	}
	span.SetAttributes(attribute.String("payment_reference", booking.PaymentReference))
	span.SetStatus(codes.Ok, "")
	response.Success(c, booking)
}
