package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/dto"
	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

// AmenityHandler handles amenity catalogue and open-access occupancy requests
type AmenityHandler struct {
	amenityService service.AmenityService
}

// NewAmenityHandler creates a new amenity handler
func NewAmenityHandler(amenityService service.AmenityService) *AmenityHandler {
	return &AmenityHandler{amenityService: amenityService}
}

// List handles GET /amenities
func (h *AmenityHandler) List(c *gin.Context) {
	span := startSpan(c, "handler.amenity.list")
	defer span.End()

	amenities, err := h.amenityService.List(c.Request.Context())
	if err != nil {
		handleError(c, span, "amenity.list", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.List(c, amenities, len(amenities))
}

// Get handles GET /amenities/:id
func (h *AmenityHandler) Get(c *gin.Context) {
	span := startSpan(c, "handler.amenity.get")
	defer span.End()

	amenity, err := h.amenityService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, span, "amenity.get", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, amenity)
}

// Create handles POST /amenities
func (h *AmenityHandler) Create(c *gin.Context) {
	span := startSpan(c, "handler.amenity.create")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	var req dto.CreateAmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, span, err)
		return
	}

	amenity, err := h.amenityService.Create(c.Request.Context(), actor, req.ToAmenity())
	if err != nil {
		handleError(c, span, "amenity.create", err)
		return
	}
	span.SetAttributes(attribute.String("amenity_id", amenity.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, amenity)
}

// Update handles PATCH /amenities/:id
func (h *AmenityHandler) Update(c *gin.Context) {
	span := startSpan(c, "handler.amenity.update")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	var req dto.UpdateAmenityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, span, err)
		return
	}

	amenity, err := h.amenityService.Update(c.Request.Context(), actor, c.Param("id"), req.ToPatch())
	if err != nil {
		handleError(c, span, "amenity.update", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, amenity)
}

// Delete handles DELETE /amenities/:id
func (h *AmenityHandler) Delete(c *gin.Context) {
	span := startSpan(c, "handler.amenity.delete")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	if err := h.amenityService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleError(c, span, "amenity.delete", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	c.Status(http.StatusNoContent)
}

// CheckIn handles POST /amenities/:id/check-in
func (h *AmenityHandler) CheckIn(c *gin.Context) {
	span := startSpan(c, "handler.amenity.check_in")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	amenity, err := h.amenityService.CheckIn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, span, "amenity.check_in", err)
		return
	}
	span.SetAttributes(attribute.Int("occupancy", amenity.CurrentOccupancy))
	span.SetStatus(codes.Ok, "")
	response.Success(c, amenity)
}

// CheckOut handles POST /amenities/:id/check-out
func (h *AmenityHandler) CheckOut(c *gin.Context) {
	span := startSpan(c, "handler.amenity.check_out")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	amenity, err := h.amenityService.CheckOut(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, span, "amenity.check_out", err)
		return
	}
	span.SetAttributes(attribute.Int("occupancy", amenity.CurrentOccupancy))
	span.SetStatus(codes.Ok, "")
	response.Success(c, amenity)
}
