package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/dto"
	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

// AlertHandler handles emergency alert requests
type AlertHandler struct {
	alertService service.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertService service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// Trigger handles POST /alerts
func (h *AlertHandler) Trigger(c *gin.Context) {
	span := startSpan(c, "handler.alert.trigger")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	var req dto.TriggerAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, span, err)
		return
	}

	alert, err := h.alertService.Trigger(c.Request.Context(), actor, req.ToTrigger())
	if err != nil {
		handleError(c, span, "alert.trigger", err)
		return
	}
	span.SetAttributes(
		attribute.String("alert_id", alert.ID),
		attribute.String("severity", string(alert.Severity)),
	)
	span.SetStatus(codes.Ok, "")
	response.Created(c, alert)
}

// List handles GET /alerts; ?active=true limits to unresolved alerts
func (h *AlertHandler) List(c *gin.Context) {
	span := startSpan(c, "handler.alert.list")
	defer span.End()

	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	alerts, err := h.alertService.List(c.Request.Context(), activeOnly)
	if err != nil {
		handleError(c, span, "alert.list", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.List(c, alerts, len(alerts))
}

// Get handles GET /alerts/:id
func (h *AlertHandler) Get(c *gin.Context) {
	span := startSpan(c, "handler.alert.get")
	defer span.End()

	alert, err := h.alertService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, span, "alert.get", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, alert)
}

// Acknowledge handles POST /alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	span := startSpan(c, "handler.alert.acknowledge")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	alert, err := h.alertService.Acknowledge(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, span, "alert.acknowledge", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, alert)
}

// Resolve handles POST /alerts/:id/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	span := startSpan(c, "handler.alert.resolve")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	alert, err := h.alertService.Resolve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, span, "alert.resolve", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, alert)
}
