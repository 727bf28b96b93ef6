package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

// ReportHandler serves the occupancy and analytics read models
type ReportHandler struct {
	occupancyService service.OccupancyService
	analyticsService service.AnalyticsService
}

// NewReportHandler creates a new report handler
func NewReportHandler(occupancy service.OccupancyService, analytics service.AnalyticsService) *ReportHandler {
	return &ReportHandler{occupancyService: occupancy, analyticsService: analytics}
}

// Occupancy handles GET /occupancy
func (h *ReportHandler) Occupancy(c *gin.Context) {
	span := startSpan(c, "handler.report.occupancy")
	defer span.End()

	site, err := h.occupancyService.SiteOccupancy(c.Request.Context())
	if err != nil {
		handleError(c, span, "report.occupancy", err)
		return
	}
	span.SetAttributes(attribute.Int("total", site.Total))
	span.SetStatus(codes.Ok, "")
	response.Success(c, site)
}

// AnalyticsSummary handles GET /analytics/summary?date=YYYY-MM-DD
func (h *ReportHandler) AnalyticsSummary(c *gin.Context) {
	span := startSpan(c, "handler.report.analytics")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	summary, err := h.analyticsService.Summary(c.Request.Context(), actor, c.Query("date"))
	if err != nil {
		handleError(c, span, "report.analytics", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, summary)
}
