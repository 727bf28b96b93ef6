package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prohmpiriya/residence-gate/internal/csvio"
	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/dto"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

const csvContentType = "text/csv; charset=utf-8"

// VisitorHandler handles visitor HTTP requests
type VisitorHandler struct {
	visitorService service.VisitorService
	maxImportBytes int64
}

// VisitorHandlerConfig contains configuration for the visitor handler
type VisitorHandlerConfig struct {
	MaxImportBytes int64
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(visitorService service.VisitorService, cfg *VisitorHandlerConfig) *VisitorHandler {
	maxImport := int64(5 << 20)
	if cfg != nil && cfg.MaxImportBytes > 0 {
		maxImport = cfg.MaxImportBytes
	}
	return &VisitorHandler{visitorService: visitorService, maxImportBytes: maxImport}
}

// Register handles POST /visitors
func (h *VisitorHandler) Register(c *gin.Context) {
	span := startSpan(c, "handler.visitor.register")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	var req dto.RegisterVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, span, err)
		return
	}

	visitor, err := h.visitorService.Register(c.Request.Context(), actor, req.ToRegistration())
	if err != nil {
		handleError(c, span, "visitor.register", err)
		return
	}

	span.SetAttributes(attribute.String("visitor_id", visitor.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, visitor)
}

// BulkRegister handles POST /visitors/bulk
func (h *VisitorHandler) BulkRegister(c *gin.Context) {
	span := startSpan(c, "handler.visitor.bulk_register")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	var req dto.BulkRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, span, err)
		return
	}

	rows := make([]service.BulkRow, 0, len(req.Visitors))
	for i := range req.Visitors {
		rows = append(rows, service.BulkRow{Row: i + 1, Registration: req.Visitors[i].ToRegistration()})
	}
	h.bulkRegister(c, span, actor, rows)
}

// Import handles POST /visitors/import with a CSV body or a multipart "file" field
func (h *VisitorHandler) Import(c *gin.Context) {
	span := startSpan(c, "handler.visitor.import")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportBytes)
	body, closeBody, err := h.importReader(c)
	if err != nil {
		h.importError(c, span, err)
		return
	}
	defer closeBody()

	rows, err := csvio.ReadVisitors(body)
	if err != nil {
		h.importError(c, span, err)
		return
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	h.bulkRegister(c, span, actor, rows)
}

func (h *VisitorHandler) importReader(c *gin.Context) (io.Reader, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return c.Request.Body, func() {}, nil
	}
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func (h *VisitorHandler) importError(c *gin.Context, span trace.Span, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		span.RecordError(err)
		span.SetStatus(codes.Error, "file too large")
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("CSV file exceeds %d bytes", tooLarge.Limit), nil)
	case errors.Is(err, http.ErrMissingFile):
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing file")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Form field \"file\" is required", nil)
	default:
		handleError(c, span, "visitor.import", err)
	}
}

func (h *VisitorHandler) bulkRegister(c *gin.Context, span trace.Span, actor domain.Actor, rows []service.BulkRow) {
	result, err := h.visitorService.BulkRegister(c.Request.Context(), actor, rows)
	if err != nil {
		handleError(c, span, "visitor.bulk_register", err)
		return
	}
	span.SetAttributes(
		attribute.Int("accepted", len(result.Accepted)),
		attribute.Int("rejected", len(result.Rejected)),
	)
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Export handles GET /visitors/export
func (h *VisitorHandler) Export(c *gin.Context) {
	span := startSpan(c, "handler.visitor.export")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	visitors, err := h.visitorService.List(c.Request.Context(), actor, visitorFilter(c))
	if err != nil {
		handleError(c, span, "visitor.export", err)
		return
	}

	var buf bytes.Buffer
	if err := csvio.WriteVisitors(&buf, visitors); err != nil {
		handleError(c, span, "visitor.export", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	c.Header("Content-Disposition", `attachment; filename="visitors.csv"`)
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// Template handles GET /visitors/template
func (h *VisitorHandler) Template(c *gin.Context) {
	var buf bytes.Buffer
	if err := csvio.WriteTemplate(&buf); err != nil {
		response.InternalError(c)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="visitor_template.csv"`)
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// List handles GET /visitors
func (h *VisitorHandler) List(c *gin.Context) {
	span := startSpan(c, "handler.visitor.list")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	visitors, err := h.visitorService.List(c.Request.Context(), actor, visitorFilter(c))
	if err != nil {
		handleError(c, span, "visitor.list", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.List(c, visitors, len(visitors))
}

func visitorFilter(c *gin.Context) repository.VisitorFilter {
	return repository.VisitorFilter{
		Status:    domain.VisitorStatus(c.Query("status")),
		HostID:    c.Query("host_id"),
		VisitDate: c.Query("visit_date"),
	}
}

// Get handles GET /visitors/:id
func (h *VisitorHandler) Get(c *gin.Context) {
	span := startSpan(c, "handler.visitor.get")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	visitor, err := h.visitorService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, span, "visitor.get", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, visitor)
}

// GetByQRCode handles GET /visitors/qr/:code
func (h *VisitorHandler) GetByQRCode(c *gin.Context) {
	span := startSpan(c, "handler.visitor.get_by_qr")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	visitor, err := h.visitorService.GetByQRCode(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		handleError(c, span, "visitor.get_by_qr", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, visitor)
}

// Transition returns a handler for POST /visitors/:id/<action>
func (h *VisitorHandler) Transition(action domain.VisitorAction) gin.HandlerFunc {
	operation := "visitor." + string(action)
	return func(c *gin.Context) {
		span := startSpan(c, "handler."+operation)
		defer span.End()

		actor, ok := requireActor(c, span)
		if !ok {
			return
		}
		visitorID := c.Param("id")
		span.SetAttributes(attribute.String("visitor_id", visitorID))

		visitor, err := h.visitorService.Transition(c.Request.Context(), actor, visitorID, action)
		if err != nil {
			handleError(c, span, operation, err)
			return
		}
		span.SetAttributes(attribute.String("status", string(visitor.Status)))
		span.SetStatus(codes.Ok, "")
		response.Success(c, visitor)
	}
}

// Blacklist handles POST /visitors/:id/blacklist; an empty body flags the visitor
func (h *VisitorHandler) Blacklist(c *gin.Context) {
	span := startSpan(c, "handler.visitor.blacklist")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	var req dto.BlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, span, err)
		return
	}
	blacklisted := true
	if req.Blacklisted != nil {
		blacklisted = *req.Blacklisted
	}

	visitor, err := h.visitorService.SetBlacklisted(c.Request.Context(), actor, c.Param("id"), blacklisted)
	if err != nil {
		handleError(c, span, "visitor.blacklist", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, visitor)
}

// ZoneAccess handles GET /visitors/:id/zones/:zone
func (h *VisitorHandler) ZoneAccess(c *gin.Context) {
	span := startSpan(c, "handler.visitor.zone_access")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}
	visitorID, zone := c.Param("id"), c.Param("zone")
	allowed, err := h.visitorService.CheckZoneAccess(c.Request.Context(), actor, visitorID, zone)
	if err != nil {
		handleError(c, span, "visitor.zone_access", err)
		return
	}
	span.SetAttributes(attribute.Bool("allowed", allowed))
	span.SetStatus(codes.Ok, "")
	response.Success(c, dto.ZoneAccessResponse{VisitorID: visitorID, Zone: zone, Allowed: allowed})
}
