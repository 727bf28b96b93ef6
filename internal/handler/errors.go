package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/metrics"
	"github.com/prohmpiriya/residence-gate/internal/middleware"
	pkgmiddleware "github.com/prohmpiriya/residence-gate/pkg/middleware"
	"github.com/prohmpiriya/residence-gate/pkg/logger"
	"github.com/prohmpiriya/residence-gate/pkg/response"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

// startSpan opens a handler span and carries it on the request context
func startSpan(c *gin.Context, name string) trace.Span {
	ctx, span := telemetry.StartSpan(c.Request.Context(), name)
	c.Request = c.Request.WithContext(ctx)
	return span
}

// requireActor returns the authenticated actor or writes 401
func requireActor(c *gin.Context, span trace.Span) (domain.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Unauthorized(c, "Authentication required")
		return domain.Actor{}, false
	}
	return actor, true
}

// bindError reports a body that could not be decoded
func bindError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "invalid request")
	response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
}

// handleError maps domain errors to HTTP responses
func handleError(c *gin.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if verr, ok := domain.AsValidationError(err); ok {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", verr.Fields())
		return
	}

	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	case domain.IsAlreadyExistsError(err):
		response.Error(c, http.StatusConflict, "ALREADY_EXISTS", err.Error(), nil)
	case errors.Is(err, domain.ErrInvalidStateTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error(), nil)
	case errors.Is(err, domain.ErrCapacityExceeded):
		response.Error(c, http.StatusConflict, "CAPACITY_EXCEEDED", err.Error(), nil)
	case errors.Is(err, domain.ErrBookingOverlap):
		response.Error(c, http.StatusConflict, "BOOKING_OVERLAP", err.Error(), nil)
	case errors.Is(err, domain.ErrVisitorBlacklisted):
		response.Error(c, http.StatusConflict, "VISITOR_BLACKLISTED", err.Error(), nil)
	case errors.Is(err, domain.ErrPaymentNotRequired):
		response.Error(c, http.StatusConflict, "PAYMENT_NOT_REQUIRED", err.Error(), nil)
	case errors.Is(err, domain.ErrAmenityUnavailable):
		response.Error(c, http.StatusUnprocessableEntity, "AMENITY_UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, domain.ErrUnsupportedAmenityMode):
		response.Error(c, http.StatusUnprocessableEntity, "UNSUPPORTED_AMENITY_MODE", err.Error(), nil)
	case errors.Is(err, domain.ErrPaymentFailed):
		response.Error(c, http.StatusUnprocessableEntity, "PAYMENT_FAILED", err.Error(), nil)
	default:
		metrics.RecordError(c.Request.Context(), "internal", operation)
		logger.Get().Error("request failed",
			zap.String("operation", operation),
			zap.String("request_id", pkgmiddleware.GetRequestID(c)),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}
