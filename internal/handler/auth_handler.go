package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/prohmpiriya/residence-gate/internal/dto"
	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

// AuthHandler handles login and session lookups
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	span := startSpan(c, "handler.auth.login")
	defer span.End()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, span, err)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, span, "auth.login", err)
		return
	}

	span.SetAttributes(attribute.String("user_id", session.User.UserID))
	span.SetStatus(codes.Ok, "")
	response.Success(c, session)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	span := startSpan(c, "handler.auth.me")
	defer span.End()

	actor, ok := requireActor(c, span)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		handleError(c, span, "auth.me", err)
		return
	}
	span.SetStatus(codes.Ok, "")
	response.Success(c, user)
}
