package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/service"
	pkgmiddleware "github.com/prohmpiriya/residence-gate/pkg/middleware"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

// ActorKey is the context key for the authenticated actor
const ActorKey = "actor"

// TokenValidator turns a bearer token into the acting user
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (domain.Actor, error)
}

// Auth validates the bearer token and stores the actor in the context
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		const bearerPrefix = "Bearer "
		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(authHeader[len(bearerPrefix):])

		actor, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				response.Abort(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
				return
			}
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ActorKey, actor)
		c.Set(pkgmiddleware.UserIDKey, actor.UserID)
		c.Next()
	}
}

// GetActor returns the authenticated actor, if any
func GetActor(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
