package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cloudstore/internal/identity"
	"cloudstore/internal/pkg/response"
	"cloudstore/internal/pkg/upstream"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// Verifier is the part of the identity provider the gate needs.
type Verifier interface {
	Verify(ctx context.Context, token string) (*identity.Principal, error)
}

// RequireAuth resolves the bearer token to a principal on every request.
// Results are never cached.
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>")
			return
		}

		principal, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			switch {
			case upstream.IsTimeout(err):
				response.Abort(c, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Identity provider timed out")
			case errors.Is(err, upstream.ErrFailure):
				_ = c.Error(err)
				response.Abort(c, http.StatusInternalServerError, "UPSTREAM_FAILURE", "Identity provider unavailable")
			default:
				response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			}
			return
		}
		if principal == nil || principal.ID == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, principal.ID)
		c.Set(ContextEmail, principal.Email)
		c.Next()
	}
}

// UserID returns the principal id bound by RequireAuth, or "" outside the gate.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// MustUserID aborts with 401 when no principal is bound.
func MustUserID(c *gin.Context) (string, bool) {
	id := UserID(c)
	if id == "" {
		response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return "", false
	}
	return id, true
}
