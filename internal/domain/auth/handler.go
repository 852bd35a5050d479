package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cloudstore/internal/identity"
	"cloudstore/internal/pkg/response"
	"cloudstore/internal/pkg/upstream"
	"cloudstore/internal/pkg/validator"
)

// Handler exposes account registration and password login on top of the
// identity provider.
type Handler struct {
	provider identity.Provider
}

func NewHandler(provider identity.Provider) *Handler {
	return &Handler{provider: provider}
}

// Register godoc
// @Summary		Register an account
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	RegisterRequest	true	"payload"
// @Success		201	{object}	map[string]interface{}
// @Failure		400,409	{object}	map[string]interface{}
// @Router		/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	user, err := h.provider.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
		case errors.Is(err, identity.ErrInvalidSignUp):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		default:
			writeUpstreamError(c, err)
		}
		return
	}

	response.Message(c, http.StatusCreated, "User registered successfully!", gin.H{"user": user})
}

// Login godoc
// @Summary		Sign in with email and password
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	LoginRequest	true	"payload"
// @Success		200	{object}	map[string]interface{}
// @Failure		400,401	{object}	map[string]interface{}
// @Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	session, err := h.provider.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		writeUpstreamError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Login successful", gin.H{
		"token":      session.AccessToken,
		"expires_in": int64(session.ExpiresIn.Seconds()),
		"user":       session.User,
	})
}

func writeUpstreamError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case upstream.IsTimeout(err):
		response.Error(c, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Identity provider timed out")
	case errors.Is(err, upstream.ErrFailure):
		response.Error(c, http.StatusInternalServerError, "UPSTREAM_FAILURE", "Identity provider unavailable")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
