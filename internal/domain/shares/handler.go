package shares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cloudstore/internal/middleware"
	"cloudstore/internal/pkg/response"
	"cloudstore/internal/pkg/upstream"
	"cloudstore/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Share godoc
// @Summary Share a file with another user by email
// @Tags Shares
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ShareRequest true "Grant"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /shares [post]
func (h *Handler) Share(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return
	}
	req.TargetEmail = strings.TrimSpace(req.TargetEmail)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	share, err := h.service.Share(c.Request.Context(), userID, req.FileID, req.TargetEmail, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidRole):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case upstream.IsTimeout(err):
			_ = c.Error(err)
			response.Error(c, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Upstream service timed out")
		case errors.Is(err, upstream.ErrFailure):
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "UPSTREAM_FAILURE", "Upstream service failed")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	response.Message(c, http.StatusCreated, "File shared with "+share.SharedWithEmail, gin.H{"share": share})
}
