package folders

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

// Create godoc
// @Summary Create a folder
// @Tags Folders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateFolderRequest true "Folder"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,404 {object} map[string]interface{}
// @Router /folders [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	folder, err := h.service.Create(c.Request.Context(), userID, req.Name, req.ParentID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusCreated, "Folder created", gin.H{"folder": folder})
}

// List godoc
// @Summary List folders
// @Tags Folders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Folder
// @Router /folders [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	folders, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, folders)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidName):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrParentNotFound):
		response.Error(c, http.StatusNotFound, "PARENT_NOT_FOUND", "Parent folder not found")
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
}
