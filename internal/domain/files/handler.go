package files

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cloudstore/internal/middleware"
	"cloudstore/internal/pkg/response"
	"cloudstore/internal/pkg/upstream"
	"cloudstore/internal/pkg/validator"
)

// multipart framing and the optional folder_id field on top of the payload
const multipartOverhead = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload godoc
// @Summary Upload a file
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Param folder_id formData string false "Target folder"
// @Success 201 {object} File
// @Failure 400,401,404,413,500,504 {object} map[string]interface{}
// @Router /files/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxUploadSize()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ErrFileTooLarge.Error())
			return
		}
		response.Error(c, http.StatusBadRequest, "NO_FILE", "No file uploaded")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "Uploaded file could not be read")
		return
	}
	defer src.Close()

	in := UploadInput{
		Name:        fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        src,
	}
	if folderID := strings.TrimSpace(c.PostForm("folder_id")); folderID != "" {
		in.FolderID = &folderID
	}

	file, err := h.service.Upload(c.Request.Context(), userID, in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, file)
}

// List godoc
// @Summary List active files
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Success 200 {array} File
// @Router /files [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	files, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files)
}

// Search godoc
// @Summary Search active files by name
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Success 200 {array} File
// @Failure 400 {object} map[string]interface{}
// @Router /files/search [get]
func (h *Handler) Search(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	files, err := h.service.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files)
}

// ListTrash godoc
// @Summary List trashed files
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Success 200 {array} File
// @Router /files/trash [get]
func (h *Handler) ListTrash(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	files, err := h.service.ListTrash(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files)
}

// Rename godoc
// @Summary Rename a file
// @Tags Files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Param request body RenameRequest true "New name"
// @Success 200 {object} File
// @Failure 400,404,409 {object} map[string]interface{}
// @Router /files/{id} [patch]
func (h *Handler) Rename(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", errs)
		return
	}

	file, err := h.service.Rename(c.Request.Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, file)
}

// ToggleFavorite godoc
// @Summary Flip the favorite flag of a file
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} FavoriteResponse
// @Router /files/{id}/favorite [patch]
func (h *Handler) ToggleFavorite(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	value, err := h.service.ToggleFavorite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	msg := "Removed from favorites"
	if value {
		msg = "Added to favorites"
	}
	response.JSON(c, http.StatusOK, FavoriteResponse{Message: msg, IsFavorite: value})
}

// SoftDelete godoc
// @Summary Move a file to the trash
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Router /files/{id} [delete]
func (h *Handler) SoftDelete(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "File moved to trash", nil)
}

// Restore godoc
// @Summary Restore a file from the trash
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Router /files/{id}/restore [post]
func (h *Handler) Restore(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	if err := h.service.Restore(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "File restored", nil)
}

// Purge godoc
// @Summary Permanently delete a trashed file
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Failure 404,409 {object} map[string]interface{}
// @Router /files/{id}/permanent [delete]
func (h *Handler) Purge(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	if err := h.service.Purge(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "File permanently deleted", nil)
}

// GetLink godoc
// @Summary Issue a time-limited download link
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} LinkResponse
// @Router /files/{id}/link [get]
func (h *Handler) GetLink(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	link, err := h.service.GetLink(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, LinkResponse{
		SignedURL: link.URL,
		ExpiresAt: link.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
	case errors.Is(err, ErrFolderNotFound):
		response.Error(c, http.StatusNotFound, "FOLDER_NOT_FOUND", "Folder not found")
	case errors.Is(err, ErrNoFile):
		response.Error(c, http.StatusBadRequest, "NO_FILE", "No file uploaded")
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrInvalidName):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrQueryRequired):
		response.Error(c, http.StatusBadRequest, "QUERY_REQUIRED", "Search query is required")
	case errors.Is(err, ErrFileInTrash):
		response.Error(c, http.StatusConflict, "FILE_IN_TRASH", err.Error())
	case errors.Is(err, ErrFileNotInTrash):
		response.Error(c, http.StatusConflict, "FILE_NOT_IN_TRASH", err.Error())
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

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
