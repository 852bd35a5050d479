package storage

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cloudstore/internal/pkg/response"
)

// DownloadHandler serves blobs of a DiskStore to holders of a signed token.
// It is not behind the auth gate: the token is the credential.
type DownloadHandler struct {
	store *DiskStore
}

func NewDownloadHandler(store *DiskStore) *DownloadHandler {
	return &DownloadHandler{store: store}
}

// Download godoc
// @Summary Download a blob through a signed link
// @Tags Blobs
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 400,401,404 {object} map[string]interface{}
// @Router /blobs/download [get]
func (h *DownloadHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "token is required")
		return
	}

	absPath, err := h.store.Resolve(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrBlobMissing):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
		case errors.Is(err, ErrInvalidKey):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid storage key")
		default:
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired link")
		}
		return
	}

	c.File(absPath)
}

func RegisterRoutes(r gin.IRouter, h *DownloadHandler) {
	r.GET(DownloadPath, h.Download)
}
