package files

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the file endpoints on an authenticated group.
// Literal segments go before :id.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	files := rg.Group("/files")
	{
		files.POST("/upload", h.Upload)
		files.GET("", h.List)
		files.GET("/search", h.Search)
		files.GET("/trash", h.ListTrash)

		files.PATCH("/:id", h.Rename)
		files.DELETE("/:id", h.SoftDelete)
		files.PATCH("/:id/favorite", h.ToggleFavorite)
		files.GET("/:id/link", h.GetLink)
		files.POST("/:id/restore", h.Restore)
		files.DELETE("/:id/permanent", h.Purge)
	}
}
