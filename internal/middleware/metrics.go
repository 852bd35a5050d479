package middleware

import (
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

// SetupPrometheus records per-route request metrics and exposes them on /metrics.
func SetupPrometheus(r *gin.Engine) {
	p := ginprometheus.NewPrometheus("gin")
	// collapse ids so /api/files/:id does not explode label cardinality
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if path := c.FullPath(); path != "" {
			return path
		}
		return "unmatched"
	}
	p.Use(r)
}
