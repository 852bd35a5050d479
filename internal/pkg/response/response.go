package response

import "github.com/gin-gonic/gin"

// JSON writes a plain payload. Lists and file objects are returned without an envelope.
func JSON(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func Message(c *gin.Context, statusCode int, message string, extra gin.H) {
	body := gin.H{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"error": message,
		"code":  code,
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"error":   message,
		"code":    code,
		"details": details,
	})
}

func Abort(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"error": message,
		"code":  code,
	})
}
