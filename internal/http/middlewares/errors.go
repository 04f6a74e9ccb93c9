package middlewares

import "github.com/gin-gonic/gin"

// abortWithError writes the same error envelope as handlers.RespondError.
// It is duplicated here because handlers imports this package.
func abortWithError(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
