package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai/pkg/errors"
	"linkedin-post-ai/pkg/logger"
)

// Recovery Panic 恢复中间件，统一返回 500 JSON
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", rec),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":       http.StatusInternalServerError,
					"message":    "internal server error",
					"error":      gin.H{"error_code": errors.CodeInternalError},
					"request_id": c.GetString("request_id"),
				})
			}
		}()
		c.Next()
	}
}
