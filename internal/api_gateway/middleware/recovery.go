package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// panicBody builds the 500 payload returned after a recovered panic.
// The correlation ID is attached when the request carried one so callers
// can quote it when reporting the failure.
func panicBody(correlationID string) gin.H {
	body := gin.H{
		"error": gin.H{
			"code":    "INTERNAL_SERVER_ERROR",
			"message": "An internal server error occurred",
		},
	}
	if correlationID != "" {
		body["correlation_id"] = correlationID
	}
	return body
}

// Recovery converts a panic anywhere below it in the chain into a logged
// error and a JSON 500 response instead of tearing down the connection.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Error("Panic recovered",
				"error", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			c.AbortWithStatusJSON(http.StatusInternalServerError, panicBody(GetCorrelationID(c)))
		}()

		c.Next()
	}
}
