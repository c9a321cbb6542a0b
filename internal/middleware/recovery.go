package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tradeflow/internal/domain/dto"
	"github.com/guttosm/tradeflow/internal/logger"
)

// RecoveryMiddleware turns a panic inside a handler into a 500 ErrorResponse.
//
// Behavior:
//   - Logs the panic value, stack, request ID, route and caller through the "http" logger.
//   - Answers with a generic body; the panic value stays in the log and the
//     request ID is echoed so the two can be correlated.
//   - Does nothing if the handler already wrote a response.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			rid := c.GetString(RequestIDKey)
			l := logger.For("http")
			l.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Str("caller_id", CallerFrom(c).ID).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			resp := dto.NewErrorResponse("Internal server error", nil)
			if rid != "" {
				resp.ErrorDetails = "request " + rid
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
		}()

		c.Next()
	}
}
