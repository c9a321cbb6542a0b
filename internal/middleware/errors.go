package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tradeflow/internal/domain/dto"
	"github.com/guttosm/tradeflow/internal/logger"
)

// ErrorHandler renders errors pushed with c.Error once the handler chain
// has finished, unless a response was already written.
//
// A dto.ErrorResponse is written as is with the status already set on the
// context (500 if none). Any other error becomes a generic 500.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	last := c.Errors.Last().Err

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	var resp dto.ErrorResponse
	if !errors.As(last, &resp) {
		resp = dto.NewErrorResponse("Internal server error", last)
	}
	if status >= http.StatusInternalServerError {
		l := logger.For("http")
		l.Error().Err(last).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithError stops the chain and writes a dto.ErrorResponse with status.
//
// Parameters:
//   - c: the request context.
//   - status: HTTP status code.
//   - message: short summary for the client.
//   - err: optional underlying error; its text goes to the "error" field.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	resp := dto.NewErrorResponse(message, err)
	_ = c.Error(resp)
	c.AbortWithStatusJSON(status, resp)
}
