package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/guttosm/tradeflow/internal/middleware"
	"github.com/guttosm/tradeflow/internal/notify"
)

// Subscriber registers a live connection for a user. *notify.Hub implements it.
type Subscriber interface {
	Subscribe(w http.ResponseWriter, r *http.Request, userID string) error
}

// StreamHandler upgrades GET /api/v1/ws to a websocket carrying lifecycle
// events addressed to the caller.
type StreamHandler struct {
	hub Subscriber
}

// NewStreamHandler returns a handler bound to hub.
func NewStreamHandler(hub Subscriber) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Stream godoc
// @Summary      Subscribe to trade events
// @Description  Upgrades to a websocket. Admins receive events addressed to the admin channel; other callers receive events naming them as recipient.
// @Tags         events
// @Param        X-User-ID  header  string  true  "Caller identity"
// @Success      101
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/v1/ws [get]
func (s *StreamHandler) Stream(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if caller.ID == "" {
		respondError(c, lifecycle.ErrForbidden)
		return
	}
	channel := caller.ID
	if caller.Admin {
		channel = notify.RecipientAdmins
	}
	// The upgrader has already answered the client on failure.
	if err := s.hub.Subscribe(c.Writer, c.Request, channel); err != nil {
		_ = c.Error(err)
		c.Abort()
	}
}
