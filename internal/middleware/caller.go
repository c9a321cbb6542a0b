package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tradeflow/internal/domain/models"
)

const (
	// CallerKey is the gin context key holding the models.Caller.
	CallerKey = "caller"
	// UserIDHeader carries the identity of the acting user.
	UserIDHeader = "X-User-ID"
)

// Caller resolves the acting user from the X-User-ID header and stores a
// models.Caller in the context. Users listed in admins are flagged as admin.
//
// Authentication happens upstream (gateway or auth proxy); this middleware
// only trusts the forwarded identity. A request without the header gets an
// empty Caller and the lifecycle layer rejects whatever needs an identity.
func Caller(admins []string) gin.HandlerFunc {
	set := make(map[string]bool, len(admins))
	for _, a := range admins {
		if a = strings.TrimSpace(a); a != "" {
			set[a] = true
		}
	}
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(UserIDHeader))
		c.Set(CallerKey, models.Caller{ID: id, Admin: id != "" && set[id]})
		c.Next()
	}
}

// CallerFrom returns the caller stored by Caller, or the zero Caller.
func CallerFrom(c *gin.Context) models.Caller {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{}
}
