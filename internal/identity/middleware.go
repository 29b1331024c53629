package identity

import (
	"log/slog"
	"net/http"

	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userIDKey = "identity.user_id"

// Require aborts with 401 unless the request carries a trusted identity.
func (r *Resolver) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := r.CurrentUserID(c.Request)
		if err != nil {
			logger.DebugContext(c.Request.Context(), "identity rejected", slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserID returns the id stored by Require.
func UserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}
