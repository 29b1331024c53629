package http

import (
	"log/slog"
	"time"

	"github.com/astro-web3/recipebox/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// requestIDMiddleware reuses an inbound X-Request-ID or mints one, and keeps it
// on the request so proxied calls carry the same id.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(HeaderRequestID, id)
		}

		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		}

		if c.Writer.Status() >= 500 {
			logger.ErrorContext(c.Request.Context(), "request failed", attrs...)
		} else {
			logger.InfoContext(c.Request.Context(), "request completed", attrs...)
		}
	}
}
