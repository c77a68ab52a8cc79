package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags the request context with a request id and logs each
// completed request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHeader, rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= 500:
			log.ErrorContext(c.Request.Context(), "request failed", fields...)
		case status >= 400:
			log.WarnContext(c.Request.Context(), "request rejected", fields...)
		default:
			log.InfoContext(c.Request.Context(), "request processed", fields...)
		}
	}
}
