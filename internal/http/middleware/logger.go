package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"ticketoffice/internal/logger"
	"ticketoffice/internal/metrics"
)

// Logger writes one structured access line per request and records latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), status, latency)

		l := logger.WithContext(c.Request.Context())
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", float64(latency.Microseconds()) / 1000.0,
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			l.Error("http request", args...)
		case status >= 400:
			l.Warn("http request", args...)
		default:
			l.Info("http request", args...)
		}
	}
}
