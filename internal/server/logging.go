package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/auth"
	"github.com/qulDev/GMB-GYM-Membership-API-sub001/internal/logger"
)

// RequestLoggingMiddleware writes one structured line per request.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := auth.GetUserID(c); ok {
			args = append(args, "user_id", userID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("HTTP request", args...)
		case status >= 400:
			logger.Warn("HTTP request", args...)
		default:
			logger.Info("HTTP request", args...)
		}
	}
}
