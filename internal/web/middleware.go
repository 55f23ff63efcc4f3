package web

import (
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"

// RequestID ensures every request has an id in its headers and context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// RequestLogging logs each completed request, at warn or error level for
// failed responses
func RequestLogging(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := append(requestFields(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Errorw("request completed with server error", fields...)
		case status >= 400:
			logger.Warnw("request completed with client error", fields...)
		default:
			logger.Infow("request completed", fields...)
		}
	}
}

// Recovery converts panics to 500 responses and logs the stack
func Recovery(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					append(requestFields(c), "panic", r, "stack", string(debug.Stack()))...,
				)
				c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error", "request_id": c.GetString(requestIDKey)})
			}
		}()
		c.Next()
	}
}

func requestFields(c *gin.Context) []interface{} {
	return []interface{}{
		"request_id", c.GetString(requestIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"client_ip", c.ClientIP(),
	}
}
