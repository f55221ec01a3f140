package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userdir/pkg/logger"
)

func Logging(log *logger.LokiLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		log.InfoWithTrace(c.Request.Context(), "HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", ClientIP(c)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
	}
}
