package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HTTPSEnforcer struct {
	enabled bool
	logger  *zap.Logger
}

func NewHTTPSEnforcer(enabled bool, logger *zap.Logger) *HTTPSEnforcer {
	return &HTTPSEnforcer{
		enabled: enabled,
		logger:  logger,
	}
}

// Middleware redirects plain HTTP requests to HTTPS, except for local hosts
// and requests already terminated by a TLS proxy.
func (he *HTTPSEnforcer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !he.enabled || c.Request.TLS != nil {
			c.Next()
			return
		}

		if c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Next()
			return
		}

		host := c.Request.Host
		if strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1") {
			c.Next()
			return
		}

		httpsURL := "https://" + host + c.Request.URL.RequestURI()

		he.logger.Info("Redirecting to HTTPS",
			zap.String("original_url", c.Request.URL.String()),
			zap.String("https_url", httpsURL),
			zap.String("user_agent", c.GetHeader("User-Agent")))

		c.Redirect(http.StatusMovedPermanently, httpsURL)
		c.Abort()
	}
}

func (he *HTTPSEnforcer) IsEnabled() bool {
	return he.enabled
}
