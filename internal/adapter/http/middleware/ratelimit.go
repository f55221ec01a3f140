package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

const defaultRateLimitKey = "default"

type RateLimitEndpointConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

type RateLimiter struct {
	store   RateLimitStore
	config  map[string]RateLimitEndpointConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.RWMutex
}

func NewRateLimiter(store RateLimitStore, cfg config.RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	return &RateLimiter{
		store: store,
		config: map[string]RateLimitEndpointConfig{
			defaultRateLimitKey: {
				Requests: cfg.Requests,
				Window:   cfg.Window,
				KeyFunc:  ClientIP,
			},
		},
		logger:  logger,
		metrics: metrics,
	}
}

// SetConfig overrides the limit for a "METHOD /route" or a bare route.
func (rl *RateLimiter) SetConfig(route string, cfg RateLimitEndpointConfig) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}

	rl.config[route] = cfg
}

func (rl *RateLimiter) lookup(methodPath, path string) RateLimitEndpointConfig {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	if cfg, ok := rl.config[methodPath]; ok {
		return cfg
	}

	if cfg, ok := rl.config[path]; ok {
		return cfg
	}

	return rl.config[defaultRateLimitKey]
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		methodPath := c.Request.Method + " " + path
		cfg := rl.lookup(methodPath, path)
		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, cfg.KeyFunc(c))

		count, resetTime, err := rl.store.Increment(c.Request.Context(), key, cfg.Window)
		if err != nil {
			rl.logger.Error("Rate limit check failed",
				zap.String("key", key),
				zap.String("path", path),
				zap.Error(err))
			c.Next()
			return
		}

		remaining := cfg.Requests - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count > cfg.Requests {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path, "ip")
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", cfg.Requests),
				zap.Duration("window", cfg.Window))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path, "ip")
		}

		c.Next()
	}
}
