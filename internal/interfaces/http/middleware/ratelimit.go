package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai/pkg/errors"
	"linkedin-post-ai/pkg/logger"
	"linkedin-post-ai/pkg/metrics"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	// OnReject 自定义拒绝响应（如页面重新渲染），为空时返回 JSON 429
	OnReject gin.HandlerFunc
}

// RateLimiter 限流器接口（Redis 滑动窗口实现）
type RateLimiter interface {
	Key(clientIP, path string) string
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP + 路径限流；限流器故障时放行
func RateLimit(cfg RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Requests <= 0 {
		cfg.Requests = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := limiter.Key(c.ClientIP(), path)

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Requests, cfg.Window)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable, allowing request", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitRejected.WithLabelValues(path).Inc()
			if cfg.OnReject != nil {
				c.Abort()
				cfg.OnReject(c)
				return
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":       http.StatusTooManyRequests,
				"message":    "rate limit exceeded",
				"error":      gin.H{"error_code": errors.CodeTooManyRequests},
				"request_id": c.GetString("request_id"),
			})
			return
		}
		c.Next()
	}
}
