package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
)

// RateLimitMiddleware 按路由与客户端 IP 限流。POST/PUT/DELETE 使用 write_qps/write_burst（未配置时同读接口）。
// 限流后端不可用时放行。
func RateLimitMiddleware(limiter ratelimit.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	read := ratelimit.PerSecond(cfg.QPS, cfg.Burst)
	write := read
	if cfg.WriteQPS > 0 {
		write = ratelimit.PerSecond(cfg.WriteQPS, cfg.WriteBurst)
	}

	return func(c *gin.Context) {
		if !cfg.Enabled || limiter == nil {
			c.Next()
			return
		}

		limit := read
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limit = write
		}

		key := ratelimit.RouteKey(c.Request.Method, c.FullPath(), c.ClientIP())
		res, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(res.RetryAfter/time.Second)+1, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "TOO_MANY_REQUESTS",
				"message": "retry after " + res.RetryAfter.String(),
			})
			return
		}
		c.Next()
	}
}
