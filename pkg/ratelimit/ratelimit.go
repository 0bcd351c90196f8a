// Package ratelimit 网关限流，基于 redis_rate 的 GCRA 实现
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RateLimiter 限流器
type RateLimiter interface {
	// Allow 按 key 消耗一次配额
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit 限流规则，Period 内允许 Rate 次，瞬时最多 Burst 次
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// PerSecond 每秒 rate 次；burst 不大于 0 时取 rate
func PerSecond(rate, burst int) Limit {
	if burst <= 0 {
		burst = rate
	}
	return Limit{Rate: rate, Period: time.Second, Burst: burst}
}

// Result 一次检查的结果
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RouteKey 按方法、路由模板与客户端生成限流键，/products/:id 的不同 id 共用配额
func RouteKey(method, route, client string) string {
	if route == "" {
		route = "unmatched"
	}
	return fmt.Sprintf("ratelimit:%s:%s:%s", method, route, client)
}

// RedisRateLimiter Redis 实现
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
}

// NewRedisRateLimiter 创建 Redis 限流器
func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{limiter: redis_rate.NewLimiter(rdb)}
}

// Allow 实现 RateLimiter
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	res, err := r.limiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   limit.Rate,
		Period: limit.Period,
		Burst:  limit.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
	}, nil
}
