// Package cache 商品读缓存（cache-aside），键为 product:<id>
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/ecommerce/internal/products/domain"
	pkgcache "github.com/wyfcoding/ecommerce/pkg/cache"
)

const keyPrefix = "product:"

type productCache struct {
	rc  *pkgcache.RedisCache
	ttl time.Duration
}

// NewProductCache 基于 Redis 的商品缓存
func NewProductCache(rc *pkgcache.RedisCache, ttl time.Duration) domain.ProductCache {
	return &productCache{rc: rc, ttl: ttl}
}

// Key 商品缓存键
func Key(id string) string { return keyPrefix + id }

// Get 未命中返回 nil, nil
func (c *productCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.rc.GetJSON(ctx, Key(id), &p); err != nil {
		if errors.Is(err, pkgcache.ErrMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (c *productCache) Set(ctx context.Context, p *domain.Product) error {
	return c.rc.SetJSON(ctx, Key(p.ID), p, c.ttl)
}

func (c *productCache) Invalidate(ctx context.Context, id string) error {
	return c.rc.Delete(ctx, Key(id))
}
