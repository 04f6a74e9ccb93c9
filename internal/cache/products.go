package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/utils"
	"github.com/redis/go-redis/v9"
)

// ProductPage is one cached page of the public product list.
type ProductPage struct {
	Items []product.Product `json:"items"`
	Total int               `json:"total"`
}

// ProductListCache caches product list pages. Implementations treat backend
// failures as misses.
type ProductListCache interface {
	GetList(ctx context.Context, key string) (ProductPage, bool)
	SetList(ctx context.Context, key string, page ProductPage)
	InvalidateLists(ctx context.Context)
}

type MemoryProductCache struct {
	c *TTL[ProductPage]
}

func NewMemoryProductCache(ttl time.Duration) *MemoryProductCache {
	return &MemoryProductCache{c: NewTTL[ProductPage](ttl)}
}

func (m *MemoryProductCache) GetList(_ context.Context, key string) (ProductPage, bool) {
	return m.c.Get(key)
}

func (m *MemoryProductCache) SetList(_ context.Context, key string, page ProductPage) {
	m.c.Set(key, page)
}

func (m *MemoryProductCache) InvalidateLists(_ context.Context) {
	m.c.DeletePrefix(utils.ProductsListCachePrefix)
}

// keysSet tracks every list key written so invalidation does not need SCAN.
const keysSet = utils.ProductsListCachePrefix + "keys"

type RedisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedisProductCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *RedisProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisProductCache{rdb: rdb, ttl: ttl, log: log}
}

func (r *RedisProductCache) GetList(ctx context.Context, key string) (ProductPage, bool) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.WarnContext(ctx, "product cache get failed", "key", key, "err", err)
		}
		return ProductPage{}, false
	}

	var page ProductPage
	if err := json.Unmarshal(raw, &page); err != nil {
		r.log.WarnContext(ctx, "product cache entry corrupt", "key", key, "err", err)
		return ProductPage{}, false
	}
	return page, true
}

func (r *RedisProductCache) SetList(ctx context.Context, key string, page ProductPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, raw, r.ttl)
		p.SAdd(ctx, keysSet, key)
		p.Expire(ctx, keysSet, 2*r.ttl)
		return nil
	})
	if err != nil {
		r.log.WarnContext(ctx, "product cache set failed", "key", key, "err", err)
	}
}

func (r *RedisProductCache) InvalidateLists(ctx context.Context) {
	keys, err := r.rdb.SMembers(ctx, keysSet).Result()
	if err != nil {
		r.log.WarnContext(ctx, "product cache invalidate failed", "err", err)
		return
	}

	keys = append(keys, keysSet)
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.log.WarnContext(ctx, "product cache invalidate failed", "err", err)
	}
}
