package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/redis/go-redis/v9"
)

const categoriesKey = "catalog:categories"

// Product entries live much shorter than categories: a read-through miss that
// races a vendor update can re-cache the old row after the invalidation, and
// the TTL bounds how long that row is served.
const (
	productTTL    = time.Minute
	productJitter = 30 * time.Second

	categoriesTTL    = 15 * time.Minute
	categoriesJitter = 5 * time.Minute
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

type RedisCache struct {
	client *redis.Client
}

var _ CatalogCache = (*RedisCache)(nil)

func (r *RedisCache) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.get(ctx, productKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisCache) SetProduct(ctx context.Context, p *domain.Product) error {
	return r.set(ctx, productKey(p.ID), p, productTTL, productJitter)
}

func (r *RedisCache) DeleteProduct(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, productKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) GetCategories(ctx context.Context) ([]*domain.Category, error) {
	var categories []*domain.Category
	if err := r.get(ctx, categoriesKey, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *RedisCache) SetCategories(ctx context.Context, categories []*domain.Category) error {
	return r.set(ctx, categoriesKey, categories, categoriesTTL, categoriesJitter)
}

func (r *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, v any, ttl, maxJitter time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	jitter := time.Duration(rand.Int63n(int64(maxJitter)))
	if err := r.client.Set(ctx, key, data, ttl+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func productKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}
