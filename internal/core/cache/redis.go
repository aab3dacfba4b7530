package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "meal-planner:"

// RedisCache 以 Redis 共享快取，過期交由 Redis TTL 處理
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// NewRedisCache 建立 Redis 快取並測試連接
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", addr), zap.Int("db", cfg.RedisDB))
	return &RedisCache{client: client, ttl: cfg.TTL}, nil
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, key string) (string, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.misses.Add(1)
			common.LogCacheMiss("redis", key)
			return "", common.ErrCacheMiss
		}
		s.errors.Add(1)
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	s.hits.Add(1)
	common.LogCacheHit("redis", key)
	return data, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		s.errors.Add(1)
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 只回報本行程的命中統計
func (s *RedisCache) Stats() Stats {
	hits, misses := s.hits.Load(), s.misses.Load()
	return Stats{
		Backend:  "redis",
		Hits:     hits,
		Misses:   misses,
		Errors:   s.errors.Load(),
		HitRatio: hitRatio(hits, misses),
	}
}

// Close 關閉連線
func (s *RedisCache) Close() error {
	return s.client.Close()
}
