package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinema-tickets/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Service is a small JSON cache over Redis used for read-heavy seat maps.
// A nil *Service is valid and disables caching, so callers never have to
// branch on whether Redis is configured.
type Service struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// New connects to Redis. Returns (nil, nil) when no address is configured.
func New(cfg utils.RedisConfig, log *zap.Logger) (*Service, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Service{
		client: client,
		ttl:    cfg.CacheTTL,
		log:    log.With(zap.String("component", "cache")),
	}, nil
}

// Get unmarshals the cached value into dest. The bool reports a hit.
func (s *Service) Get(ctx context.Context, key string, dest any) bool {
	if s == nil {
		return false
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		s.log.Warn("Cache read failed", zap.Error(err), zap.String("key", key))
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.log.Warn("Cache entry corrupt", zap.Error(err), zap.String("key", key))
		return false
	}

	return true
}

// Set stores the value as JSON under the configured TTL. Failures are
// logged, never surfaced: the cache is an optimization, not a dependency.
func (s *Service) Set(ctx context.Context, key string, value any) {
	if s == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("Cache marshal failed", zap.Error(err), zap.String("key", key))
		return
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Cache write failed", zap.Error(err), zap.String("key", key))
	}
}

// Delete drops keys, typically on booking writes that invalidate a seat map.
func (s *Service) Delete(ctx context.Context, keys ...string) {
	if s == nil || len(keys) == 0 {
		return
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("Cache invalidation failed", zap.Error(err), zap.Strings("keys", keys))
	}
}

// Close releases the underlying connection.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	return s.client.Close()
}
