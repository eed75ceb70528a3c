package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisStore is a Store backed by Redis. Values are stored as JSON under
// "{group}:{key}".
type RedisStore struct {
	redis *RedisClient
	group string
	ttl   time.Duration
}

// NewRedisStore creates a RedisStore. ttl <= 0 selects DefaultTTL.
func NewRedisStore(redis *RedisClient, group string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{redis: redis, group: group, ttl: ttl}
}

func (s *RedisStore) key(k string) string {
	return s.group + ":" + k
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string, dest any) bool {
	raw, err := s.redis.Get(ctx, s.key(key))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Cache get failed, treating as miss")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache entry undecodable, treating as miss")
		return false
	}
	return true
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = s.ttl
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache value not serializable")
		return false
	}
	if err := s.redis.Set(ctx, s.key(key), string(data), ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache set failed")
		return false
	}
	return true
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) bool {
	if err := s.redis.Delete(ctx, s.key(key)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache delete failed")
		return false
	}
	return true
}

// Flush implements Store.
func (s *RedisStore) Flush(ctx context.Context) bool {
	n, err := s.redis.DeleteByPattern(ctx, s.group+":*")
	if err != nil {
		log.Warn().Err(err).Str("group", s.group).Msg("Cache flush failed")
		return false
	}
	log.Info().Str("group", s.group).Int("deleted", n).Msg("Cache group flushed")
	return true
}

// Ping implements Pinger.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx)
}
