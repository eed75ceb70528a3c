package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
)

// MemoryStore is an in-process Store. Values are kept JSON-encoded so
// readers never share memory with writers, matching RedisStore semantics.
// One MemoryStore is one group, so Flush clears everything.
type MemoryStore struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryStore creates a MemoryStore holding at most capacity entries
// (0 = unbounded). ttl <= 0 selects DefaultTTL.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithTTL[string, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](uint64(capacity)))
	}
	return &MemoryStore{cache: ttlcache.New[string, []byte](opts...)}
}

// Start runs the expired-item janitor until Stop is called.
func (s *MemoryStore) Start() {
	go s.cache.Start()
}

// Stop halts the janitor.
func (s *MemoryStore) Stop() {
	s.cache.Stop()
}

// Get implements Store. Expired items are reported as misses.
func (s *MemoryStore) Get(_ context.Context, key string, dest any) bool {
	item := s.cache.Get(key)
	if item == nil {
		return false
	}
	if err := json.Unmarshal(item.Value(), dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache entry undecodable, treating as miss")
		return false
	}
	return true
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache value not serializable")
		return false
	}
	if ttl <= 0 {
		ttl = ttlcache.DefaultTTL
	}
	s.cache.Set(key, data, ttl)
	return true
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) bool {
	s.cache.Delete(key)
	return true
}

// Flush implements Store.
func (s *MemoryStore) Flush(_ context.Context) bool {
	s.cache.DeleteAll()
	return true
}

// Len returns the number of entries, including expired ones not yet collected.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
