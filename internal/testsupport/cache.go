package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/GTDGit/wilayah_api/internal/cache"
)

// DownStore is a cache.Store whose backend is permanently unreachable.
type DownStore struct{}

func (DownStore) Get(context.Context, string, any) bool                 { return false }
func (DownStore) Set(context.Context, string, any, time.Duration) bool { return false }
func (DownStore) Delete(context.Context, string) bool                  { return false }
func (DownStore) Flush(context.Context) bool                           { return false }

// SpyStore wraps a cache.Store and records deleted keys and flushes.
type SpyStore struct {
	Inner cache.Store

	mu      sync.Mutex
	deleted []string
	flushes int
}

func (s *SpyStore) Get(ctx context.Context, key string, dest any) bool {
	return s.Inner.Get(ctx, key, dest)
}

func (s *SpyStore) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	return s.Inner.Set(ctx, key, value, ttl)
}

func (s *SpyStore) Delete(ctx context.Context, key string) bool {
	s.mu.Lock()
	s.deleted = append(s.deleted, key)
	s.mu.Unlock()
	return s.Inner.Delete(ctx, key)
}

func (s *SpyStore) Flush(ctx context.Context) bool {
	s.mu.Lock()
	s.flushes++
	s.mu.Unlock()
	return s.Inner.Flush(ctx)
}

// Deleted returns the keys deleted so far.
func (s *SpyStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Flushes returns how many times the group was flushed.
func (s *SpyStore) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}
