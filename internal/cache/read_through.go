package cache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ReadThrough fills a Store from a loader on miss. Concurrent misses on the
// same key share one load.
//
// Every invalidation bumps a version. A load started under an older version
// neither joins newer callers nor writes its result back, so a write that
// commits while a load is running never has its invalidation undone.
type ReadThrough struct {
	store Store
	group singleflight.Group

	// mu is held shared while a load writes back and exclusively while the
	// version moves.
	mu      sync.RWMutex
	version uint64
}

// NewReadThrough creates a ReadThrough over store.
func NewReadThrough(store Store) *ReadThrough {
	return &ReadThrough{store: store}
}

// Store returns the underlying store.
func (r *ReadThrough) Store() Store {
	return r.store
}

// Invalidator returns an Invalidator over the same store that retires
// in-flight loads before dropping keys.
func (r *ReadThrough) Invalidator() *Invalidator {
	return &Invalidator{store: r.store, reads: r}
}

func (r *ReadThrough) current() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// retire moves the version forward and forgets the flights of keys. Flights
// of other keys are left to finish but can no longer write back.
func (r *ReadThrough) retire(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		r.group.Forget(flightKey(r.version, key))
	}
	r.version++
}

// setIfCurrent caches value unless an invalidation happened since version.
func (r *ReadThrough) setIfCurrent(ctx context.Context, version uint64, key string, value any) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.version != version {
		return
	}
	r.store.Set(ctx, key, value, 0)
}

func flightKey(version uint64, key string) string {
	return strconv.FormatUint(version, 10) + "|" + key
}

// GetOrFetch returns the cached value under key or calls fetch and caches
// its result. Errors from fetch are returned uncached. fetch runs detached
// from ctx cancellation since other callers may be waiting on it.
func GetOrFetch[T any](ctx context.Context, r *ReadThrough, key string, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	if r.store.Get(ctx, key, &cached) {
		return cached, nil
	}

	version := r.current()
	v, err, _ := r.group.Do(flightKey(version, key), func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		fresh, err := fetch(loadCtx)
		if err != nil {
			return nil, err
		}
		r.setIfCurrent(loadCtx, version, key, fresh)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
