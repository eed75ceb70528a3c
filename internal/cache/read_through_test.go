package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetch_CachesResult(t *testing.T) {
	rt := NewReadThrough(NewMemoryStore(0, time.Hour))
	ctx := context.Background()

	var calls int
	fetch := func(context.Context) (cachedProvince, error) {
		calls++
		return cachedProvince{ID: 7, Name: "Jawa Barat"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrFetch(ctx, rt, ProvinceKey(7), fetch)
		require.NoError(t, err)
		assert.Equal(t, "Jawa Barat", got.Name)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_ErrorsAreNotCached(t *testing.T) {
	rt := NewReadThrough(NewMemoryStore(0, time.Hour))
	ctx := context.Background()
	errBoom := errors.New("boom")

	var calls int
	fetch := func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	}

	_, err := GetOrFetch(ctx, rt, "k", fetch)
	assert.ErrorIs(t, err, errBoom)
	_, err = GetOrFetch(ctx, rt, "k", fetch)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetch_BackendDownFallsThrough(t *testing.T) {
	rt := NewReadThrough(&recordingStore{fail: true})

	got, err := GetOrFetch(context.Background(), rt, "k", func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestGetOrFetch_CollapsesConcurrentMisses(t *testing.T) {
	rt := NewReadThrough(NewMemoryStore(0, time.Hour))
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := GetOrFetch(ctx, rt, ProvinceListKey, fetch)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_WriteDuringLoadIsNotUndone(t *testing.T) {
	rt := NewReadThrough(NewMemoryStore(0, time.Hour))
	inv := rt.Invalidator()
	ctx := context.Background()

	var mu sync.Mutex
	row := "old"
	read := func() string {
		mu.Lock()
		defer mu.Unlock()
		return row
	}

	loading := make(chan struct{})
	release := make(chan struct{})
	slowRead := make(chan string, 1)
	go func() {
		v, err := GetOrFetch(ctx, rt, ProvinceKey(1), func(context.Context) (string, error) {
			v := read()
			close(loading)
			<-release
			return v, nil
		})
		assert.NoError(t, err)
		slowRead <- v
	}()
	<-loading

	mu.Lock()
	row = "new"
	mu.Unlock()
	inv.ProvinceChanged(ctx, 1)

	got, err := GetOrFetch(ctx, rt, ProvinceKey(1), func(context.Context) (string, error) {
		return read(), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	close(release)
	assert.Equal(t, "old", <-slowRead)

	var cached string
	require.True(t, rt.Store().Get(ctx, ProvinceKey(1), &cached))
	assert.Equal(t, "new", cached)
}

func TestGetOrFetch_FlushDuringLoadDropsResult(t *testing.T) {
	rt := NewReadThrough(NewMemoryStore(0, time.Hour))
	ctx := context.Background()

	loading := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := GetOrFetch(ctx, rt, ProvinceListKey, func(context.Context) (int, error) {
			close(loading)
			<-release
			return 34, nil
		})
		assert.NoError(t, err)
	}()
	<-loading

	assert.True(t, rt.Invalidator().All(ctx))
	close(release)
	<-done

	var cached int
	assert.False(t, rt.Store().Get(ctx, ProvinceListKey, &cached))
}

func TestGetOrFetch_LoadIgnoresCallerCancel(t *testing.T) {
	rt := NewReadThrough(NewMemoryStore(0, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := GetOrFetch(ctx, rt, ProvinceKey(3), func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}
