// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/platform/cache"
)

type entry struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cache.New(client, time.Minute, logger), mr
}

/*
TestRemember_ReadThrough verifies that the loader only runs on a miss.
*/
func TestRemember_ReadThrough(t *testing.T) {
	store, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (*entry, error) {
		calls++
		return &entry{ID: 1, Title: "Test Saga"}, nil
	}

	first, err := cache.Remember(ctx, store, cache.MangaKey(1), 0, load)
	require.NoError(t, err)
	second, err := cache.Remember(ctx, store, cache.MangaKey(1), 0, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("mangashelf:manga:1"))
	assert.Equal(t, time.Minute, mr.TTL("mangashelf:manga:1"))
}

/*
TestRemember_LoaderError ensures loader failures propagate and are not cached.
*/
func TestRemember_LoaderError(t *testing.T) {
	store, mr := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("store unavailable")
	_, err := cache.Remember(ctx, store, cache.MangaKey(2), 0, func(context.Context) (*entry, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("mangashelf:manga:2"))
}

/*
TestRemember_RedisDown checks that a dead cache falls through to the loader.
*/
func TestRemember_RedisDown(t *testing.T) {
	store, mr := newTestCache(t)
	mr.Close()

	value, err := cache.Remember(context.Background(), store, cache.ChapterKey(9), time.Second, func(context.Context) (entry, error) {
		return entry{ID: 9, Title: "Chapter 9"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(9), value.ID)
}

/*
TestRemember_ConcurrentCallers collapses two misses onto one load and checks
that each caller owns its result and survives the other's cancellation.
*/
func TestRemember_ConcurrentCallers(t *testing.T) {
	store, _ := newTestCache(t)

	t.Run("each caller gets its own copy", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var calls atomic.Int32
		var once sync.Once
		load := func(context.Context) (*entry, error) {
			calls.Add(1)
			once.Do(func() { close(started) })
			<-release
			return &entry{ID: 1, Title: "Test Saga"}, nil
		}

		results := make([]*entry, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			results[0], _ = cache.Remember(context.Background(), store, "shared:1", 0, load)
		}()
		<-started
		go func() {
			defer wg.Done()
			results[1], _ = cache.Remember(context.Background(), store, "shared:1", 0, load)
		}()
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		require.NotNil(t, results[0])
		require.NotNil(t, results[1])
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, results[0], results[1])
		assert.NotSame(t, results[0], results[1])

		results[0].Title = "changed"
		assert.Equal(t, "Test Saga", results[1].Title)
	})

	t.Run("cancelled caller does not fail the others", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		load := func(ctx context.Context) (*entry, error) {
			once.Do(func() { close(started) })
			select {
			case <-release:
				return &entry{ID: 2, Title: "Second"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		firstCtx, cancelFirst := context.WithCancel(context.Background())
		firstErr := make(chan error, 1)
		go func() {
			_, err := cache.Remember(firstCtx, store, "shared:2", 0, load)
			firstErr <- err
		}()
		<-started

		type outcome struct {
			value *entry
			err   error
		}
		second := make(chan outcome, 1)
		go func() {
			value, err := cache.Remember(context.Background(), store, "shared:2", 0, load)
			second <- outcome{value, err}
		}()

		cancelFirst()
		assert.ErrorIs(t, <-firstErr, context.Canceled)

		close(release)
		result := <-second
		require.NoError(t, result.err)
		assert.Equal(t, "Second", result.value.Title)
	})
}

func TestRemember_Disabled(t *testing.T) {
	store := cache.Disabled(slog.New(slog.NewTextHandler(io.Discard, nil)))

	calls := 0
	for range 3 {
		_, err := cache.Remember(context.Background(), store, "k", 0, func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, calls)
	assert.False(t, store.Enabled())
}

func TestPrimitives(t *testing.T) {
	store, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, cache.UserKey(5), entry{ID: 5}, 0))

	has, err := store.Has(ctx, cache.UserKey(5))
	require.NoError(t, err)
	assert.True(t, has)

	var got entry
	hit, err := store.Get(ctx, cache.UserKey(5), &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(5), got.ID)

	require.NoError(t, store.Forget(ctx, cache.UserKey(5)))

	hit, err = store.Get(ctx, cache.UserKey(5), &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

/*
TestForgetPrefix drops list pages while leaving entity entries alone.
*/
func TestForgetPrefix(t *testing.T) {
	store, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, cache.ListKey("featured", nil), []int{1}, 0))
	require.NoError(t, store.Put(ctx, cache.ListKey("all", map[string]int{"page": 2}), []int{2}, 0))
	require.NoError(t, store.Put(ctx, cache.MangaKey(1), entry{ID: 1}, 0))

	require.NoError(t, store.ForgetPrefix(ctx, "manga:list:"))

	assert.False(t, mr.Exists("mangashelf:manga:list:featured"))
	assert.True(t, mr.Exists("mangashelf:manga:1"))

	require.NoError(t, store.Flush(ctx))
	assert.False(t, mr.Exists("mangashelf:manga:1"))
}

func TestListKey(t *testing.T) {
	type params struct {
		Page int `json:"page"`
	}

	assert.Equal(t, "manga:list:featured", cache.ListKey("featured", nil))

	pageOne := cache.ListKey("all", params{Page: 1})
	assert.Equal(t, pageOne, cache.ListKey("all", params{Page: 1}))
	assert.NotEqual(t, pageOne, cache.ListKey("all", params{Page: 2}))
	assert.Regexp(t, `^manga:list:all:[0-9a-f]{32}$`, pageOne)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "manga:7", cache.MangaKey(7))
	assert.Equal(t, "manga:slug:test-saga", cache.MangaSlugKey("test-saga"))
	assert.Equal(t, "chapter:3", cache.ChapterKey(3))
	assert.Equal(t, "user:11", cache.UserKey(11))
}
