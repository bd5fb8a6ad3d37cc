// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cache provides the read-through cache sitting in front of catalog reads.

Entries are JSON documents stored in Redis under the service namespace. The cache
is strictly optional: every Redis failure is logged and swallowed so the caller
falls through to the authoritative store, while loader failures always propagate
and are never cached. Concurrent misses for the same key are collapsed with
singleflight so a cold key hits PostgreSQL once.

Key taxonomy:

  - manga:{id}, manga:slug:{slug}
  - chapter:{id}
  - user:{id}
  - manga:list:{type}[:{md5(json(params))}]
*/
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/mangashelf/internal/platform/constants"
)

// scanBatch is the COUNT hint used when sweeping keys by prefix.
const scanBatch = 200

// Cache is a namespaced JSON cache backed by Redis.
//
// A nil *Cache, or one built by [Disabled], is a valid pass-through cache.
type Cache struct {
	client     *redis.Client
	namespace  string
	defaultTTL time.Duration
	group      singleflight.Group
	logger     *slog.Logger
}

// New wraps a Redis client. Entries live for defaultTTL unless a call says otherwise.
func New(client *redis.Client, defaultTTL time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client:     client,
		namespace:  constants.RedisNamespace,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Disabled returns a cache that never stores anything.
func Disabled(logger *slog.Logger) *Cache {
	return &Cache{logger: logger}
}

// Enabled reports whether reads and writes reach Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// TTL is the default lifetime applied when a caller passes zero.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.defaultTTL
}

// # Primitive Operations

// Get decodes the entry stored under key into dest. It reports a miss as false
// with a nil error; only transport and decoding problems return an error.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	raw, err := c.client.Get(ctx, c.namespaced(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}

	return true, nil
}

// Put stores value as JSON under key. A zero ttl uses the default lifetime.
func (c *Cache) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, c.namespaced(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}

	return nil
}

// Has reports whether key currently holds an entry.
func (c *Cache) Has(ctx context.Context, key string) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	count, err := c.client.Exists(ctx, c.namespaced(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache: exists %s: %w", key, err)
	}

	return count > 0, nil
}

// Forget removes the given keys. Missing keys are ignored.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}

	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaced = append(namespaced, c.namespaced(key))
	}

	if err := c.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("cache: delete: %w", err)
	}

	return nil
}

// ForgetPrefix removes every key starting with prefix (e.g. all list pages).
func (c *Cache) ForgetPrefix(ctx context.Context, prefix string) error {
	if !c.Enabled() {
		return nil
	}

	pattern := c.namespaced(prefix) + "*"
	iterator := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	for iterator.Next(ctx) {
		batch = append(batch, iterator.Val())
		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("cache: delete prefix %s: %w", prefix, err)
			}
			batch = batch[:0]
		}
	}
	if err := iterator.Err(); err != nil {
		return fmt.Errorf("cache: scan prefix %s: %w", prefix, err)
	}

	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("cache: delete prefix %s: %w", prefix, err)
		}
	}

	return nil
}

// Flush drops every entry in the service namespace.
func (c *Cache) Flush(ctx context.Context) error {
	return c.ForgetPrefix(ctx, "")
}

// Invalidate is the best-effort form of [Cache.Forget] and [Cache.ForgetPrefix]
// used after writes: failures are logged, never returned.
func (c *Cache) Invalidate(ctx context.Context, keys []string, prefixes ...string) {
	if !c.Enabled() {
		return
	}

	if err := c.Forget(ctx, keys...); err != nil {
		c.logger.WarnContext(ctx, "cache_invalidate_failed", slog.Any("keys", keys), slog.Any("error", err))
	}

	for _, prefix := range prefixes {
		if err := c.ForgetPrefix(ctx, prefix); err != nil {
			c.logger.WarnContext(ctx, "cache_invalidate_failed", slog.String("prefix", prefix), slog.Any("error", err))
		}
	}
}

// # Read-Through

// Remember returns the cached value for key, or runs load, caches its result
// for ttl, and returns it.
//
// Redis failures are logged and bypassed. A load error is returned as-is and
// nothing is stored. Concurrent misses share one load that runs detached from
// any single caller's cancellation, and every caller decodes its own copy of
// the result.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	var cached T
	hit, err := c.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WarnContext(ctx, "cache_get_failed", slog.String("key", key), slog.Any("error", err))
	} else if hit {
		return cached, nil
	}

	shared := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.GlobalRequestTimeout)
		defer cancel()

		loaded, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(loaded)
		if err != nil {
			return nil, fmt.Errorf("cache: encode %s: %w", key, err)
		}

		if ttl <= 0 {
			ttl = c.defaultTTL
		}
		if err := c.client.Set(loadCtx, c.namespaced(key), payload, ttl).Err(); err != nil {
			c.logger.WarnContext(loadCtx, "cache_put_failed", slog.String("key", key), slog.Any("error", err))
		}

		return payload, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case result := <-shared:
		if result.Err != nil {
			return zero, result.Err
		}

		var value T
		if err := json.Unmarshal(result.Val.([]byte), &value); err != nil {
			return zero, fmt.Errorf("cache: decode %s: %w", key, err)
		}
		return value, nil
	}
}

// # Key Taxonomy

// MangaKey is the key of a single manga by id.
func MangaKey(id int64) string {
	return constants.CacheKeyManga + strconv.FormatInt(id, 10)
}

// MangaSlugKey is the key of a single manga by slug.
func MangaSlugKey(slug string) string {
	return constants.CacheKeyMangaSlug + slug
}

// ChapterKey is the key of a single chapter by id.
func ChapterKey(id int64) string {
	return constants.CacheKeyChapter + strconv.FormatInt(id, 10)
}

// UserKey is the key of a single user by id.
func UserKey(id int64) string {
	return constants.CacheKeyUser + strconv.FormatInt(id, 10)
}

// TaxonomyKey is the key of the full term list of one reference kind.
func TaxonomyKey(kind string) string {
	return constants.CacheKeyTaxonomy + kind
}

// ListKey is the key of a manga list of the given type. When params is not
// nil its JSON encoding is hashed into the key so each filter combination and
// page gets its own entry.
func ListKey(listType string, params any) string {
	key := constants.CacheKeyMangaList + listType
	if params == nil {
		return key
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return key
	}

	sum := md5.Sum(encoded)
	return key + ":" + hex.EncodeToString(sum[:])
}

// namespaced prefixes key with the service namespace.
func (c *Cache) namespaced(key string) string {
	return c.namespace + key
}
