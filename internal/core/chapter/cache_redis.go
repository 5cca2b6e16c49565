// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements [Cache] on top of go-redis.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache creates a Redis-backed chapter cache.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a cached snapshot. A missing key is a miss, not an error.
func (cache *RedisCache) Get(context context.Context, key string) ([]byte, bool, error) {
	value, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_chapter_cache_get_failed: %w", err)
	}

	return value, true, nil
}

// Set stores a snapshot with an expiry.
func (cache *RedisCache) Set(context context.Context, key string, value []byte, ttl time.Duration) error {
	if err := cache.client.Set(context, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_chapter_cache_set_failed: %w", err)
	}
	return nil
}

// DeleteMany removes keys in a single DEL.
func (cache *RedisCache) DeleteMany(context context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := cache.client.Del(context, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_chapter_cache_delete_failed: %w", err)
	}

	return removed, nil
}

/*
Track records key in the index set.

Description: SADD and EXPIRE run in one MULTI/EXEC so the index never outlives
the newest key it references by more than ttl.
*/
func (cache *RedisCache) Track(context context.Context, index, key string, ttl time.Duration) error {
	_, err := cache.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.SAdd(context, index, key)
		pipe.Expire(context, index, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_chapter_cache_track_failed: %w", err)
	}
	return nil
}

// Members lists the keys recorded in the index set.
func (cache *RedisCache) Members(context context.Context, index string) ([]string, error) {
	keys, err := cache.client.SMembers(context, index).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_chapter_cache_members_failed: %w", err)
	}
	return keys, nil
}
