// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), server
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, _ := newRedisCache(t)

	value, found, err := cache.Get(context.Background(), "chapter:absent")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestRedisCache_SetExpires(t *testing.T) {
	cache, server := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "chapter:1", []byte(`{"id":"1"}`), time.Hour))

	value, found, err := cache.Get(ctx, "chapter:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"1"}`, string(value))
	assert.Equal(t, time.Hour, server.TTL("chapter:1"))

	server.FastForward(time.Hour)

	_, found, err = cache.Get(ctx, "chapter:1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_TrackAndMembers(t *testing.T) {
	cache, server := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Track(ctx, ListIndexKey, "chapters:list:a", CacheTTL))
	require.NoError(t, cache.Track(ctx, ListIndexKey, "chapters:list:b", CacheTTL))
	require.NoError(t, cache.Track(ctx, ListIndexKey, "chapters:list:a", CacheTTL))

	members, err := cache.Members(ctx, ListIndexKey)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"chapters:list:a", "chapters:list:b"}, members)
	assert.Equal(t, CacheTTL, server.TTL(ListIndexKey))

	members, err = cache.Members(ctx, "chapters:unknown")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRedisCache_DeleteMany(t *testing.T) {
	cache, server := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "chapter:1", []byte("{}"), time.Minute))
	require.NoError(t, cache.Set(ctx, "chapter:2", []byte("{}"), time.Minute))

	removed, err := cache.DeleteMany(ctx, "chapter:1", "chapter:2", "chapter:3")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.False(t, server.Exists("chapter:1"))

	removed, err = cache.DeleteMany(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRedisCache_ServerDown(t *testing.T) {
	cache, server := newRedisCache(t)
	server.Close()

	_, _, err := cache.Get(context.Background(), "chapter:1")
	assert.ErrorContains(t, err, "redis_chapter_cache_get_failed")
}

// The service works end to end against a real Redis protocol implementation.
func TestRedisCache_WithService(t *testing.T) {
	cache, server := newRedisCache(t)
	repo := newFakeRepo()
	repo.seed(3, nil)
	service := NewService(repo, cache, discardLogger())
	ctx := context.Background()

	first, err := service.ListChapters(ctx, nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := service.ListChapters(ctx, nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, repo.findPageCalls)

	members, err := cache.Members(ctx, ListIndexKey)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.True(t, server.Exists(members[0]))

	_, err = service.UploadChapters(ctx, rawBatch(t, `[{"subject":"Math","chapter":"Sets","class":"10","unit":"2"}]`))
	require.NoError(t, err)

	assert.False(t, server.Exists(members[0]))
	assert.False(t, server.Exists(ListIndexKey))

	third, err := service.ListChapters(ctx, nil)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 4, third.TotalChapters)
}
