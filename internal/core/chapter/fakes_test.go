// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
	"github.com/taibuivan/chapterhub/pkg/uuid"
)

// # Repository Fake

// fakeRepo is an in-memory [ChapterRepository].
type fakeRepo struct {
	mu       sync.Mutex
	rows     []*Chapter
	clock    time.Time
	rejectIf func(NewChapter) string
	batchErr error
	readErr  error

	findPageCalls int
	countCalls    int
	findByIDCalls int
	insertCalls   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (repo *fakeRepo) matches(chapter *Chapter, filter ChapterFilter) bool {
	if filter.Class != "" && chapter.Class != filter.Class {
		return false
	}
	if filter.Unit != "" && chapter.Unit != filter.Unit {
		return false
	}
	if filter.Subject != "" && chapter.Subject != filter.Subject {
		return false
	}
	if filter.Status != "" && chapter.Status != filter.Status {
		return false
	}
	if filter.WeakOnly != nil && chapter.IsWeakChapter != *filter.WeakOnly {
		return false
	}
	return true
}

func (repo *fakeRepo) filtered(filter ChapterFilter) []*Chapter {
	var out []*Chapter
	for _, row := range repo.rows {
		if repo.matches(row, filter) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (repo *fakeRepo) FindPage(_ context.Context, filter ChapterFilter, offset, limit int) ([]*Chapter, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.findPageCalls++

	if repo.readErr != nil {
		return nil, repo.readErr
	}

	all := repo.filtered(filter)
	if offset >= len(all) {
		return []*Chapter{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (repo *fakeRepo) Count(_ context.Context, filter ChapterFilter) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.countCalls++

	if repo.readErr != nil {
		return 0, repo.readErr
	}
	return len(repo.filtered(filter)), nil
}

func (repo *fakeRepo) FindByID(_ context.Context, id string) (*Chapter, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.findByIDCalls++

	for _, row := range repo.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, apperr.NotFound(ResourceChapter)
}

func (repo *fakeRepo) BulkInsert(_ context.Context, records []NewChapter) ([]*Chapter, map[int]string, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.insertCalls++

	if repo.batchErr != nil {
		return nil, nil, repo.batchErr
	}

	failures := make(map[int]string)
	var inserted []*Chapter
	for i, record := range records {
		if repo.rejectIf != nil {
			if reason := repo.rejectIf(record); reason != "" {
				failures[i] = reason
				continue
			}
		}
		repo.clock = repo.clock.Add(time.Millisecond)
		chapter := &Chapter{
			ID:            uuid.New(),
			Subject:       record.Subject,
			Name:          record.Name,
			Class:         record.Class,
			Unit:          record.Unit,
			Status:        record.Status,
			IsWeakChapter: record.IsWeakChapter,
			CreatedAt:     repo.clock,
		}
		repo.rows = append(repo.rows, chapter)
		inserted = append(inserted, chapter)
	}
	return inserted, failures, nil
}

// seed stores n chapters directly, bypassing the service.
func (repo *fakeRepo) seed(n int, mutate func(i int, c *NewChapter)) {
	records := make([]NewChapter, n)
	for i := range records {
		records[i] = NewChapter{Subject: "Math", Name: "Algebra", Class: "10", Unit: "1", Status: StatusNotStarted}
		if mutate != nil {
			mutate(i, &records[i])
		}
	}
	_, _, _ = repo.BulkInsert(context.Background(), records)
}

// # Cache Fake

type cacheEntry struct {
	value   []byte
	expires time.Time
}

// fakeCache is an in-memory [Cache] with a controllable clock.
type fakeCache struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]cacheEntry
	sets    map[string]map[string]bool
	setTTL  map[string]time.Time

	getErr    error
	setErr    error
	deleteErr error

	deleted [][]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		entries: make(map[string]cacheEntry),
		sets:    make(map[string]map[string]bool),
		setTTL:  make(map[string]time.Time),
	}
}

func (cache *fakeCache) advance(d time.Duration) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.now = cache.now.Add(d)
}

func (cache *fakeCache) has(key string) bool {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	entry, ok := cache.entries[key]
	return ok && cache.now.Before(entry.expires)
}

func (cache *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cache.getErr != nil {
		return nil, false, cache.getErr
	}
	entry, ok := cache.entries[key]
	if !ok || !cache.now.Before(entry.expires) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (cache *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cache.setErr != nil {
		return cache.setErr
	}
	cache.entries[key] = cacheEntry{value: value, expires: cache.now.Add(ttl)}
	return nil
}

func (cache *fakeCache) DeleteMany(_ context.Context, keys ...string) (int64, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.deleted = append(cache.deleted, keys)
	if cache.deleteErr != nil {
		return 0, cache.deleteErr
	}

	var removed int64
	for _, key := range keys {
		if _, ok := cache.entries[key]; ok {
			delete(cache.entries, key)
			removed++
		}
		if _, ok := cache.sets[key]; ok {
			delete(cache.sets, key)
			removed++
		}
	}
	return removed, nil
}

func (cache *fakeCache) Track(_ context.Context, index, key string, ttl time.Duration) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cache.setErr != nil {
		return cache.setErr
	}
	if cache.sets[index] == nil {
		cache.sets[index] = make(map[string]bool)
	}
	cache.sets[index][key] = true
	cache.setTTL[index] = cache.now.Add(ttl)
	return nil
}

func (cache *fakeCache) Members(_ context.Context, index string) ([]string, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cache.getErr != nil {
		return nil, cache.getErr
	}
	var keys []string
	for key := range cache.sets[index] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

var errCacheDown = errors.New("cache unavailable")

// # Helpers

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *fakeRepo, *fakeCache) {
	repo := newFakeRepo()
	cache := newFakeCache()
	return NewService(repo, cache, discardLogger()), repo, cache
}
