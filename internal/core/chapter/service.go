// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/chapterhub/pkg/cachekey"
	"github.com/taibuivan/chapterhub/pkg/pagination"
)

const (
	// ResourceChapter names the resource in not-found errors.
	ResourceChapter = "Chapter"

	// BasePath is the canonical list path and the prefix of list cache keys.
	BasePath = "/api/v1/chapters"

	// EntityKind prefixes single-chapter cache keys ("chapter:<id>").
	EntityKind = "chapter"

	// CacheTTL applies to every cache entry written by the service.
	CacheTTL = 3600 * time.Second

	// SentinelKey is the legacy "all chapters" list key, cleared on upload.
	SentinelKey = "chapters:all"

	// ListIndexKey is the Redis set of live list cache keys.
	ListIndexKey = "chapters:list-keys"

	// reasonDatabase is reported for rows lost to a batch-level store failure.
	reasonDatabase = "Database error"
)

// # Service Layer

// Service coordinates validation, the read cache and the chapter store.
type Service struct {
	chapterRepo ChapterRepository
	cache       Cache
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(chapterRepo ChapterRepository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		cache:       cache,
		logger:      logger,
	}
}

// # Reads

/*
ListChapters serves a filtered, paginated list through the cache.

Description: The query is validated before anything else is touched. On a
cache hit the stored envelope is returned with Cached set. On a miss the page
and the total are read concurrently, the envelope is built and cached, and its
key is recorded in the list index so uploads can invalidate it.

Parameters:
  - context: context.Context
  - query: url.Values (raw query string)

Returns:
  - *ListResult: The list envelope
  - error: apperr VALIDATION_ERROR or storage failures
*/
func (service *Service) ListChapters(context context.Context, query url.Values) (*ListResult, error) {
	params, err := ValidateQuery(query)
	if err != nil {
		return nil, err
	}

	key := cachekey.Build(BasePath, params.CanonicalMap())

	// Cache lookup
	if raw, ok := service.readCache(context, key); ok {
		var cached ListResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			cached.Cached = true
			return &cached, nil
		}
		service.logger.Warn("cache_entry_corrupt", slog.String("key", key))
	}

	// Store round-trips in parallel
	page := params.Pagination()
	filter := params.Filter()

	var chapters []*Chapter
	var total int

	group, groupCtx := errgroup.WithContext(context)
	group.Go(func() error {
		var err error
		chapters, err = service.chapterRepo.FindPage(groupCtx, filter, page.Offset(), page.Limit)
		return err
	})
	group.Go(func() error {
		var err error
		total, err = service.chapterRepo.Count(groupCtx, filter)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if chapters == nil {
		chapters = []*Chapter{}
	}

	meta := pagination.NewMeta(page, total)
	result := &ListResult{
		Success:       true,
		Count:         len(chapters),
		TotalChapters: total,
		TotalPages:    meta.TotalPages,
		CurrentPage:   meta.CurrentPage,
		HasNextPage:   meta.HasNextPage,
		HasPrevPage:   meta.HasPrevPage,
		Data:          chapters,
		Cached:        false,
	}

	if service.writeCache(context, key, result) {
		if err := service.cache.Track(context, ListIndexKey, key, CacheTTL); err != nil {
			service.logger.Warn("cache_track_failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	return result, nil
}

/*
GetChapter serves a single chapter through the cache.

Returns:
  - *ChapterResult: The chapter and whether it came from the cache
  - error: apperr.NotFound("Chapter") when absent
*/
func (service *Service) GetChapter(context context.Context, id string) (*ChapterResult, error) {
	key := cachekey.Entity(EntityKind, id)

	if raw, ok := service.readCache(context, key); ok {
		var cached Chapter
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &ChapterResult{Chapter: &cached, Cached: true}, nil
		}
		service.logger.Warn("cache_entry_corrupt", slog.String("key", key))
	}

	chapter, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	service.writeCache(context, key, chapter)

	return &ChapterResult{Chapter: chapter, Cached: false}, nil
}

// # Writes

/*
UploadChapters validates and stores a batch of raw records.

Description: Invalid records never reach the store. Valid records are inserted
with unordered semantics; rows the store rejects join the failed cohort under
their original batch index. When at least one row was stored, the affected
cache keys are invalidated on a best-effort basis.

Parameters:
  - context: context.Context
  - candidates: []json.RawMessage (one element per uploaded record)

Returns:
  - *UploadResult: Uploaded rows and failures sorted by index
  - error: Reserved; per-record problems are reported in the result
*/
func (service *Service) UploadChapters(context context.Context, candidates []json.RawMessage) (*UploadResult, error) {
	outcome := ValidateBatch(candidates)

	result := &UploadResult{
		Uploaded: []*Chapter{},
		Failed:   append([]FailedChapter{}, outcome.Invalid...),
	}

	if len(outcome.Valid) > 0 {
		records := make([]NewChapter, len(outcome.Valid))
		for i, valid := range outcome.Valid {
			records[i] = valid.Chapter
		}

		inserted, failures, err := service.chapterRepo.BulkInsert(context, records)
		if err != nil {
			service.logger.Error("chapter_bulk_insert_failed",
				slog.Int("records", len(records)),
				slog.Any("error", err),
			)
			for _, valid := range outcome.Valid {
				result.Failed = append(result.Failed, storeFailure(valid, reasonDatabase))
			}
		} else {
			for position, reason := range failures {
				result.Failed = append(result.Failed, storeFailure(outcome.Valid[position], reason))
			}
			result.Uploaded = append(result.Uploaded, inserted...)
		}
	}

	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].Index < result.Failed[j].Index
	})

	if len(result.Uploaded) > 0 {
		service.invalidate(context, result.Uploaded)
	}

	service.logger.Info("chapters_uploaded",
		slog.Int("received", len(candidates)),
		slog.Int("uploaded", len(result.Uploaded)),
		slog.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// # Internal Helpers

// storeFailure converts a store-rejected record into a failed cohort entry.
func storeFailure(valid ValidChapter, reason string) FailedChapter {
	return FailedChapter{
		Index: valid.Index,
		Summary: RecordSummary{
			Subject: valid.Chapter.Subject,
			Chapter: valid.Chapter.Name,
			Class:   valid.Chapter.Class,
		},
		Reasons: []string{reason},
	}
}

/*
invalidate removes every cache entry an upload can make stale: the entry of
each new chapter, the sentinel list key, every tracked list key and the index
itself. Failures are logged and otherwise ignored.
*/
func (service *Service) invalidate(context context.Context, uploaded []*Chapter) {
	keys := make([]string, 0, len(uploaded)+2)
	for _, chapter := range uploaded {
		keys = append(keys, cachekey.Entity(EntityKind, chapter.ID))
	}
	keys = append(keys, SentinelKey)

	listKeys, err := service.cache.Members(context, ListIndexKey)
	if err != nil {
		service.logger.Warn("cache_invalidation_failed",
			slog.String("stage", "list_index"),
			slog.Any("error", err),
		)
	}
	keys = append(keys, listKeys...)
	keys = append(keys, ListIndexKey)

	removed, err := service.cache.DeleteMany(context, keys...)
	if err != nil {
		service.logger.Warn("cache_invalidation_failed",
			slog.String("stage", "delete"),
			slog.Int("keys", len(keys)),
			slog.Any("error", err),
		)
		return
	}

	service.logger.Debug("cache_invalidated",
		slog.Int("keys", len(keys)),
		slog.Int64("removed", removed),
	)
}

// readCache returns the cached value for key. Errors count as a miss.
func (service *Service) readCache(context context.Context, key string) ([]byte, bool) {
	raw, ok, err := service.cache.Get(context, key)
	if err != nil {
		service.logger.Warn("cache_read_failed", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return raw, ok
}

// writeCache stores value under key and reports whether it succeeded.
func (service *Service) writeCache(context context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		service.logger.Warn("cache_encode_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	if err := service.cache.Set(context, key, raw, CacheTTL); err != nil {
		service.logger.Warn("cache_write_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	return true
}
