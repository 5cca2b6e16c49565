// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter provides the chapter catalogue: the domain model, validation,
PostgreSQL storage, the Redis read-through cache and the HTTP handlers.

# Core Responsibility

  - Reads: cache-aside for single chapters and for filtered, paginated lists.
  - Writes: bulk upload with per-record validation and partial failure.
  - Coherence: every successful upload invalidates the affected cache keys.

Records are created only through bulk upload and are never updated or deleted.
*/
package chapter

import (
	"strconv"
	"time"

	"github.com/taibuivan/chapterhub/pkg/pagination"
)

// # Status

// Status is the learner's progress on a chapter.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses returns the accepted status values in display order.
func Statuses() []string {
	return []string{string(StatusNotStarted), string(StatusInProgress), string(StatusCompleted)}
}

// # Chapter Aggregate

// Chapter is a persisted chapter record.
// ID and CreatedAt are assigned by the store and never change.
type Chapter struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	Name          string    `json:"chapter"`
	Class         string    `json:"class"`
	Unit          string    `json:"unit"`
	Status        Status    `json:"status"`
	IsWeakChapter bool      `json:"isWeakChapter"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewChapter is a validated, normalized record ready for insertion.
type NewChapter struct {
	Subject       string
	Name          string
	Class         string
	Unit          string
	Status        Status
	IsWeakChapter bool
}

// # Filter Criteria

// ChapterFilter holds the equality filters of a list query.
// Zero values mean "no filter" except WeakOnly, which filters when non-nil.
type ChapterFilter struct {
	Class    string
	Unit     string
	Subject  string
	Status   Status
	WeakOnly *bool
}

// QueryParams is a validated list query with defaults applied.
type QueryParams struct {
	Class        string
	Unit         string
	Subject      string
	Status       Status
	WeakChapters *bool
	Page         int
	Limit        int
}

// Filter returns the store filter for the query.
func (q QueryParams) Filter() ChapterFilter {
	return ChapterFilter{
		Class:    q.Class,
		Unit:     q.Unit,
		Subject:  q.Subject,
		Status:   q.Status,
		WeakOnly: q.WeakChapters,
	}
}

// Pagination returns the page window of the query.
func (q QueryParams) Pagination() pagination.Params {
	return pagination.Params{Page: q.Page, Limit: q.Limit}
}

// CanonicalMap returns the normalized parameters used to build the list cache
// key. page and limit are always present; filters only when set.
func (q QueryParams) CanonicalMap() map[string]string {
	m := map[string]string{
		ParamPage:  strconv.Itoa(q.Page),
		ParamLimit: strconv.Itoa(q.Limit),
	}
	if q.Class != "" {
		m[ParamClass] = q.Class
	}
	if q.Unit != "" {
		m[ParamUnit] = q.Unit
	}
	if q.Subject != "" {
		m[ParamSubject] = q.Subject
	}
	if q.Status != "" {
		m[ParamStatus] = string(q.Status)
	}
	if q.WeakChapters != nil {
		m[ParamWeakChapters] = strconv.FormatBool(*q.WeakChapters)
	}
	return m
}

// # Results

// ListResult is the list envelope returned to clients and stored in the cache.
type ListResult struct {
	Success       bool       `json:"success"`
	Count         int        `json:"count"`
	TotalChapters int        `json:"totalChapters"`
	TotalPages    int        `json:"totalPages"`
	CurrentPage   int        `json:"currentPage"`
	HasNextPage   bool       `json:"hasNextPage"`
	HasPrevPage   bool       `json:"hasPrevPage"`
	Data          []*Chapter `json:"data"`
	Cached        bool       `json:"cached"`
}

// ChapterResult is a single chapter plus whether it was served from cache.
type ChapterResult struct {
	Chapter *Chapter
	Cached  bool
}

// FailedChapter is one rejected upload record.
type FailedChapter struct {
	// Index is the position of the record in the uploaded batch.
	Index   int
	Summary RecordSummary
	Reasons []string
}

// RecordSummary identifies an upload record in responses.
type RecordSummary struct {
	Subject string `json:"subject"`
	Chapter string `json:"chapter"`
	Class   string `json:"class"`
}

// UploadResult is the outcome of a bulk upload.
// len(Uploaded)+len(Failed) equals the batch size and Failed is sorted by Index.
type UploadResult struct {
	Uploaded []*Chapter
	Failed   []FailedChapter
}
