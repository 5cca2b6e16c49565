// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter Data Access

// ChapterRepository defines the data access contract for chapters.
type ChapterRepository interface {

	/*
		FindPage returns one page of chapters matching filter, newest first.

		Parameters:
		  - context: context.Context
		  - filter: ChapterFilter
		  - offset: int
		  - limit: int

		Returns:
		  - []*Chapter: At most limit chapters, ordered by createdAt DESC, id DESC
		  - error: Storage failures
	*/
	FindPage(context context.Context, filter ChapterFilter, offset, limit int) ([]*Chapter, error)

	/*
		Count returns the number of chapters matching filter.
	*/
	Count(context context.Context, filter ChapterFilter) (int, error)

	/*
		FindByID returns the chapter with the given ID.

		Returns:
		  - *Chapter: Hydrated record
		  - error: apperr.NotFound("Chapter") if missing or not a UUID
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		BulkInsert persists records with unordered semantics: a row rejected by
		the database does not prevent the others from being stored.

		Parameters:
		  - context: context.Context
		  - records: []NewChapter

		Returns:
		  - []*Chapter: Stored rows in input order, with ID and CreatedAt set
		  - map[int]string: Client-safe reason per rejected position in records
		  - error: Batch-level failures only (begin, commit, lost connection)
	*/
	BulkInsert(context context.Context, records []NewChapter) ([]*Chapter, map[int]string, error)
}
