// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/chapterhub/internal/platform/apperr"
	"github.com/taibuivan/chapterhub/internal/platform/database/schema"
	"github.com/taibuivan/chapterhub/internal/platform/dberr"
	"github.com/taibuivan/chapterhub/pkg/uuid"
)

// # PostgreSQL Repository

// chapterRepository implements the [ChapterRepository] interface using pgx.
type chapterRepository struct {
	pool *pgxpool.Pool
}

// NewChapterRepository constructs a PostgreSQL backed chapter store.
func NewChapterRepository(pool *pgxpool.Pool) ChapterRepository {
	return &chapterRepository{pool: pool}
}

// selectColumns is the projection shared by every read, in [scanChapter] order.
var selectColumns = strings.Join(schema.CoreChapter.Columns(), ", ")

/*
FindPage retrieves a filtered page of chapters.

Description: Ordering uses (createdat DESC, id DESC) so that rows created in
the same instant still have a stable position across pages.
*/
func (repository *chapterRepository) FindPage(context context.Context, filter ChapterFilter, offset, limit int) ([]*Chapter, error) {

	// Filter clause and pagination arguments
	where, args := buildWhere(filter)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		ORDER BY %s DESC, %s DESC
		LIMIT $%d OFFSET $%d
	`,
		selectColumns,
		schema.CoreChapter.Table,
		where,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.ID,
		len(args)-1, len(args),
	)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	chapters := make([]*Chapter, 0, limit)
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate chapters: %w", err)
	}

	return chapters, nil
}

// Count returns the number of chapters matching filter.
func (repository *chapterRepository) Count(context context.Context, filter ChapterFilter) (int, error) {
	where, args := buildWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, schema.CoreChapter.Table, where)

	var total int
	if err := repository.pool.QueryRow(context, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres: failed to count chapters: %w", err)
	}

	return total, nil
}

/*
FindByID returns a single chapter.

Description: Identifiers that are not UUIDs cannot match any row and are
reported as not found without a round-trip.
*/
func (repository *chapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(ResourceChapter)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.CoreChapter.Table, schema.CoreChapter.ID)

	chapter, err := scanChapter(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres: failed to find chapter by id: %w", err), ResourceChapter)
	}

	return chapter, nil
}

/*
BulkInsert stores records in one transaction with one savepoint per row.

Description: A row that violates a constraint or carries bad data is rolled
back to its savepoint and reported in the failure map; the remaining rows are
committed together. Any other error aborts the whole batch.
*/
func (repository *chapterRepository) BulkInsert(context context.Context, records []NewChapter) ([]*Chapter, map[int]string, error) {
	failures := make(map[int]string)
	if len(records) == 0 {
		return nil, failures, nil
	}

	tx, err := repository.pool.Begin(context)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: failed to begin chapter upload: %w", err)
	}
	defer func() { _ = tx.Rollback(context) }()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID,
		schema.CoreChapter.Subject,
		schema.CoreChapter.Chapter,
		schema.CoreChapter.Class,
		schema.CoreChapter.Unit,
		schema.CoreChapter.Status,
		schema.CoreChapter.IsWeakChapter,
		schema.CoreChapter.CreatedAt,
	)

	inserted := make([]*Chapter, 0, len(records))
	for i, record := range records {
		chapter := &Chapter{
			ID:            uuid.New(),
			Subject:       record.Subject,
			Name:          record.Name,
			Class:         record.Class,
			Unit:          record.Unit,
			Status:        record.Status,
			IsWeakChapter: record.IsWeakChapter,
		}
		if chapter.Status == "" {
			chapter.Status = StatusNotStarted
		}

		// Nested pgx transaction == SAVEPOINT
		savepoint, err := tx.Begin(context)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: failed to open savepoint: %w", err)
		}

		err = savepoint.QueryRow(context, query,
			chapter.ID,
			chapter.Subject,
			chapter.Name,
			chapter.Class,
			chapter.Unit,
			string(chapter.Status),
			chapter.IsWeakChapter,
		).Scan(&chapter.CreatedAt)

		if err != nil {
			_ = savepoint.Rollback(context)
			if !dberr.IsRowLevel(err) {
				return nil, nil, fmt.Errorf("postgres: failed to insert chapter: %w", err)
			}
			failures[i] = dberr.RowReason(err)
			continue
		}

		if err := savepoint.Commit(context); err != nil {
			return nil, nil, fmt.Errorf("postgres: failed to release savepoint: %w", err)
		}
		inserted = append(inserted, chapter)
	}

	if err := tx.Commit(context); err != nil {
		return nil, nil, fmt.Errorf("postgres: failed to commit chapter upload: %w", err)
	}

	return inserted, failures, nil
}

// # Internal Helpers

/*
buildWhere renders the equality filters as a WHERE clause with positional
arguments starting at $1. An empty filter yields an empty clause.
*/
func buildWhere(filter ChapterFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Class != "" {
		add(schema.CoreChapter.Class, filter.Class)
	}
	if filter.Unit != "" {
		add(schema.CoreChapter.Unit, filter.Unit)
	}
	if filter.Status != "" {
		add(schema.CoreChapter.Status, string(filter.Status))
	}
	if filter.Subject != "" {
		add(schema.CoreChapter.Subject, filter.Subject)
	}
	if filter.WeakOnly != nil {
		add(schema.CoreChapter.IsWeakChapter, *filter.WeakOnly)
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanChapter hydrates a chapter from a row produced with [selectColumns].
func scanChapter(row pgx.Row) (*Chapter, error) {
	var chapter Chapter
	var status string

	err := row.Scan(
		&chapter.ID,
		&chapter.Subject,
		&chapter.Name,
		&chapter.Class,
		&chapter.Unit,
		&status,
		&chapter.IsWeakChapter,
		&chapter.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	chapter.Status = Status(status)
	return &chapter, nil
}
