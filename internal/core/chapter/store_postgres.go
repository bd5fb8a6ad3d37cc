// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
	"github.com/taibuivan/mangashelf/internal/platform/dberr"
	"github.com/taibuivan/mangashelf/internal/platform/postgres"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// # PostgreSQL Repository

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed chapter store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

var (
	chapterTable = schema.CatalogChapter
	pageTable    = schema.CatalogChapterPage
)

func selectColumns() string {
	columns := chapterTable.Columns()
	for index, column := range columns {
		columns[index] = "c." + column
	}
	return strings.Join(columns, ", ")
}

func notDeleted() string {
	return softdelete.ExcludeDeleted.Clause("c." + chapterTable.DeletedAt)
}

func publishedOnly(onlyPublished bool) string {
	if !onlyPublished {
		return ""
	}
	return fmt.Sprintf(" AND c.%s = TRUE", chapterTable.IsPublished)
}

// # Lookups

/*
FindByID retrieves a chapter by id with its ordered pages.

Parameters:
  - context: context.Context
  - id: int64
  - scope: softdelete.Scope

Returns:
  - *Chapter: nil when no row matches
*/
func (repository *postgresRepository) FindByID(context context.Context, id int64, scope softdelete.Scope) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s = $1%s`,
		selectColumns(), chapterTable.Table, chapterTable.ID, scope.Clause("c."+chapterTable.DeletedAt))
	return repository.findWithPages(context, query, id)
}

// FindBySlug retrieves a chapter by slug with its ordered pages.
func (repository *postgresRepository) FindBySlug(context context.Context, slug string, scope softdelete.Scope) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s = $1%s`,
		selectColumns(), chapterTable.Table, chapterTable.Slug, scope.Clause("c."+chapterTable.DeletedAt))
	return repository.findWithPages(context, query, slug)
}

// FindByMangaAndNumber finds a chapter by its natural key, deleted or not.
func (repository *postgresRepository) FindByMangaAndNumber(context context.Context, mangaID int64, number float64) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s = $1 AND c.%s = $2`,
		selectColumns(), chapterTable.Table, chapterTable.MangaID, chapterTable.ChapterNumber)
	return repository.findOne(context, query, mangaID, number)
}

/*
Next returns the following readable chapter.

Description: Walks by chapter number rather than id so fractional
chapters (10.5) slot between their neighbours.
*/
func (repository *postgresRepository) Next(context context.Context, mangaID int64, number float64) (*Chapter, error) {
	return repository.neighbour(context, mangaID, number, ">", "ASC")
}

// Previous returns the preceding readable chapter.
func (repository *postgresRepository) Previous(context context.Context, mangaID int64, number float64) (*Chapter, error) {
	return repository.neighbour(context, mangaID, number, "<", "DESC")
}

func (repository *postgresRepository) neighbour(context context.Context, mangaID int64, number float64, comparison, direction string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s c
		WHERE c.%s = $1 AND c.%s %s $2%s%s
		ORDER BY c.%s %s
		LIMIT 1
	`,
		selectColumns(), chapterTable.Table,
		chapterTable.MangaID, chapterTable.ChapterNumber, comparison, publishedOnly(true), notDeleted(),
		chapterTable.ChapterNumber, direction,
	)
	return repository.findOne(context, query, mangaID, number)
}

func (repository *postgresRepository) findOne(context context.Context, query string, args ...any) (*Chapter, error) {
	chapter, err := scanChapter(repository.pool.QueryRow(context, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "find chapter")
	}
	return chapter, nil
}

func (repository *postgresRepository) findWithPages(context context.Context, query string, key any) (*Chapter, error) {
	chapter, err := repository.findOne(context, query, key)
	if err != nil || chapter == nil {
		return chapter, err
	}

	pages, err := repository.listPages(context, chapter.ID)
	if err != nil {
		return nil, err
	}
	chapter.Pages = pages

	return chapter, nil
}

// # Listings

/*
ListByManga returns a page of chapters in reading order.

Returns:
  - pagination.Page[*Chapter]: Totals come from a separate COUNT
*/
func (repository *postgresRepository) ListByManga(context context.Context, mangaID int64, params pagination.Params, onlyPublished bool) (pagination.Page[*Chapter], error) {
	where := fmt.Sprintf("c.%s = $1%s%s", chapterTable.MangaID, notDeleted(), publishedOnly(onlyPublished))

	// 1. Total
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s c WHERE %s`, chapterTable.Table, where)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, mangaID).Scan(&total); err != nil {
		return pagination.Page[*Chapter]{}, dberr.Wrap(err, "count chapters")
	}

	if params.Offset() >= total {
		return pagination.NewPage[*Chapter](nil, total, params), nil
	}

	// 2. Page slice
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE %s ORDER BY c.%s ASC LIMIT $2 OFFSET $3`,
		selectColumns(), chapterTable.Table, where, chapterTable.ChapterNumber)

	chapters, err := repository.collect(context, query, mangaID, params.Limit(), params.Offset())
	if err != nil {
		return pagination.Page[*Chapter]{}, err
	}

	return pagination.NewPage(chapters, total, params), nil
}

// Latest returns the most recently released chapters across all manga.
func (repository *postgresRepository) Latest(context context.Context, limit int, onlyPublished bool) ([]*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s c
		WHERE TRUE%s%s
		ORDER BY c.%s DESC NULLS LAST, c.%s DESC
		LIMIT $1
	`,
		selectColumns(), chapterTable.Table,
		notDeleted(), publishedOnly(onlyPublished),
		chapterTable.ReleaseDate, chapterTable.ID,
	)
	return repository.collect(context, query, limit)
}

func (repository *postgresRepository) collect(context context.Context, query string, args ...any) ([]*Chapter, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list chapters")
	}
	defer rows.Close()

	chapters := []*Chapter{}
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan chapter")
		}
		chapters = append(chapters, chapter)
	}

	return chapters, dberr.Wrap(rows.Err(), "iterate chapters")
}

// # Persistence

/*
Save writes the chapter row and replaces its pages atomically.

Description: Pages are rewritten with a pgx batch inside the same
transaction, one round-trip regardless of page count.
*/
func (repository *postgresRepository) Save(context context.Context, chapter *Chapter) error {
	err := postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {
		if chapter.IsNew() {
			if err := insertChapter(context, transaction, chapter); err != nil {
				return err
			}
		} else if err := updateChapter(context, transaction, chapter); err != nil {
			return err
		}

		return replacePages(context, transaction, chapter.ID, chapter.Pages)
	})

	if apperr.As(err) != nil {
		return err
	}
	return dberr.Wrap(err, "save chapter")
}

func insertChapter(context context.Context, transaction pgx.Tx, chapter *Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s, %s, %s
	`,
		chapterTable.Table,
		chapterTable.MangaID, chapterTable.ChapterNumber, chapterTable.Title, chapterTable.Slug,
		chapterTable.Description, chapterTable.ReleaseDate, chapterTable.IsPublished,
		chapterTable.ID, chapterTable.Views, chapterTable.CreatedAt, chapterTable.UpdatedAt,
	)

	return transaction.QueryRow(context, query,
		chapter.MangaID, chapter.ChapterNumber, chapter.Title, chapter.Slug,
		chapter.Description, chapter.ReleaseDate, chapter.IsPublished,
	).Scan(&chapter.ID, &chapter.Views, &chapter.CreatedAt, &chapter.UpdatedAt)
}

func updateChapter(context context.Context, transaction pgx.Tx, chapter *Chapter) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $7
		RETURNING %s
	`,
		chapterTable.Table,
		chapterTable.ChapterNumber, chapterTable.Title, chapterTable.Slug, chapterTable.Description,
		chapterTable.ReleaseDate, chapterTable.IsPublished, chapterTable.UpdatedAt,
		chapterTable.ID,
		chapterTable.UpdatedAt,
	)

	err := transaction.QueryRow(context, query,
		chapter.ChapterNumber, chapter.Title, chapter.Slug, chapter.Description,
		chapter.ReleaseDate, chapter.IsPublished, chapter.ID,
	).Scan(&chapter.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Chapter")
	}
	return err
}

// replacePages deletes the chapter's pages and queues one insert per page in a batch.
func replacePages(context context.Context, transaction pgx.Tx, chapterID int64, pages []Page) error {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, pageTable.Table, pageTable.ChapterID)
	if _, err := transaction.Exec(context, deleteQuery, chapterID); err != nil {
		return err
	}

	if len(pages) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		pageTable.Table, pageTable.ChapterID, pageTable.PageNumber, pageTable.ImageURL)

	batch := &pgx.Batch{}
	for _, page := range pages {
		batch.Queue(insertQuery, chapterID, page.Number, page.ImageURL)
	}

	results := transaction.SendBatch(context, batch)
	defer results.Close()

	for index := range pages {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert page %d: %w", index+1, err)
		}
	}

	return nil
}

func (repository *postgresRepository) listPages(context context.Context, chapterID int64) ([]Page, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		pageTable.PageNumber, pageTable.ImageURL, pageTable.Table, pageTable.ChapterID, pageTable.PageNumber)

	rows, err := repository.pool.Query(context, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "list pages")
	}
	defer rows.Close()

	pages := []Page{}
	for rows.Next() {
		var page Page
		if err := rows.Scan(&page.Number, &page.ImageURL); err != nil {
			return nil, dberr.Wrap(err, "scan page")
		}
		pages = append(pages, page)
	}

	return pages, dberr.Wrap(rows.Err(), "iterate pages")
}

// # Lifecycle

// Delete soft-deletes an active chapter.
func (repository *postgresRepository) Delete(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		chapterTable.Table, chapterTable.DeletedAt, chapterTable.UpdatedAt, chapterTable.ID, chapterTable.DeletedAt)
	return repository.execAffected(context, "delete chapter", query, id)
}

// Restore clears the deletion mark of a soft-deleted chapter.
func (repository *postgresRepository) Restore(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NULL, %s = NOW() WHERE %s = $1 AND %s IS NOT NULL`,
		chapterTable.Table, chapterTable.DeletedAt, chapterTable.UpdatedAt, chapterTable.ID, chapterTable.DeletedAt)
	return repository.execAffected(context, "restore chapter", query, id)
}

// ForceDelete removes the chapter row; pages cascade.
func (repository *postgresRepository) ForceDelete(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, chapterTable.Table, chapterTable.ID)
	return repository.execAffected(context, "force delete chapter", query, id)
}

// IncrementViews is a single atomic UPDATE, safe under concurrent readers.
func (repository *postgresRepository) IncrementViews(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		chapterTable.Table, chapterTable.Views, chapterTable.Views, chapterTable.ID)
	return repository.execAffected(context, "increment chapter views", query, id)
}

func (repository *postgresRepository) execAffected(context context.Context, action, query string, args ...any) (bool, error) {
	result, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return false, dberr.Wrap(err, action)
	}
	return result.RowsAffected() > 0, nil
}

// # Row Mapping

func scanChapter(row pgx.Row) (*Chapter, error) {
	var chapter Chapter
	err := row.Scan(
		&chapter.ID,
		&chapter.MangaID,
		&chapter.ChapterNumber,
		&chapter.Title,
		&chapter.Slug,
		&chapter.Description,
		&chapter.ReleaseDate,
		&chapter.Views,
		&chapter.IsPublished,
		&chapter.CreatedAt,
		&chapter.UpdatedAt,
		&chapter.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}
