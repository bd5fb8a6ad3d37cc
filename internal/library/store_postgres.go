// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
	"github.com/taibuivan/mangashelf/internal/platform/dberr"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

var (
	bookmarkTable = schema.LibraryBookmark
	historyTable  = schema.LibraryReadingHistory
	mangaTable    = schema.CatalogManga
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed library store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// # Bookmarks

func (repository *postgresRepository) AddBookmark(context context.Context, userID, mangaID int64) (bool, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		bookmarkTable.Table, bookmarkTable.UserID, bookmarkTable.MangaID)

	result, err := repository.pool.Exec(context, query, userID, mangaID)
	if err != nil {
		return false, dberr.Wrap(err, "add bookmark")
	}
	return result.RowsAffected() > 0, nil
}

func (repository *postgresRepository) RemoveBookmark(context context.Context, userID, mangaID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		bookmarkTable.Table, bookmarkTable.UserID, bookmarkTable.MangaID)

	result, err := repository.pool.Exec(context, query, userID, mangaID)
	if err != nil {
		return false, dberr.Wrap(err, "remove bookmark")
	}
	return result.RowsAffected() > 0, nil
}

/*
ListBookmarks pages through a user's bookmarks with the manga title and slug.

Description: Bookmarks of soft-deleted manga stay in the table, so a restore
brings them back, but they are not listed.
*/
func (repository *postgresRepository) ListBookmarks(context context.Context, userID int64, params pagination.Params) (pagination.Page[*Bookmark], error) {
	from := fmt.Sprintf(`FROM %s b JOIN %s m ON m.%s = b.%s WHERE b.%s = $1 AND m.%s IS NULL`,
		bookmarkTable.Table, mangaTable.Table, mangaTable.ID, bookmarkTable.MangaID,
		bookmarkTable.UserID, mangaTable.DeletedAt)

	var total int
	if err := repository.pool.QueryRow(context, `SELECT COUNT(*) `+from, userID).Scan(&total); err != nil {
		return pagination.Page[*Bookmark]{}, dberr.Wrap(err, "count bookmarks")
	}
	if params.Offset() >= total {
		return pagination.NewPage[*Bookmark](nil, total, params), nil
	}

	query := fmt.Sprintf(`SELECT b.%s, m.%s, m.%s, b.%s %s ORDER BY b.%s DESC, b.%s DESC LIMIT $2 OFFSET $3`,
		bookmarkTable.MangaID, mangaTable.Title, mangaTable.Slug, bookmarkTable.CreatedAt,
		from, bookmarkTable.CreatedAt, bookmarkTable.MangaID)

	rows, err := repository.pool.Query(context, query, userID, params.Limit(), params.Offset())
	if err != nil {
		return pagination.Page[*Bookmark]{}, dberr.Wrap(err, "list bookmarks")
	}
	defer rows.Close()

	bookmarks := make([]*Bookmark, 0, params.Limit())
	for rows.Next() {
		var bookmark Bookmark
		if err := rows.Scan(&bookmark.MangaID, &bookmark.MangaTitle, &bookmark.MangaSlug, &bookmark.CreatedAt); err != nil {
			return pagination.Page[*Bookmark]{}, dberr.Wrap(err, "scan bookmark")
		}
		bookmarks = append(bookmarks, &bookmark)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[*Bookmark]{}, dberr.Wrap(err, "list bookmarks")
	}

	return pagination.NewPage(bookmarks, total, params), nil
}

// # Reading History

func (repository *postgresRepository) SaveProgress(context context.Context, progress *Progress) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
		RETURNING %s, %s
	`,
		historyTable.Table, historyTable.UserID, historyTable.MangaID, historyTable.ChapterID, historyTable.ChapterNumber, historyTable.PageNumber,
		historyTable.UserID, historyTable.ChapterID,
		historyTable.ChapterNumber, historyTable.ChapterNumber, historyTable.PageNumber, historyTable.PageNumber, historyTable.LastReadAt,
		historyTable.ID, historyTable.LastReadAt,
	)

	err := repository.pool.QueryRow(context, query,
		progress.UserID, progress.MangaID, progress.ChapterID, progress.ChapterNumber, progress.PageNumber,
	).Scan(&progress.ID, &progress.LastReadAt)
	return dberr.Wrap(err, "save reading progress")
}

func (repository *postgresRepository) History(context context.Context, userID int64, params pagination.Params) (pagination.Page[*Progress], error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, historyTable.Table, historyTable.UserID)
	if err := repository.pool.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return pagination.Page[*Progress]{}, dberr.Wrap(err, "count history")
	}
	if params.Offset() >= total {
		return pagination.NewPage[*Progress](nil, total, params), nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT $2 OFFSET $3
	`,
		historyTable.ID, historyTable.UserID, historyTable.MangaID, historyTable.ChapterID,
		historyTable.ChapterNumber, historyTable.PageNumber, historyTable.LastReadAt,
		historyTable.Table, historyTable.UserID, historyTable.LastReadAt, historyTable.ID,
	)

	rows, err := repository.pool.Query(context, query, userID, params.Limit(), params.Offset())
	if err != nil {
		return pagination.Page[*Progress]{}, dberr.Wrap(err, "list history")
	}
	defer rows.Close()

	history := make([]*Progress, 0, params.Limit())
	for rows.Next() {
		var progress Progress
		err := rows.Scan(
			&progress.ID,
			&progress.UserID,
			&progress.MangaID,
			&progress.ChapterID,
			&progress.ChapterNumber,
			&progress.PageNumber,
			&progress.LastReadAt,
		)
		if err != nil {
			return pagination.Page[*Progress]{}, dberr.Wrap(err, "scan history")
		}
		history = append(history, &progress)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[*Progress]{}, dberr.Wrap(err, "list history")
	}

	return pagination.NewPage(history, total, params), nil
}
