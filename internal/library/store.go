// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"

	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Repository defines the persistence contract for bookmarks and reading history.
type Repository interface {
	// AddBookmark reports whether a new bookmark was created.
	AddBookmark(context context.Context, userID, mangaID int64) (bool, error)

	// RemoveBookmark reports whether a bookmark was removed.
	RemoveBookmark(context context.Context, userID, mangaID int64) (bool, error)

	// ListBookmarks returns bookmarks newest first, skipping deleted manga.
	ListBookmarks(context context.Context, userID int64, params pagination.Params) (pagination.Page[*Bookmark], error)

	// SaveProgress upserts on (user, chapter) and stamps LastReadAt.
	SaveProgress(context context.Context, progress *Progress) error

	// History returns progress rows ordered by LastReadAt, most recent first.
	History(context context.Context, userID int64, params pagination.Params) (pagination.Page[*Progress], error)
}
