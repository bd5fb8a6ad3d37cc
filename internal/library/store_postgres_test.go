// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/library"
	"github.com/taibuivan/mangashelf/internal/platform/postgres/pgtest"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

func TestPostgres_Library(t *testing.T) {
	pool := pgtest.Open(t)
	repository := library.NewPostgresRepository(pool)
	ctx := context.Background()

	userID := pgtest.Insert(t, pool, `INSERT INTO users.account (username, email, passwordhash) VALUES ('reader', 'reader@example.com', 'x') RETURNING id`)
	mangaID := pgtest.Insert(t, pool, `INSERT INTO catalog.manga (title, slug) VALUES ('Shelf', 'shelf') RETURNING id`)
	goneID := pgtest.Insert(t, pool, `INSERT INTO catalog.manga (title, slug, deletedat) VALUES ('Gone', 'gone', NOW()) RETURNING id`)
	chapterID := pgtest.Insert(t, pool, `INSERT INTO catalog.chapter (mangaid, chapternumber, slug) VALUES ($1, 1, 'shelf/chapter-1') RETURNING id`, mangaID)

	t.Run("bookmarks", func(t *testing.T) {
		created, err := repository.AddBookmark(ctx, userID, mangaID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repository.AddBookmark(ctx, userID, mangaID)
		require.NoError(t, err)
		assert.False(t, created)

		_, err = repository.AddBookmark(ctx, userID, goneID)
		require.NoError(t, err)

		page, err := repository.ListBookmarks(ctx, userID, pagination.New(1, 10))
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, "shelf", page.Data[0].MangaSlug)

		removed, err := repository.RemoveBookmark(ctx, userID, mangaID)
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("progress", func(t *testing.T) {
		progress := &library.Progress{UserID: userID, MangaID: mangaID, ChapterID: chapterID, ChapterNumber: 1, PageNumber: 2}
		require.NoError(t, repository.SaveProgress(ctx, progress))

		moved := &library.Progress{UserID: userID, MangaID: mangaID, ChapterID: chapterID, ChapterNumber: 1, PageNumber: 6}
		require.NoError(t, repository.SaveProgress(ctx, moved))
		assert.Equal(t, progress.ID, moved.ID)

		history, err := repository.History(ctx, userID, pagination.New(1, 10))
		require.NoError(t, err)
		require.Equal(t, 1, history.Total)
		assert.Equal(t, 6, history.Data[0].PageNumber)
	})
}
