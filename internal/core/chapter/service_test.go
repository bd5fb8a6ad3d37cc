// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/core/chapter"
	"github.com/taibuivan/mangashelf/internal/core/chapter/chaptertest"
	"github.com/taibuivan/mangashelf/internal/core/manga"
	"github.com/taibuivan/mangashelf/internal/core/manga/mangatest"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/cache"
	"github.com/taibuivan/mangashelf/internal/platform/events"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
	"github.com/taibuivan/mangashelf/pkg/slug"
)

type fixture struct {
	chapters *chaptertest.Repository
	mangas   *mangatest.Repository
	recorder *events.Recorder
	service  *chapter.Service
	mangaID  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chapters := chaptertest.New()
	mangas := mangatest.New()
	recorder := &events.Recorder{}

	mangaID := mangas.Seed(manga.Manga{Title: "Test Saga", Slug: "test-saga", Status: manga.StatusOngoing, IsPublished: true})

	return fixture{
		chapters: chapters,
		mangas:   mangas,
		recorder: recorder,
		service:  chapter.NewService(chapters, mangas, cache.Disabled(logger), recorder, logger),
		mangaID:  mangaID,
	}
}

func (f fixture) seed(number float64, published bool) int64 {
	return f.chapters.Seed(chapter.Chapter{
		MangaID:       f.mangaID,
		ChapterNumber: number,
		Slug:          slug.Chapter("test-saga", number, ""),
		IsPublished:   published,
	})
}

// # Create

func TestService_Create(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), chapter.CreateInput{
		MangaID:       f.mangaID,
		ChapterNumber: 1.5,
		Title:         "The Start",
		Pages:         []chapter.Page{{Number: 2, ImageURL: "b.png"}, {Number: 1, ImageURL: "a.png"}},
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "test-saga/chapter-1-5-the-start", created.Slug)
	assert.True(t, created.IsPublished)
	require.NotNil(t, created.ReleaseDate)
	assert.WithinDuration(t, time.Now(), *created.ReleaseDate, time.Minute)
	assert.Equal(t, 1, created.Pages[0].Number)
	assert.Equal(t, []events.Type{events.ChapterCreated}, f.recorder.Types())
}

func TestService_Create_ExplicitSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, chapter.CreateInput{MangaID: f.mangaID, ChapterNumber: 3, Slug: "custom-slug"})
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", created.Slug)

	_, err = f.service.Create(ctx, chapter.CreateInput{MangaID: f.mangaID, ChapterNumber: 4, Slug: "custom-slug"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	_, err = f.service.Create(ctx, chapter.CreateInput{MangaID: f.mangaID, ChapterNumber: 5, Slug: "Not A Slug"})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Equal(t, chapter.FieldSlug, appErr.Details[0].Field)

	nested, err := f.service.Create(ctx, chapter.CreateInput{MangaID: f.mangaID, ChapterNumber: 6, Slug: "test-saga/extra-6"})
	require.NoError(t, err)
	assert.Equal(t, "test-saga/extra-6", nested.Slug)
}

func TestService_Create_MissingManga(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), chapter.CreateInput{MangaID: 999, ChapterNumber: 1})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeReferenceMissing, appErr.Code)
	assert.Equal(t, "Manga with ID 999 not found", appErr.Message)
	assert.Empty(t, f.recorder.Types())
}

func TestService_Create_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, chapter.CreateInput{MangaID: f.mangaID, ChapterNumber: 3})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, chapter.CreateInput{MangaID: f.mangaID, ChapterNumber: 3, Title: "Again"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
	assert.Len(t, f.recorder.Types(), 1)
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), chapter.CreateInput{
		MangaID:       f.mangaID,
		ChapterNumber: -1,
		Pages:         []chapter.Page{{Number: 1, ImageURL: "a.png"}, {Number: 3, ImageURL: "c.png"}},
	})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)

	fields := map[string]bool{}
	for _, detail := range appErr.Details {
		fields[detail.Field] = true
	}
	assert.True(t, fields[chapter.FieldChapterNumber])
	assert.True(t, fields[chapter.FieldPages])
}

// # Update

func TestService_Update_RegeneratesSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, chapter.CreateInput{MangaID: f.mangaID, ChapterNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, "test-saga/chapter-1", created.Slug)

	title := "Arrival"
	updated, err := f.service.Update(ctx, created.Slug, chapter.Changes{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "test-saga/chapter-1-arrival", updated.Slug)
	assert.Equal(t, []events.Type{events.ChapterCreated, events.ChapterUpdated}, f.recorder.Types())
}

func TestService_Update_NumberCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(1, true)
	second := f.seed(2, true)

	number := 1.0
	_, err := f.service.UpdateByID(ctx, second, chapter.Changes{ChapterNumber: &number})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

func TestService_Update_UnknownSlug(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update(context.Background(), "nope/chapter-1", chapter.Changes{})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

// # Navigation

func TestService_Navigation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.seed(1, true)
	f.seed(2, false)
	third := f.seed(3, true)

	t.Run("next skips unpublished", func(t *testing.T) {
		next, err := f.service.Next(ctx, f.mangaID, 1, false)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, third, next.ID)
	})

	t.Run("previous skips unpublished", func(t *testing.T) {
		previous, err := f.service.Previous(ctx, f.mangaID, 3, false)
		require.NoError(t, err)
		require.NotNil(t, previous)
		assert.Equal(t, first, previous.ID)
	})

	t.Run("boundaries are nil", func(t *testing.T) {
		next, err := f.service.Next(ctx, f.mangaID, 3, false)
		require.NoError(t, err)
		assert.Nil(t, next)

		previous, err := f.service.Previous(ctx, f.mangaID, 1, false)
		require.NoError(t, err)
		assert.Nil(t, previous)
	})

	t.Run("deleted chapters are skipped", func(t *testing.T) {
		_, err := f.service.Delete(ctx, third)
		require.NoError(t, err)

		next, err := f.service.Next(ctx, f.mangaID, 1, false)
		require.NoError(t, err)
		assert.Nil(t, next)
	})
}

// # Reads

func TestService_ListByManga(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(2, true)
	f.seed(1, true)
	f.seed(3, false)

	page, err := f.service.ListByManga(ctx, f.mangaID, pagination.Params{Page: 1, PerPage: 10}, false)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, 1.0, page.Data[0].ChapterNumber)
	assert.Equal(t, 2.0, page.Data[1].ChapterNumber)

	page, err = f.service.ListByManga(ctx, f.mangaID, pagination.Params{Page: 1, PerPage: 10}, true)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)

	_, err = f.service.ListByManga(ctx, 404, pagination.Params{Page: 1, PerPage: 10}, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_UnpublishedMangaHidesChapters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draftID := f.mangas.Seed(manga.Manga{Title: "Draft", Slug: "draft", Status: manga.StatusOngoing})
	f.chapters.Seed(chapter.Chapter{MangaID: draftID, ChapterNumber: 1, Slug: "draft/chapter-1", IsPublished: true})
	f.chapters.Seed(chapter.Chapter{MangaID: draftID, ChapterNumber: 2, Slug: "draft/chapter-2", IsPublished: true})
	params := pagination.Params{Page: 1, PerPage: 10}

	_, err := f.service.ListByManga(ctx, draftID, params, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.Next(ctx, draftID, 1, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.Previous(ctx, draftID, 2, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	page, err := f.service.ListByManga(ctx, draftID, params, true)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	next, err := f.service.Next(ctx, draftID, 1, true)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 2.0, next.ChapterNumber)
}

func TestService_GetHidesUnpublished(t *testing.T) {
	f := newFixture(t)
	id := f.seed(1, false)

	_, err := f.service.Get(context.Background(), id, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	found, err := f.service.Get(context.Background(), id, true)
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
}

func TestService_RecordView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(1, true)

	viewed, err := f.service.RecordView(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewed.Views)

	stored, err := f.chapters.FindByID(ctx, id, softdelete.ExcludeDeleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)
}

// # Lifecycle

func TestService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed(1, true)

	deleted, err := f.service.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	again, err := f.service.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, again)

	restored, err := f.service.Restore(ctx, id)
	require.NoError(t, err)
	assert.True(t, restored)

	removed, err := f.service.ForceDelete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Equal(t, []events.Type{events.ChapterDeleted, events.ChapterUpdated, events.ChapterDeleted}, f.recorder.Types())
}
