// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/core/manga"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/postgres/pgtest"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

func TestPostgres_SaveAndFind(t *testing.T) {
	pool := pgtest.Open(t)
	repository := manga.NewPostgresRepository(pool)
	ctx := context.Background()

	action := pgtest.Insert(t, pool, `INSERT INTO catalog.category (name, slug) VALUES ('Action', 'action') RETURNING id`)
	drama := pgtest.Insert(t, pool, `INSERT INTO catalog.category (name, slug) VALUES ('Drama', 'drama') RETURNING id`)
	tag := pgtest.Insert(t, pool, `INSERT INTO catalog.tag (name, slug) VALUES ('Isekai', 'isekai') RETURNING id`)

	m := &manga.Manga{
		Title:       "Test Saga",
		Slug:        "test-saga",
		Status:      manga.StatusOngoing,
		IsPublished: true,
		Categories:  []int64{action, drama},
		Tags:        []int64{tag},
	}
	require.NoError(t, repository.Save(ctx, m))
	require.NotZero(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())

	found, err := repository.FindBySlug(ctx, "test-saga", softdelete.ExcludeDeleted)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, m.ID, found.ID)
	assert.ElementsMatch(t, []int64{action, drama}, found.Categories)
	assert.Equal(t, []int64{tag}, found.Tags)

	// Re-save with a smaller category set: the dropped association is removed
	found.Categories = []int64{drama}
	found.Tags = nil
	require.NoError(t, repository.Save(ctx, found))

	reloaded, err := repository.FindByID(ctx, m.ID, softdelete.ExcludeDeleted)
	require.NoError(t, err)
	assert.Equal(t, []int64{drama}, reloaded.Categories)
	assert.Empty(t, reloaded.Tags)

	missing, err := repository.FindByID(ctx, m.ID+100, softdelete.ExcludeDeleted)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_SaveErrors(t *testing.T) {
	pool := pgtest.Open(t)
	repository := manga.NewPostgresRepository(pool)
	ctx := context.Background()

	require.NoError(t, repository.Save(ctx, &manga.Manga{Title: "A", Slug: "dup", Status: manga.StatusOngoing}))

	err := repository.Save(ctx, &manga.Manga{Title: "B", Slug: "dup", Status: manga.StatusOngoing})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict), "got %v", err)

	err = repository.Save(ctx, &manga.Manga{ID: 9999, Title: "Ghost", Slug: "ghost", Status: manga.StatusOngoing})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "got %v", err)

	author := int64(4242)
	err = repository.Save(ctx, &manga.Manga{Title: "C", Slug: "c", Status: manga.StatusOngoing, AuthorID: &author})
	assert.True(t, apperr.HasCode(err, apperr.CodeReferenceMissing), "got %v", err)
}

func TestPostgres_ListPagination(t *testing.T) {
	pool := pgtest.Open(t)
	repository := manga.NewPostgresRepository(pool)
	ctx := context.Background()

	for _, slug := range []string{"one", "two", "three"} {
		require.NoError(t, repository.Save(ctx, &manga.Manga{Title: slug, Slug: slug, Status: manga.StatusOngoing, IsPublished: true}))
	}

	first, err := repository.List(ctx, manga.Filter{}, pagination.New(1, 2))
	require.NoError(t, err)
	assert.Len(t, first.Data, 2)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.LastPage)

	beyond, err := repository.List(ctx, manga.Filter{}, pagination.New(3, 2))
	require.NoError(t, err)
	assert.Empty(t, beyond.Data)
	assert.Equal(t, 3, beyond.Total)
	assert.Equal(t, 2, beyond.LastPage)

	completed := manga.StatusCompleted
	none, err := repository.List(ctx, manga.Filter{Status: &completed}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Equal(t, 1, none.LastPage)
}

func TestPostgres_SearchAndLifecycle(t *testing.T) {
	pool := pgtest.Open(t)
	repository := manga.NewPostgresRepository(pool)
	ctx := context.Background()

	m := &manga.Manga{Title: "The Blue Sky", Slug: "the-blue-sky", Description: "clouds", Status: manga.StatusOngoing, IsPublished: true}
	require.NoError(t, repository.Save(ctx, m))

	draft := &manga.Manga{Title: "Blue Draft", Slug: "blue-draft", Status: manga.StatusOngoing}
	require.NoError(t, repository.Save(ctx, draft))

	hits, err := repository.Search(ctx, "BLUE", pagination.New(1, 10), true)
	require.NoError(t, err)
	assert.Equal(t, 1, hits.Total)

	hits, err = repository.Search(ctx, "blue", pagination.New(1, 10), false)
	require.NoError(t, err)
	assert.Equal(t, 2, hits.Total)

	hits, err = repository.Search(ctx, "Cloud", pagination.New(1, 10), true)
	require.NoError(t, err)
	assert.Equal(t, 1, hits.Total)

	deleted, err := repository.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	hits, err = repository.Search(ctx, "blue", pagination.New(1, 10), true)
	require.NoError(t, err)
	assert.Zero(t, hits.Total)

	hidden, err := repository.FindByID(ctx, m.ID, softdelete.ExcludeDeleted)
	require.NoError(t, err)
	assert.Nil(t, hidden)

	kept, err := repository.FindByID(ctx, m.ID, softdelete.IncludeDeleted)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, softdelete.Deleted, kept.State())

	restored, err := repository.Restore(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, restored)

	restoredAgain, err := repository.Restore(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, restoredAgain)

	forced, err := repository.ForceDelete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, forced)

	gone, err := repository.FindByID(ctx, m.ID, softdelete.IncludeDeleted)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

/*
TestPostgres_ConcurrentViews verifies N concurrent increments add exactly N.
*/
func TestPostgres_ConcurrentViews(t *testing.T) {
	pool := pgtest.Open(t)
	repository := manga.NewPostgresRepository(pool)
	ctx := context.Background()

	m := &manga.Manga{Title: "Busy", Slug: "busy", Status: manga.StatusOngoing, IsPublished: true}
	require.NoError(t, repository.Save(ctx, m))

	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := repository.IncrementViews(ctx, m.ID)
			assert.NoError(t, err)
			assert.True(t, found)
		}()
	}
	wg.Wait()

	reloaded, err := repository.FindByID(ctx, m.ID, softdelete.ExcludeDeleted)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), reloaded.Views)

	found, err := repository.IncrementViews(ctx, m.ID+1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPostgres_AverageRatingAndAssociations(t *testing.T) {
	pool := pgtest.Open(t)
	repository := manga.NewPostgresRepository(pool)
	ctx := context.Background()

	m := &manga.Manga{Title: "Rated", Slug: "rated", Status: manga.StatusOngoing, IsPublished: true}
	require.NoError(t, repository.Save(ctx, m))

	average, err := repository.UpdateAverageRating(ctx, m.ID)
	require.NoError(t, err)
	assert.Zero(t, average)

	alice := pgtest.Insert(t, pool, `INSERT INTO users.account (username, email, passwordhash) VALUES ('alice', 'alice@example.com', 'x') RETURNING id`)
	bob := pgtest.Insert(t, pool, `INSERT INTO users.account (username, email, passwordhash) VALUES ('bob', 'bob@example.com', 'x') RETURNING id`)
	pgtest.Insert(t, pool, `INSERT INTO social.rating (userid, mangaid, score) VALUES ($1, $2, 4) RETURNING id`, alice, m.ID)
	pgtest.Insert(t, pool, `INSERT INTO social.rating (userid, mangaid, score) VALUES ($1, $2, 5) RETURNING id`, bob, m.ID)

	before, err := repository.FindByID(ctx, m.ID, softdelete.ExcludeDeleted)
	require.NoError(t, err)

	average, err = repository.UpdateAverageRating(ctx, m.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, average, 1e-9)

	after, err := repository.FindByID(ctx, m.ID, softdelete.ExcludeDeleted)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, after.AverageRating, 1e-9)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt), "rating refresh touches updatedat")

	category := pgtest.Insert(t, pool, `INSERT INTO catalog.category (name, slug) VALUES ('Action', 'action') RETURNING id`)

	added, err := repository.AddCategory(ctx, m.ID, category)
	require.NoError(t, err)
	assert.True(t, added)

	addedAgain, err := repository.AddCategory(ctx, m.ID, category)
	require.NoError(t, err)
	assert.True(t, addedAgain, "attaching twice is idempotent")

	page, err := repository.ListByCategory(ctx, category, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	missing, err := repository.AddCategory(ctx, m.ID+1, category)
	require.NoError(t, err)
	assert.False(t, missing)

	exists, err := repository.SlugExists(ctx, "rated", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repository.SlugExists(ctx, "rated", m.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
