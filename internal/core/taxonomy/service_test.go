// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/core/taxonomy"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/cache"
)

type memoryRepository struct {
	terms map[taxonomy.Kind][]*taxonomy.Term
	lists int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{terms: map[taxonomy.Kind][]*taxonomy.Term{}}
}

func (repository *memoryRepository) List(_ context.Context, kind taxonomy.Kind) ([]*taxonomy.Term, error) {
	repository.lists++
	out := append([]*taxonomy.Term{}, repository.terms[kind]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (repository *memoryRepository) FindBySlug(_ context.Context, kind taxonomy.Kind, slug string) (*taxonomy.Term, error) {
	for _, term := range repository.terms[kind] {
		if term.Slug == slug {
			return term, nil
		}
	}
	return nil, nil
}

func (repository *memoryRepository) Create(_ context.Context, kind taxonomy.Kind, term *taxonomy.Term) error {
	term.ID = int64(len(repository.terms[kind]) + 1)
	term.CreatedAt = time.Now().UTC()
	repository.terms[kind] = append(repository.terms[kind], term)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_CreateDerivesSlug(t *testing.T) {
	repository := newMemoryRepository()
	service := taxonomy.NewService(repository, cache.Disabled(discardLogger()), discardLogger())
	ctx := context.Background()

	category, err := service.CreateCategory(ctx, "  Slice of Life ")
	require.NoError(t, err)
	assert.Equal(t, "Slice of Life", category.Name)
	assert.Equal(t, "slice-of-life", category.Slug)

	_, err = service.CreateCategory(ctx, "slice of life")
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	// The same slug is free in another kind
	tag, err := service.CreateTag(ctx, "Slice of Life")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tag.ID)
}

func TestService_CreateValidation(t *testing.T) {
	service := taxonomy.NewService(newMemoryRepository(), cache.Disabled(discardLogger()), discardLogger())

	for _, name := range []string{"", "   ", "!!!"} {
		_, err := service.CreateTag(context.Background(), name)
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation), name)
	}
}

func TestService_ListIsCachedUntilCreate(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repository := newMemoryRepository()
	service := taxonomy.NewService(repository, cache.New(client, time.Minute, discardLogger()), discardLogger())
	ctx := context.Background()

	_, err = service.CreateTag(ctx, "Magic")
	require.NoError(t, err)

	first, err := service.ListTags(ctx)
	require.NoError(t, err)
	second, err := service.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Slug, second[0].Slug)
	assert.Equal(t, 1, repository.lists)

	_, err = service.CreateTag(ctx, "Isekai")
	require.NoError(t, err)

	third, err := service.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, "Isekai", third[0].Name)
	assert.Equal(t, 2, repository.lists)
}

func TestService_GetBySlug(t *testing.T) {
	service := taxonomy.NewService(newMemoryRepository(), cache.Disabled(discardLogger()), discardLogger())

	_, err := service.GetBySlug(context.Background(), taxonomy.KindAuthor, "nobody")
	require.Error(t, err)
	assert.Equal(t, "Author not found", err.Error())
}
