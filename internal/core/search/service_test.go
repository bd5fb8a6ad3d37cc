// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/core/manga"
	"github.com/taibuivan/mangashelf/internal/core/manga/mangatest"
	"github.com/taibuivan/mangashelf/internal/core/search"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/cache"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

type stubMatcher struct {
	ids   []int64
	total int
	err   error
	calls int
}

func (stub *stubMatcher) Match(context.Context, search.Criteria, pagination.Params) ([]int64, int, error) {
	stub.calls++
	return stub.ids, stub.total, stub.err
}

func newService(matcher search.Matcher, mangas search.MangaFinder) *search.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return search.NewService(matcher, mangas, cache.Disabled(logger), logger)
}

func TestService_Search_PreservesOrder(t *testing.T) {
	mangas := mangatest.New()
	first := mangas.Seed(manga.Manga{Title: "A", Slug: "a", IsPublished: true})
	second := mangas.Seed(manga.Manga{Title: "B", Slug: "b", IsPublished: true})

	matcher := &stubMatcher{ids: []int64{second, first, 999}, total: 3}
	page, err := newService(matcher, mangas).Search(context.Background(), search.Criteria{}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)

	require.Len(t, page.Data, 2)
	assert.Equal(t, second, page.Data[0].ID)
	assert.Equal(t, first, page.Data[1].ID)
	assert.Equal(t, 3, page.Total)
}

func TestService_Search_Validation(t *testing.T) {
	matcher := &stubMatcher{}
	status := manga.Status("paused")

	_, err := newService(matcher, mangatest.New()).Search(context.Background(), search.Criteria{Status: &status, SortDir: "up"}, pagination.Params{Page: 1, PerPage: 10})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Len(t, appErr.Details, 2)
	assert.Zero(t, matcher.calls)
}

func TestService_Search_MatcherError(t *testing.T) {
	matcher := &stubMatcher{err: errors.New("boom")}

	_, err := newService(matcher, mangatest.New()).Search(context.Background(), search.Criteria{}, pagination.Params{Page: 1, PerPage: 10})
	assert.EqualError(t, err, "boom")
}
