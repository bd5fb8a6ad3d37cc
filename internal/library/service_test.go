// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/core/chapter"
	"github.com/taibuivan/mangashelf/internal/core/chapter/chaptertest"
	"github.com/taibuivan/mangashelf/internal/library"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/ctxutil"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

type memoryStore struct {
	mu        sync.Mutex
	nextID    int64
	clock     time.Time
	bookmarks map[[2]int64]time.Time
	progress  map[[2]int64]*library.Progress
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		clock:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		bookmarks: map[[2]int64]time.Time{},
		progress:  map[[2]int64]*library.Progress{},
	}
}

func (store *memoryStore) tick() time.Time {
	store.clock = store.clock.Add(time.Minute)
	return store.clock
}

func (store *memoryStore) AddBookmark(_ context.Context, userID, mangaID int64) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := [2]int64{userID, mangaID}
	if _, ok := store.bookmarks[key]; ok {
		return false, nil
	}
	store.bookmarks[key] = store.tick()
	return true, nil
}

func (store *memoryStore) RemoveBookmark(_ context.Context, userID, mangaID int64) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := [2]int64{userID, mangaID}
	_, ok := store.bookmarks[key]
	delete(store.bookmarks, key)
	return ok, nil
}

func (store *memoryStore) ListBookmarks(_ context.Context, userID int64, params pagination.Params) (pagination.Page[*library.Bookmark], error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var bookmarks []*library.Bookmark
	for key, created := range store.bookmarks {
		if key[0] == userID {
			bookmarks = append(bookmarks, &library.Bookmark{MangaID: key[1], CreatedAt: created})
		}
	}
	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].CreatedAt.After(bookmarks[j].CreatedAt) })
	return window(bookmarks, params), nil
}

func (store *memoryStore) SaveProgress(_ context.Context, progress *library.Progress) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := [2]int64{progress.UserID, progress.ChapterID}
	if existing, ok := store.progress[key]; ok {
		progress.ID = existing.ID
	} else {
		store.nextID++
		progress.ID = store.nextID
	}
	progress.LastReadAt = store.tick()
	copied := *progress
	store.progress[key] = &copied
	return nil
}

func (store *memoryStore) History(_ context.Context, userID int64, params pagination.Params) (pagination.Page[*library.Progress], error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var history []*library.Progress
	for key, progress := range store.progress {
		if key[0] == userID {
			copied := *progress
			history = append(history, &copied)
		}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].LastReadAt.After(history[j].LastReadAt) })
	return window(history, params), nil
}

func window[T any](items []T, params pagination.Params) pagination.Page[T] {
	total := len(items)
	start := min(params.Offset(), total)
	end := min(start+params.Limit(), total)
	return pagination.NewPage(items[start:end], total, params)
}

type mangaSet map[int64]bool

func (set mangaSet) Exists(_ context.Context, id int64) (bool, error) { return set[id], nil }

type fixture struct {
	service  *library.Service
	store    *memoryStore
	chapters *chaptertest.Repository
}

func newFixture() fixture {
	store := newMemoryStore()
	chapters := chaptertest.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fixture{
		service:  library.NewService(store, mangaSet{1: true, 2: true}, chapters, logger),
		store:    store,
		chapters: chapters,
	}
}

func (f fixture) seedChapter(number float64, published bool, pages int) int64 {
	c := chapter.Chapter{MangaID: 1, ChapterNumber: number, IsPublished: published}
	for page := 1; page <= pages; page++ {
		c.Pages = append(c.Pages, chapter.Page{Number: page, ImageURL: "p.png"})
	}
	return f.chapters.Seed(c)
}

func TestService_Bookmarks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.service.AddBookmark(ctx, 7, 1))
	require.NoError(t, f.service.AddBookmark(ctx, 7, 1))
	require.NoError(t, f.service.AddBookmark(ctx, 7, 2))

	err := f.service.AddBookmark(ctx, 7, 99)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	page, err := f.service.ListBookmarks(ctx, 7, pagination.New(1, 20))
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, int64(2), page.Data[0].MangaID)

	require.NoError(t, f.service.RemoveBookmark(ctx, 7, 2))
	require.NoError(t, f.service.RemoveBookmark(ctx, 7, 2))

	page, err = f.service.ListBookmarks(ctx, 7, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestService_RecordProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.seedChapter(1, true, 10)
	second := f.seedChapter(2, true, 10)

	progress, err := f.service.RecordProgress(ctx, 7, first, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.PageNumber)
	assert.Equal(t, int64(1), progress.MangaID)
	assert.Equal(t, 1.0, progress.ChapterNumber)

	_, err = f.service.RecordProgress(ctx, 7, second, 4)
	require.NoError(t, err)

	again, err := f.service.RecordProgress(ctx, 7, first, 9)
	require.NoError(t, err)
	assert.Equal(t, progress.ID, again.ID)

	history, err := f.service.History(ctx, 7, pagination.New(1, 20))
	require.NoError(t, err)
	require.Equal(t, 2, history.Total)
	assert.Equal(t, first, history.Data[0].ChapterID)
	assert.Equal(t, 9, history.Data[0].PageNumber)
	assert.Equal(t, second, history.Data[1].ChapterID)
}

func TestService_RecordProgressRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	hidden := f.seedChapter(1, false, 3)
	visible := f.seedChapter(2, true, 3)

	_, err := f.service.RecordProgress(ctx, 7, hidden, 1)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.RecordProgress(ctx, 7, 404, 1)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	_, err = f.service.RecordProgress(ctx, 7, visible, 4)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.RecordProgress(ctx, 7, visible, -2)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestHandler_RequiresSession(t *testing.T) {
	f := newFixture()

	anonymous := chi.NewRouter()
	library.NewHandler(f.service).RegisterRoutes(anonymous)
	recorder := httptest.NewRecorder()
	anonymous.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/me/bookmarks", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	signedIn := chi.NewRouter()
	signedIn.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := &sec.AuthClaims{UserID: 7, Role: sec.RoleUser}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithClaims(request.Context(), claims)))
		})
	})
	library.NewHandler(f.service).RegisterRoutes(signedIn)

	recorder = httptest.NewRecorder()
	signedIn.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/me/bookmarks/1", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	chapterID := f.seedChapter(1, true, 5)
	recorder = httptest.NewRecorder()
	target := "/me/history/" + strconv.FormatInt(chapterID, 10)
	signedIn.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, target, strings.NewReader(`{"page_number": 3}`)))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"page_number":3`)
}
