// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mangatest provides an in-memory [manga.Repository] for service tests.
package mangatest

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/mangashelf/internal/core/manga"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Repository is a map-backed [manga.Repository]. Ratings are injected through
// SetScores since the rating table is owned elsewhere.
type Repository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*manga.Manga
	scores map[int64][]float64

	// Err, when set, is returned by every method.
	Err error
}

// New returns an empty repository.
func New() *Repository {
	return &Repository{rows: map[int64]*manga.Manga{}, scores: map[int64][]float64{}}
}

var _ manga.Repository = (*Repository)(nil)

// SetScores replaces the rating scores used by UpdateAverageRating.
func (repository *Repository) SetScores(mangaID int64, scores ...float64) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	repository.scores[mangaID] = scores
}

// Seed stores m as-is (assigning an id when zero) and returns its id.
func (repository *Repository) Seed(m manga.Manga) int64 {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if m.ID == 0 {
		repository.nextID++
		m.ID = repository.nextID
	} else if m.ID > repository.nextID {
		repository.nextID = m.ID
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
		m.UpdatedAt = m.CreatedAt
	}
	repository.rows[m.ID] = clone(&m)
	return m.ID
}

func clone(m *manga.Manga) *manga.Manga {
	copied := *m
	copied.Categories = slices.Clone(m.Categories)
	copied.Tags = slices.Clone(m.Tags)
	if copied.Categories == nil {
		copied.Categories = []int64{}
	}
	if copied.Tags == nil {
		copied.Tags = []int64{}
	}
	return &copied
}

func visible(m *manga.Manga, scope softdelete.Scope) bool {
	return scope == softdelete.IncludeDeleted || m.DeletedAt == nil
}

func (repository *Repository) FindByID(_ context.Context, id int64, scope softdelete.Scope) (*manga.Manga, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return nil, repository.Err
	}

	m, ok := repository.rows[id]
	if !ok || !visible(m, scope) {
		return nil, nil
	}
	return clone(m), nil
}

func (repository *Repository) FindBySlug(_ context.Context, slug string, scope softdelete.Scope) (*manga.Manga, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return nil, repository.Err
	}

	for _, m := range repository.rows {
		if m.Slug == slug && visible(m, scope) {
			return clone(m), nil
		}
	}
	return nil, nil
}

func (repository *Repository) List(_ context.Context, filter manga.Filter, params pagination.Params) (pagination.Page[*manga.Manga], error) {
	return repository.page(params, func(m *manga.Manga) bool {
		return visible(m, filter.Scope) &&
			(filter.Status == nil || m.Status == *filter.Status) &&
			(filter.IsPublished == nil || m.IsPublished == *filter.IsPublished) &&
			(filter.AuthorID == nil || (m.AuthorID != nil && *m.AuthorID == *filter.AuthorID)) &&
			(filter.ArtistID == nil || (m.ArtistID != nil && *m.ArtistID == *filter.ArtistID))
	}, func(a, b *manga.Manga) bool {
		return a.CreatedAt.After(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID > b.ID)
	})
}

func published(m *manga.Manga) bool { return m.IsPublished && m.DeletedAt == nil }

func byUpdated(a, b *manga.Manga) bool { return a.UpdatedAt.After(b.UpdatedAt) }

func (repository *Repository) Featured(_ context.Context, limit int) ([]*manga.Manga, error) {
	return repository.top(limit, func(m *manga.Manga) bool { return published(m) && m.IsFeatured }, byUpdated)
}

func (repository *Repository) Popular(_ context.Context, limit int) ([]*manga.Manga, error) {
	return repository.top(limit, published, func(a, b *manga.Manga) bool { return a.Views > b.Views })
}

func (repository *Repository) LatestUpdated(_ context.Context, limit int) ([]*manga.Manga, error) {
	return repository.top(limit, published, byUpdated)
}

func (repository *Repository) ListByCategory(_ context.Context, categoryID int64, params pagination.Params) (pagination.Page[*manga.Manga], error) {
	return repository.page(params, func(m *manga.Manga) bool { return published(m) && slices.Contains(m.Categories, categoryID) }, byUpdated)
}

func (repository *Repository) ListByTag(_ context.Context, tagID int64, params pagination.Params) (pagination.Page[*manga.Manga], error) {
	return repository.page(params, func(m *manga.Manga) bool { return published(m) && slices.Contains(m.Tags, tagID) }, byUpdated)
}

func (repository *Repository) ListByAuthor(_ context.Context, authorID int64, params pagination.Params) (pagination.Page[*manga.Manga], error) {
	return repository.page(params, func(m *manga.Manga) bool {
		return published(m) && m.AuthorID != nil && *m.AuthorID == authorID
	}, byUpdated)
}

func (repository *Repository) Search(_ context.Context, term string, params pagination.Params, onlyPublished bool) (pagination.Page[*manga.Manga], error) {
	needle := strings.ToLower(term)
	return repository.page(params, func(m *manga.Manga) bool {
		return m.DeletedAt == nil && (!onlyPublished || m.IsPublished) &&
			(strings.Contains(strings.ToLower(m.Title), needle) || strings.Contains(strings.ToLower(m.Description), needle))
	}, func(a, b *manga.Manga) bool { return a.Title < b.Title })
}

func (repository *Repository) Save(_ context.Context, m *manga.Manga) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return repository.Err
	}

	for id, existing := range repository.rows {
		if existing.Slug == m.Slug && id != m.ID {
			return apperr.Conflict("A manga with this slug already exists")
		}
	}

	now := time.Now().UTC()
	if m.IsNew() {
		repository.nextID++
		m.ID = repository.nextID
		m.CreatedAt = now
	} else {
		existing, ok := repository.rows[m.ID]
		if !ok {
			return apperr.NotFound("Manga")
		}
		m.CreatedAt = existing.CreatedAt
		m.Views = existing.Views
		m.AverageRating = existing.AverageRating
		m.DeletedAt = existing.DeletedAt
	}
	m.UpdatedAt = now

	repository.rows[m.ID] = clone(m)
	return nil
}

func (repository *Repository) Delete(_ context.Context, id int64) (bool, error) {
	return repository.mutate(id, func(m *manga.Manga) bool {
		if m.DeletedAt != nil {
			return false
		}
		now := time.Now().UTC()
		m.DeletedAt = &now
		return true
	})
}

func (repository *Repository) Restore(_ context.Context, id int64) (bool, error) {
	return repository.mutate(id, func(m *manga.Manga) bool {
		if m.DeletedAt == nil {
			return false
		}
		m.DeletedAt = nil
		return true
	})
}

func (repository *Repository) ForceDelete(_ context.Context, id int64) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return false, repository.Err
	}

	if _, ok := repository.rows[id]; !ok {
		return false, nil
	}
	delete(repository.rows, id)
	return true, nil
}

func (repository *Repository) IncrementViews(_ context.Context, id int64) (bool, error) {
	return repository.mutate(id, func(m *manga.Manga) bool {
		m.Views++
		return true
	})
}

func (repository *Repository) UpdateAverageRating(_ context.Context, id int64) (float64, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return 0, repository.Err
	}

	m, ok := repository.rows[id]
	if !ok {
		return 0, apperr.NotFound("Manga")
	}

	var sum float64
	scores := repository.scores[id]
	for _, score := range scores {
		sum += score
	}

	m.AverageRating = 0
	if len(scores) > 0 {
		m.AverageRating = sum / float64(len(scores))
	}
	m.UpdatedAt = time.Now().UTC()
	return m.AverageRating, nil
}

func (repository *Repository) AddCategory(_ context.Context, mangaID, categoryID int64) (bool, error) {
	return repository.mutateActive(mangaID, func(m *manga.Manga) { m.AttachCategory(categoryID) })
}

func (repository *Repository) RemoveCategory(_ context.Context, mangaID, categoryID int64) (bool, error) {
	return repository.mutateActive(mangaID, func(m *manga.Manga) { m.DetachCategory(categoryID) })
}

func (repository *Repository) AddTag(_ context.Context, mangaID, tagID int64) (bool, error) {
	return repository.mutateActive(mangaID, func(m *manga.Manga) { m.AttachTag(tagID) })
}

func (repository *Repository) RemoveTag(_ context.Context, mangaID, tagID int64) (bool, error) {
	return repository.mutateActive(mangaID, func(m *manga.Manga) { m.DetachTag(tagID) })
}

func (repository *Repository) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return false, repository.Err
	}

	for id, m := range repository.rows {
		if m.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// # Helpers

func (repository *Repository) mutate(id int64, apply func(*manga.Manga) bool) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return false, repository.Err
	}

	m, ok := repository.rows[id]
	if !ok {
		return false, nil
	}
	return apply(m), nil
}

func (repository *Repository) mutateActive(id int64, apply func(*manga.Manga)) (bool, error) {
	return repository.mutate(id, func(m *manga.Manga) bool {
		if m.DeletedAt != nil {
			return false
		}
		apply(m)
		return true
	})
}

func (repository *Repository) matching(keep func(*manga.Manga) bool, less func(a, b *manga.Manga) bool) ([]*manga.Manga, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return nil, repository.Err
	}

	var out []*manga.Manga
	for _, m := range repository.rows {
		if keep(m) {
			out = append(out, clone(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if less(out[i], out[j]) {
			return true
		}
		if less(out[j], out[i]) {
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (repository *Repository) top(limit int, keep func(*manga.Manga) bool, less func(a, b *manga.Manga) bool) ([]*manga.Manga, error) {
	all, err := repository.matching(keep, less)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []*manga.Manga{}
	}
	return all, nil
}

func (repository *Repository) page(params pagination.Params, keep func(*manga.Manga) bool, less func(a, b *manga.Manga) bool) (pagination.Page[*manga.Manga], error) {
	all, err := repository.matching(keep, less)
	if err != nil {
		return pagination.Page[*manga.Manga]{}, err
	}

	start := min(params.Offset(), len(all))
	end := min(start+params.Limit(), len(all))
	return pagination.NewPage(all[start:end], len(all), params), nil
}
