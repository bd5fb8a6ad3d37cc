// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package chaptertest provides an in-memory [chapter.Repository] for service tests.
package chaptertest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/mangashelf/internal/core/chapter"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Repository is a map-backed [chapter.Repository].
type Repository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*chapter.Chapter

	// Err, when set, is returned by every method.
	Err error
}

// New returns an empty repository.
func New() *Repository {
	return &Repository{rows: map[int64]*chapter.Chapter{}}
}

var _ chapter.Repository = (*Repository)(nil)

// Seed stores c as-is (assigning an id when zero) and returns its id.
func (repository *Repository) Seed(c chapter.Chapter) int64 {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if c.ID == 0 {
		repository.nextID++
		c.ID = repository.nextID
	} else if c.ID > repository.nextID {
		repository.nextID = c.ID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
		c.UpdatedAt = c.CreatedAt
	}
	repository.rows[c.ID] = clone(&c)
	return c.ID
}

func clone(c *chapter.Chapter) *chapter.Chapter {
	copied := *c
	copied.Pages = slices.Clone(c.Pages)
	return &copied
}

func visible(c *chapter.Chapter, scope softdelete.Scope) bool {
	return scope == softdelete.IncludeDeleted || c.DeletedAt == nil
}

func readable(c *chapter.Chapter) bool { return c.IsPublished && c.DeletedAt == nil }

func (repository *Repository) FindByID(_ context.Context, id int64, scope softdelete.Scope) (*chapter.Chapter, error) {
	return repository.first(func(c *chapter.Chapter) bool { return c.ID == id && visible(c, scope) }, nil)
}

func (repository *Repository) FindBySlug(_ context.Context, slug string, scope softdelete.Scope) (*chapter.Chapter, error) {
	return repository.first(func(c *chapter.Chapter) bool { return c.Slug == slug && visible(c, scope) }, nil)
}

func (repository *Repository) FindByMangaAndNumber(_ context.Context, mangaID int64, number float64) (*chapter.Chapter, error) {
	return repository.first(func(c *chapter.Chapter) bool { return c.MangaID == mangaID && c.ChapterNumber == number }, nil)
}

func (repository *Repository) Next(_ context.Context, mangaID int64, number float64) (*chapter.Chapter, error) {
	return repository.first(func(c *chapter.Chapter) bool {
		return c.MangaID == mangaID && c.ChapterNumber > number && readable(c)
	}, func(a, b *chapter.Chapter) bool { return a.ChapterNumber < b.ChapterNumber })
}

func (repository *Repository) Previous(_ context.Context, mangaID int64, number float64) (*chapter.Chapter, error) {
	return repository.first(func(c *chapter.Chapter) bool {
		return c.MangaID == mangaID && c.ChapterNumber < number && readable(c)
	}, func(a, b *chapter.Chapter) bool { return a.ChapterNumber > b.ChapterNumber })
}

func (repository *Repository) ListByManga(_ context.Context, mangaID int64, params pagination.Params, onlyPublished bool) (pagination.Page[*chapter.Chapter], error) {
	all, err := repository.matching(func(c *chapter.Chapter) bool {
		return c.MangaID == mangaID && c.DeletedAt == nil && (!onlyPublished || c.IsPublished)
	}, func(a, b *chapter.Chapter) bool { return a.ChapterNumber < b.ChapterNumber })
	if err != nil {
		return pagination.Page[*chapter.Chapter]{}, err
	}

	start := min(params.Offset(), len(all))
	end := min(start+params.Limit(), len(all))
	return pagination.NewPage(all[start:end], len(all), params), nil
}

func (repository *Repository) Latest(_ context.Context, limit int, onlyPublished bool) ([]*chapter.Chapter, error) {
	all, err := repository.matching(func(c *chapter.Chapter) bool {
		return c.DeletedAt == nil && (!onlyPublished || c.IsPublished)
	}, func(a, b *chapter.Chapter) bool {
		switch {
		case a.ReleaseDate == nil:
			return false
		case b.ReleaseDate == nil:
			return true
		default:
			return a.ReleaseDate.After(*b.ReleaseDate)
		}
	})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (repository *Repository) Save(_ context.Context, c *chapter.Chapter) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return repository.Err
	}

	for id, existing := range repository.rows {
		if id == c.ID {
			continue
		}
		if existing.MangaID == c.MangaID && existing.ChapterNumber == c.ChapterNumber {
			return apperr.Conflict("A chapter with this number already exists for this manga")
		}
		if existing.Slug == c.Slug {
			return apperr.Conflict("A chapter with this slug already exists")
		}
	}

	now := time.Now().UTC()
	if c.IsNew() {
		repository.nextID++
		c.ID = repository.nextID
		c.CreatedAt = now
	} else {
		existing, ok := repository.rows[c.ID]
		if !ok {
			return apperr.NotFound("Chapter")
		}
		c.CreatedAt = existing.CreatedAt
		c.Views = existing.Views
		c.DeletedAt = existing.DeletedAt
	}
	c.UpdatedAt = now

	repository.rows[c.ID] = clone(c)
	return nil
}

func (repository *Repository) Delete(_ context.Context, id int64) (bool, error) {
	return repository.mutate(id, func(c *chapter.Chapter) bool {
		if c.DeletedAt != nil {
			return false
		}
		now := time.Now().UTC()
		c.DeletedAt = &now
		return true
	})
}

func (repository *Repository) Restore(_ context.Context, id int64) (bool, error) {
	return repository.mutate(id, func(c *chapter.Chapter) bool {
		if c.DeletedAt == nil {
			return false
		}
		c.DeletedAt = nil
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
	return repository.mutate(id, func(c *chapter.Chapter) bool {
		if c.DeletedAt != nil {
			return false
		}
		c.Views++
		return true
	})
}

// # Helpers

func (repository *Repository) mutate(id int64, apply func(*chapter.Chapter) bool) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return false, repository.Err
	}

	c, ok := repository.rows[id]
	if !ok {
		return false, nil
	}
	return apply(c), nil
}

func (repository *Repository) first(keep func(*chapter.Chapter) bool, less func(a, b *chapter.Chapter) bool) (*chapter.Chapter, error) {
	if less == nil {
		less = func(a, b *chapter.Chapter) bool { return false }
	}
	all, err := repository.matching(keep, less)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (repository *Repository) matching(keep func(*chapter.Chapter) bool, less func(a, b *chapter.Chapter) bool) ([]*chapter.Chapter, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if repository.Err != nil {
		return nil, repository.Err
	}

	out := []*chapter.Chapter{}
	for _, c := range repository.rows {
		if keep(c) {
			out = append(out, clone(c))
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
