// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	stdctx "context"
	"log/slog"

	"github.com/taibuivan/mangashelf/internal/core/manga"
	"github.com/taibuivan/mangashelf/internal/platform/cache"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// MangaFinder loads the manga behind each matched id.
type MangaFinder interface {
	FindByID(context stdctx.Context, id int64, scope softdelete.Scope) (*manga.Manga, error)
}

// Service runs searches and assembles full manga results.
type Service struct {
	matcher Matcher
	mangas  MangaFinder
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewService constructs a new search [Service].
func NewService(matcher Matcher, mangas MangaFinder, readCache *cache.Cache, logger *slog.Logger) *Service {
	return &Service{matcher: matcher, mangas: mangas, cache: readCache, logger: logger}
}

type cacheKey struct {
	Criteria Criteria `json:"criteria"`
	Page     int      `json:"page"`
	PerPage  int      `json:"per_page"`
}

/*
Search returns one page of published manga matching criteria.

Description: The matcher yields ordered ids; each id is then loaded through
the manga repository so results carry their categories and tags. An id whose
manga vanished between the two steps is skipped.

Parameters:
  - context: context.Context
  - criteria: Criteria
  - params: pagination.Params

Returns:
  - pagination.Page[*manga.Manga]
  - error: VALIDATION_ERROR for a bad status or sort direction
*/
func (service *Service) Search(context stdctx.Context, criteria Criteria, params pagination.Params) (pagination.Page[*manga.Manga], error) {
	if err := validateCriteria(criteria); err != nil {
		return pagination.Page[*manga.Manga]{}, err
	}

	key := cache.ListKey("search", cacheKey{Criteria: criteria, Page: params.Page, PerPage: params.PerPage})

	return cache.Remember(context, service.cache, key, service.cache.TTL(), func(context stdctx.Context) (pagination.Page[*manga.Manga], error) {
		ids, total, err := service.matcher.Match(context, criteria, params)
		if err != nil {
			return pagination.Page[*manga.Manga]{}, err
		}

		results := make([]*manga.Manga, 0, len(ids))
		for _, id := range ids {
			found, err := service.mangas.FindByID(context, id, softdelete.ExcludeDeleted)
			if err != nil {
				return pagination.Page[*manga.Manga]{}, err
			}
			if found == nil {
				service.logger.Warn("search_result_vanished", slog.Int64("manga_id", id))
				continue
			}
			results = append(results, found)
		}

		return pagination.NewPage(results, total, params), nil
	})
}

func validateCriteria(criteria Criteria) error {
	validator := &validate.Validator{}

	if criteria.Status != nil {
		validator.OneOf("status", string(*criteria.Status), manga.StatusStrings()...)
	}
	if criteria.SortDir != "" {
		validator.OneOf("sort_dir", criteria.SortDir, SortAsc, SortDesc)
	}
	validator.OptionalPositiveID("author_id", criteria.AuthorID).
		OptionalPositiveID("artist_id", criteria.ArtistID)

	return validator.Err()
}
