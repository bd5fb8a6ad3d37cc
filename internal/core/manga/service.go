// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	stdctx "context"
	"log/slog"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/cache"
	"github.com/taibuivan/mangashelf/internal/platform/constants"
	"github.com/taibuivan/mangashelf/internal/platform/events"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/pagination"
	"github.com/taibuivan/mangashelf/pkg/pointer"
	"github.com/taibuivan/mangashelf/pkg/slug"
)

const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldStatus      = "status"
	FieldAuthorID    = "author_id"
	FieldArtistID    = "artist_id"
	FieldReleaseYear = "release_year"
	FieldCategories  = "categories"
	FieldTags        = "tags"

	maxTitleLength = 255
	minReleaseYear = 1900
	maxReleaseYear = 2100
)

// List cache types, combined with [cache.ListKey].
const (
	listAll      = "all"
	listFeatured = "featured"
	listPopular  = "popular"
	listLatest   = "latest"
	listCategory = "category"
	listTag      = "tag"
	listAuthor   = "author"
	listSearch   = "search"
)

// # Service Layer

// Service orchestrates catalogue reads and the create/update/delete actions for manga.
type Service struct {
	repository Repository
	cache      *cache.Cache
	events     events.Sink
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its required collaborators.
func NewService(repository Repository, readCache *cache.Cache, sink events.Sink, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      readCache,
		events:     sink,
		logger:     logger,
	}
}

// # Reads

/*
Get returns a manga by id.

Parameters:
  - context: stdctx.Context
  - id: int64
  - includeUnpublished: bool (staff views)

Returns:
  - *Manga
  - error: NOT_FOUND when missing, deleted or hidden from the caller
*/
func (service *Service) Get(context stdctx.Context, id int64, includeUnpublished bool) (*Manga, error) {
	manga, err := cache.Remember(context, service.cache, cache.MangaKey(id), service.cache.TTL(), func(context stdctx.Context) (*Manga, error) {
		return service.mustFind(service.repository.FindByID(context, id, softdelete.ExcludeDeleted))
	})
	if err != nil {
		return nil, err
	}
	return visible(manga, includeUnpublished)
}

// GetBySlug returns a manga by slug under the same visibility rules as [Service.Get].
func (service *Service) GetBySlug(context stdctx.Context, mangaSlug string, includeUnpublished bool) (*Manga, error) {
	manga, err := cache.Remember(context, service.cache, cache.MangaSlugKey(mangaSlug), service.cache.TTL(), func(context stdctx.Context) (*Manga, error) {
		return service.mustFind(service.repository.FindBySlug(context, mangaSlug, softdelete.ExcludeDeleted))
	})
	if err != nil {
		return nil, err
	}
	return visible(manga, includeUnpublished)
}

// List returns a filtered catalogue page.
func (service *Service) List(context stdctx.Context, filter Filter, params pagination.Params) (pagination.Page[*Manga], error) {
	key := cache.ListKey(listAll, struct {
		Filter Filter
		Params pagination.Params
	}{filter, params})

	return cache.Remember(context, service.cache, key, service.cache.TTL(), func(context stdctx.Context) (pagination.Page[*Manga], error) {
		return service.repository.List(context, filter, params)
	})
}

// Featured returns the featured showcase, bounded by limit.
func (service *Service) Featured(context stdctx.Context, limit int) ([]*Manga, error) {
	limit = ShowcaseLimit(limit)
	return cache.Remember(context, service.cache, cache.ListKey(listFeatured, limit), service.cache.TTL(), func(context stdctx.Context) ([]*Manga, error) {
		return service.repository.Featured(context, limit)
	})
}

// Popular returns the most viewed manga, bounded by limit.
func (service *Service) Popular(context stdctx.Context, limit int) ([]*Manga, error) {
	limit = ShowcaseLimit(limit)
	return cache.Remember(context, service.cache, cache.ListKey(listPopular, limit), service.cache.TTL(), func(context stdctx.Context) ([]*Manga, error) {
		return service.repository.Popular(context, limit)
	})
}

// Latest returns the most recently updated manga, bounded by limit.
func (service *Service) Latest(context stdctx.Context, limit int) ([]*Manga, error) {
	limit = ShowcaseLimit(limit)
	return cache.Remember(context, service.cache, cache.ListKey(listLatest, limit), service.cache.TTL(), func(context stdctx.Context) ([]*Manga, error) {
		return service.repository.LatestUpdated(context, limit)
	})
}

// ByCategory lists published manga in a category.
func (service *Service) ByCategory(context stdctx.Context, categoryID int64, params pagination.Params) (pagination.Page[*Manga], error) {
	key := cache.ListKey(listCategory, []any{categoryID, params})
	return cache.Remember(context, service.cache, key, service.cache.TTL(), func(context stdctx.Context) (pagination.Page[*Manga], error) {
		return service.repository.ListByCategory(context, categoryID, params)
	})
}

// ByTag lists published manga carrying a tag.
func (service *Service) ByTag(context stdctx.Context, tagID int64, params pagination.Params) (pagination.Page[*Manga], error) {
	key := cache.ListKey(listTag, []any{tagID, params})
	return cache.Remember(context, service.cache, key, service.cache.TTL(), func(context stdctx.Context) (pagination.Page[*Manga], error) {
		return service.repository.ListByTag(context, tagID, params)
	})
}

// ByAuthor lists published manga by an author.
func (service *Service) ByAuthor(context stdctx.Context, authorID int64, params pagination.Params) (pagination.Page[*Manga], error) {
	key := cache.ListKey(listAuthor, []any{authorID, params})
	return cache.Remember(context, service.cache, key, service.cache.TTL(), func(context stdctx.Context) (pagination.Page[*Manga], error) {
		return service.repository.ListByAuthor(context, authorID, params)
	})
}

// Search runs the simple title/description substring search. Unpublished
// manga only match when includeUnpublished is set.
func (service *Service) Search(context stdctx.Context, term string, params pagination.Params, includeUnpublished bool) (pagination.Page[*Manga], error) {
	key := cache.ListKey(listSearch, []any{term, params, includeUnpublished})
	return cache.Remember(context, service.cache, key, service.cache.TTL(), func(context stdctx.Context) (pagination.Page[*Manga], error) {
		return service.repository.Search(context, term, params, !includeUnpublished)
	})
}

// RecordView increments the view counter. Cached entries keep their stale count until the next write.
func (service *Service) RecordView(context stdctx.Context, id int64) error {
	found, err := service.repository.IncrementViews(context, id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Manga")
	}
	return nil
}

// # Actions

// CreateInput carries the fields accepted when creating a manga.
type CreateInput struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Status      Status  `json:"status"`
	CoverImage  string  `json:"cover_image"`
	Thumbnail   string  `json:"thumbnail"`
	AuthorID    *int64  `json:"author_id"`
	ArtistID    *int64  `json:"artist_id"`
	ReleaseYear *int    `json:"release_year"`
	IsFeatured  *bool   `json:"is_featured"`
	IsPublished *bool   `json:"is_published"`
	Categories  []int64 `json:"categories"`
	Tags        []int64 `json:"tags"`
}

/*
Create validates input, derives the slug, persists the manga and announces it.

Description: Status defaults to ongoing, IsPublished to true and IsFeatured
to false. A slug already used by any manga, deleted ones included, fails
with CONFLICT before the insert is attempted.

Parameters:
  - context: stdctx.Context
  - input: CreateInput

Returns:
  - *Manga: The saved entity with its id
  - error: VALIDATION_ERROR, CONFLICT, REFERENCE_NOT_FOUND or storage errors
*/
func (service *Service) Create(context stdctx.Context, input CreateInput) (*Manga, error) {

	// 1. Defaults
	manga := &Manga{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Status:      input.Status,
		CoverImage:  input.CoverImage,
		Thumbnail:   input.Thumbnail,
		AuthorID:    input.AuthorID,
		ArtistID:    input.ArtistID,
		ReleaseYear: input.ReleaseYear,
		IsPublished: pointer.Fallback(input.IsPublished, true),
		IsFeatured:  pointer.Val(input.IsFeatured),
		Categories:  input.Categories,
		Tags:        input.Tags,
	}
	if manga.Status == "" {
		manga.Status = StatusOngoing
	}
	if manga.Slug == "" {
		manga.Slug = slug.From(manga.Title)
	}

	// 2. Validation
	if err := validateManga(manga); err != nil {
		return nil, err
	}

	// 3. Uniqueness pre-check
	if err := service.ensureSlugAvailable(context, manga.Slug, 0); err != nil {
		return nil, err
	}

	// 4. Persistence
	if err := service.repository.Save(context, manga); err != nil {
		return nil, err
	}

	service.invalidate(context, manga)
	service.events.Emit(context, events.New(events.MangaCreated, manga.ID, manga))

	service.logger.Info("manga_created",
		slog.Int64("manga_id", manga.ID),
		slog.String("slug", manga.Slug),
	)

	return manga, nil
}

/*
Update resolves a manga by slug, merges the set fields of changes and saves it.

Returns:
  - *Manga: The updated entity
  - error: NOT_FOUND before any change is applied, VALIDATION_ERROR, CONFLICT
*/
func (service *Service) Update(context stdctx.Context, mangaSlug string, changes Changes) (*Manga, error) {
	manga, err := service.mustFind(service.repository.FindBySlug(context, mangaSlug, softdelete.ExcludeDeleted))
	if err != nil {
		return nil, err
	}

	previousSlug := manga.Slug
	manga.Apply(changes)

	if err := validateManga(manga); err != nil {
		return nil, err
	}

	if manga.Slug != previousSlug {
		if err := service.ensureSlugAvailable(context, manga.Slug, manga.ID); err != nil {
			return nil, err
		}
	}

	if err := service.repository.Save(context, manga); err != nil {
		return nil, err
	}

	service.invalidate(context, manga, previousSlug)
	service.events.Emit(context, events.New(events.MangaUpdated, manga.ID, manga))

	service.logger.Info("manga_updated",
		slog.Int64("manga_id", manga.ID),
		slog.String("slug", manga.Slug),
	)

	return manga, nil
}

// Delete soft-deletes a manga. Reports false when nothing was active under id.
func (service *Service) Delete(context stdctx.Context, id int64) (bool, error) {
	return service.lifecycle(context, id, "soft", events.MangaDeleted, service.repository.Delete)
}

// Restore brings back a soft-deleted manga. Reports false when nothing was deleted under id.
func (service *Service) Restore(context stdctx.Context, id int64) (bool, error) {
	return service.lifecycle(context, id, "restore", events.MangaUpdated, service.repository.Restore)
}

// ForceDelete permanently removes a manga and everything that cascades from it.
func (service *Service) ForceDelete(context stdctx.Context, id int64) (bool, error) {
	return service.lifecycle(context, id, "force", events.MangaDeleted, service.repository.ForceDelete)
}

func (service *Service) lifecycle(context stdctx.Context, id int64, mode string, eventType events.Type, apply func(stdctx.Context, int64) (bool, error)) (bool, error) {

	// The slug is needed to drop the by-slug cache entry
	manga, err := service.repository.FindByID(context, id, softdelete.IncludeDeleted)
	if err != nil {
		return false, err
	}
	if manga == nil {
		return false, nil
	}

	changed, err := apply(context, id)
	if err != nil || !changed {
		return changed, err
	}

	service.invalidate(context, manga)
	service.events.Emit(context, events.New(eventType, id, map[string]string{"mode": mode, "slug": manga.Slug}))

	service.logger.Info("manga_lifecycle_changed",
		slog.Int64("manga_id", id),
		slog.String("mode", mode),
	)

	return true, nil
}

// # Associations

// AddCategory attaches a category to a manga.
func (service *Service) AddCategory(context stdctx.Context, mangaID, categoryID int64) error {
	return service.associate(context, mangaID, service.repository.AddCategory, categoryID)
}

// RemoveCategory detaches a category from a manga.
func (service *Service) RemoveCategory(context stdctx.Context, mangaID, categoryID int64) error {
	return service.associate(context, mangaID, service.repository.RemoveCategory, categoryID)
}

// AddTag attaches a tag to a manga.
func (service *Service) AddTag(context stdctx.Context, mangaID, tagID int64) error {
	return service.associate(context, mangaID, service.repository.AddTag, tagID)
}

// RemoveTag detaches a tag from a manga.
func (service *Service) RemoveTag(context stdctx.Context, mangaID, tagID int64) error {
	return service.associate(context, mangaID, service.repository.RemoveTag, tagID)
}

func (service *Service) associate(context stdctx.Context, mangaID int64, apply func(stdctx.Context, int64, int64) (bool, error), refID int64) error {
	found, err := apply(context, mangaID, refID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Manga")
	}

	// Slug keys are not derivable from the id, so the whole slug namespace goes
	service.cache.Invalidate(context, []string{cache.MangaKey(mangaID)}, constants.CacheKeyMangaList, constants.CacheKeyMangaSlug)
	return nil
}

// # Ratings

// RefreshRating recomputes the stored average rating and drops cached copies of the manga.
func (service *Service) RefreshRating(context stdctx.Context, mangaID int64) (float64, error) {
	average, err := service.repository.UpdateAverageRating(context, mangaID)
	if err != nil {
		return 0, err
	}

	service.cache.Invalidate(context, []string{cache.MangaKey(mangaID)}, constants.CacheKeyMangaList, constants.CacheKeyMangaSlug)
	return average, nil
}

// Exists reports whether an active manga exists under id, regardless of publication.
func (service *Service) Exists(context stdctx.Context, id int64) (bool, error) {
	manga, err := service.repository.FindByID(context, id, softdelete.ExcludeDeleted)
	if err != nil {
		return false, err
	}
	return manga != nil, nil
}

// # Internal Helpers

// ShowcaseLimit clamps a requested showcase size to the allowed range.
func ShowcaseLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultShowcaseLimit
	}
	return min(limit, constants.MaxShowcaseLimit)
}

// mustFind turns a (nil, nil) lookup into NOT_FOUND.
func (service *Service) mustFind(manga *Manga, err error) (*Manga, error) {
	if err != nil {
		return nil, err
	}
	if manga == nil {
		return nil, apperr.NotFound("Manga")
	}
	return manga, nil
}

func (service *Service) ensureSlugAvailable(context stdctx.Context, mangaSlug string, excludeID int64) error {
	exists, err := service.repository.SlugExists(context, mangaSlug, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("A manga with this slug already exists")
	}
	return nil
}

// invalidate drops the entity keys of manga (and any extra slugs) plus every cached list.
func (service *Service) invalidate(context stdctx.Context, manga *Manga, extraSlugs ...string) {
	keys := []string{cache.MangaKey(manga.ID), cache.MangaSlugKey(manga.Slug)}
	for _, extra := range extraSlugs {
		keys = append(keys, cache.MangaSlugKey(extra))
	}
	service.cache.Invalidate(context, keys, constants.CacheKeyMangaList)
}

func visible(manga *Manga, includeUnpublished bool) (*Manga, error) {
	if !manga.IsPublished && !includeUnpublished {
		return nil, apperr.NotFound("Manga")
	}
	return manga, nil
}

func validateManga(manga *Manga) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, manga.Title).
		MaxLen(FieldTitle, manga.Title, maxTitleLength).
		Required(FieldSlug, manga.Slug).
		Slug(FieldSlug, manga.Slug).
		OneOf(FieldStatus, string(manga.Status), StatusStrings()...).
		OptionalPositiveID(FieldAuthorID, manga.AuthorID).
		OptionalPositiveID(FieldArtistID, manga.ArtistID)

	if manga.ReleaseYear != nil {
		validator.Range(FieldReleaseYear, *manga.ReleaseYear, minReleaseYear, maxReleaseYear)
	}

	for _, id := range manga.Categories {
		validator.PositiveID(FieldCategories, id)
	}
	for _, id := range manga.Tags {
		validator.PositiveID(FieldTags, id)
	}

	return validator.Err()
}
