// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/mangashelf/internal/core/manga"
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
	FieldMangaID       = "manga_id"
	FieldChapterNumber = "chapter_number"
	FieldTitle         = "title"
	FieldSlug          = "slug"
	FieldPages         = "pages"

	maxTitleLength = 255
	maxSlugLength  = 255
)

// MangaFinder is the slice of [manga.Repository] the chapter actions need.
type MangaFinder interface {
	FindByID(context stdctx.Context, id int64, scope softdelete.Scope) (*manga.Manga, error)
}

// # Service Layer

// Service orchestrates chapter reads, navigation and the create/update/delete actions.
type Service struct {
	repository Repository
	mangas     MangaFinder
	cache      *cache.Cache
	events     events.Sink
	logger     *slog.Logger
}

// NewService constructs a new chapter [Service].
func NewService(repository Repository, mangas MangaFinder, readCache *cache.Cache, sink events.Sink, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		mangas:     mangas,
		cache:      readCache,
		events:     sink,
		logger:     logger,
	}
}

// # Reads

/*
Get returns a chapter by id with its pages.

Parameters:
  - context: context.Context
  - id: int64
  - includeUnpublished: bool

Returns:
  - *Chapter
  - error: NOT_FOUND when missing, deleted or hidden from the caller
*/
func (service *Service) Get(context stdctx.Context, id int64, includeUnpublished bool) (*Chapter, error) {
	chapter, err := cache.Remember(context, service.cache, cache.ChapterKey(id), service.cache.TTL(), func(context stdctx.Context) (*Chapter, error) {
		return mustFind(service.repository.FindByID(context, id, softdelete.ExcludeDeleted))
	})
	if err != nil {
		return nil, err
	}
	return visible(chapter, includeUnpublished)
}

// GetBySlug returns a chapter by its slug under the same visibility rules as [Service.Get].
func (service *Service) GetBySlug(context stdctx.Context, chapterSlug string, includeUnpublished bool) (*Chapter, error) {
	chapter, err := mustFind(service.repository.FindBySlug(context, chapterSlug, softdelete.ExcludeDeleted))
	if err != nil {
		return nil, err
	}
	return visible(chapter, includeUnpublished)
}

// ListByManga returns a manga's chapters in reading order. Without
// includeUnpublished both the manga and its chapters must be published.
func (service *Service) ListByManga(context stdctx.Context, mangaID int64, params pagination.Params, includeUnpublished bool) (pagination.Page[*Chapter], error) {
	if err := service.requireReadableManga(context, mangaID, includeUnpublished); err != nil {
		return pagination.Page[*Chapter]{}, err
	}
	return service.repository.ListByManga(context, mangaID, params, !includeUnpublished)
}

// Latest returns the most recently released chapters.
func (service *Service) Latest(context stdctx.Context, limit int, includeUnpublished bool) ([]*Chapter, error) {
	return service.repository.Latest(context, manga.ShowcaseLimit(limit), !includeUnpublished)
}

// Next returns the following published chapter, or nil after the last one.
// An unpublished manga is NOT_FOUND unless includeUnpublished is set.
func (service *Service) Next(context stdctx.Context, mangaID int64, number float64, includeUnpublished bool) (*Chapter, error) {
	if err := service.requireReadableManga(context, mangaID, includeUnpublished); err != nil {
		return nil, err
	}
	return service.repository.Next(context, mangaID, number)
}

// Previous returns the preceding published chapter, or nil before the first one.
func (service *Service) Previous(context stdctx.Context, mangaID int64, number float64, includeUnpublished bool) (*Chapter, error) {
	if err := service.requireReadableManga(context, mangaID, includeUnpublished); err != nil {
		return nil, err
	}
	return service.repository.Previous(context, mangaID, number)
}

// RecordView reads a readable chapter and counts one view on it.
func (service *Service) RecordView(context stdctx.Context, id int64) (*Chapter, error) {
	chapter, err := service.Get(context, id, false)
	if err != nil {
		return nil, err
	}

	found, err := service.repository.IncrementViews(context, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperr.NotFound("Chapter")
	}

	chapter.Views++
	return chapter, nil
}

// # Actions

// CreateInput carries the fields accepted when creating a chapter.
type CreateInput struct {
	MangaID       int64      `json:"manga_id"`
	ChapterNumber float64    `json:"chapter_number"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	ReleaseDate   *time.Time `json:"release_date"`
	IsPublished   *bool      `json:"is_published"`
	Pages         []Page     `json:"pages"`
}

/*
Create adds a chapter to an existing manga.

Description: The parent manga must exist (REFERENCE_NOT_FOUND otherwise).
A supplied slug is kept as-is; otherwise it is derived from the manga slug,
the number and the title. The release date defaults to now. A number already
used in the manga, or a slug already taken, fails with CONFLICT before the
insert; the unique constraints remain the final guard.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Chapter: The saved chapter
  - error: VALIDATION_ERROR, REFERENCE_NOT_FOUND, CONFLICT or storage errors
*/
func (service *Service) Create(context stdctx.Context, input CreateInput) (*Chapter, error) {

	// 1. Shape validation
	chapter := &Chapter{
		MangaID:       input.MangaID,
		ChapterNumber: input.ChapterNumber,
		Title:         input.Title,
		Slug:          input.Slug,
		Description:   input.Description,
		ReleaseDate:   input.ReleaseDate,
		IsPublished:   pointer.Fallback(input.IsPublished, true),
	}
	chapter.SetPages(input.Pages)

	if err := validateChapter(chapter); err != nil {
		return nil, err
	}
	if chapter.Slug != "" {
		if err := (&validate.Validator{}).SlugPath(FieldSlug, chapter.Slug).MaxLen(FieldSlug, chapter.Slug, maxSlugLength).Err(); err != nil {
			return nil, err
		}
	}

	// 2. Referential integrity
	parent, err := service.findManga(context, chapter.MangaID, func() error {
		return apperr.ReferenceMissing("Manga", chapter.MangaID)
	})
	if err != nil {
		return nil, err
	}

	// 3. Derived fields
	if chapter.Slug == "" {
		chapter.Slug = slug.Chapter(parent.Slug, chapter.ChapterNumber, chapter.Title)
	} else if err := service.ensureSlugAvailable(context, chapter.Slug); err != nil {
		return nil, err
	}
	if chapter.ReleaseDate == nil {
		now := time.Now().UTC()
		chapter.ReleaseDate = &now
	}

	// 4. Duplicate number pre-check
	if err := service.ensureNumberAvailable(context, chapter.MangaID, chapter.ChapterNumber, 0); err != nil {
		return nil, err
	}

	// 5. Persistence
	if err := service.repository.Save(context, chapter); err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, []string{cache.ChapterKey(chapter.ID)})
	service.events.Emit(context, events.New(events.ChapterCreated, chapter.ID, chapter))

	service.logger.Info("chapter_created",
		slog.Int64("chapter_id", chapter.ID),
		slog.Int64("manga_id", chapter.MangaID),
		slog.Float64("number", chapter.ChapterNumber),
	)

	return chapter, nil
}

/*
Update resolves a chapter by slug and applies changes.

Description: A changed number or title regenerates the slug; a changed
number is checked against the manga's other chapters first.

Returns:
  - *Chapter
  - error: NOT_FOUND before any change, VALIDATION_ERROR, CONFLICT
*/
func (service *Service) Update(context stdctx.Context, chapterSlug string, changes Changes) (*Chapter, error) {
	chapter, err := mustFind(service.repository.FindBySlug(context, chapterSlug, softdelete.ExcludeDeleted))
	if err != nil {
		return nil, err
	}
	return service.update(context, chapter, changes)
}

// UpdateByID is [Service.Update] for callers that address chapters by id.
func (service *Service) UpdateByID(context stdctx.Context, id int64, changes Changes) (*Chapter, error) {
	chapter, err := mustFind(service.repository.FindByID(context, id, softdelete.ExcludeDeleted))
	if err != nil {
		return nil, err
	}
	return service.update(context, chapter, changes)
}

func (service *Service) update(context stdctx.Context, chapter *Chapter, changes Changes) (*Chapter, error) {
	previousNumber, previousTitle := chapter.ChapterNumber, chapter.Title
	chapter.Apply(changes)

	if err := validateChapter(chapter); err != nil {
		return nil, err
	}

	if chapter.ChapterNumber != previousNumber {
		if err := service.ensureNumberAvailable(context, chapter.MangaID, chapter.ChapterNumber, chapter.ID); err != nil {
			return nil, err
		}
	}

	if chapter.ChapterNumber != previousNumber || chapter.Title != previousTitle {
		parent, err := service.findManga(context, chapter.MangaID, func() error {
			return apperr.ReferenceMissing("Manga", chapter.MangaID)
		})
		if err != nil {
			return nil, err
		}
		chapter.Slug = slug.Chapter(parent.Slug, chapter.ChapterNumber, chapter.Title)
	}

	if err := service.repository.Save(context, chapter); err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, []string{cache.ChapterKey(chapter.ID)})
	service.events.Emit(context, events.New(events.ChapterUpdated, chapter.ID, chapter))

	service.logger.Info("chapter_updated",
		slog.Int64("chapter_id", chapter.ID),
		slog.String("slug", chapter.Slug),
	)

	return chapter, nil
}

// Delete soft-deletes a chapter.
func (service *Service) Delete(context stdctx.Context, id int64) (bool, error) {
	return service.lifecycle(context, id, "soft", events.ChapterDeleted, service.repository.Delete)
}

// Restore brings back a soft-deleted chapter.
func (service *Service) Restore(context stdctx.Context, id int64) (bool, error) {
	return service.lifecycle(context, id, "restore", events.ChapterUpdated, service.repository.Restore)
}

// ForceDelete permanently removes a chapter and its pages.
func (service *Service) ForceDelete(context stdctx.Context, id int64) (bool, error) {
	return service.lifecycle(context, id, "force", events.ChapterDeleted, service.repository.ForceDelete)
}

func (service *Service) lifecycle(context stdctx.Context, id int64, mode string, eventType events.Type, apply func(stdctx.Context, int64) (bool, error)) (bool, error) {
	changed, err := apply(context, id)
	if err != nil || !changed {
		return changed, err
	}

	service.cache.Invalidate(context, []string{cache.ChapterKey(id)}, constants.CacheKeyMangaList)
	service.events.Emit(context, events.New(eventType, id, map[string]string{"mode": mode}))

	service.logger.Info("chapter_lifecycle_changed",
		slog.Int64("chapter_id", id),
		slog.String("mode", mode),
	)

	return true, nil
}

// # Internal Helpers

func (service *Service) findManga(context stdctx.Context, mangaID int64, missing func() error) (*manga.Manga, error) {
	parent, err := service.mangas.FindByID(context, mangaID, softdelete.ExcludeDeleted)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, missing()
	}
	return parent, nil
}

// requireReadableManga hides missing manga, and unpublished ones from non-staff, as NOT_FOUND.
func (service *Service) requireReadableManga(context stdctx.Context, mangaID int64, includeUnpublished bool) error {
	parent, err := service.findManga(context, mangaID, func() error { return apperr.NotFound("Manga") })
	if err != nil {
		return err
	}
	if !parent.IsPublished && !includeUnpublished {
		return apperr.NotFound("Manga")
	}
	return nil
}

func (service *Service) ensureNumberAvailable(context stdctx.Context, mangaID int64, number float64, excludeID int64) error {
	existing, err := service.repository.FindByMangaAndNumber(context, mangaID, number)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return apperr.Conflict(fmt.Sprintf("Chapter %s already exists for this manga", slug.FormatNumber(number)))
	}
	return nil
}

func (service *Service) ensureSlugAvailable(context stdctx.Context, chapterSlug string) error {
	existing, err := service.repository.FindBySlug(context, chapterSlug, softdelete.IncludeDeleted)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict("A chapter with this slug already exists")
	}
	return nil
}

func mustFind(chapter *Chapter, err error) (*Chapter, error) {
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, apperr.NotFound("Chapter")
	}
	return chapter, nil
}

func visible(chapter *Chapter, includeUnpublished bool) (*Chapter, error) {
	if !chapter.IsPublished && !includeUnpublished {
		return nil, apperr.NotFound("Chapter")
	}
	return chapter, nil
}

func validateChapter(chapter *Chapter) error {
	validator := &validate.Validator{}
	validator.PositiveID(FieldMangaID, chapter.MangaID).
		NonNegative(FieldChapterNumber, chapter.ChapterNumber).
		MaxLen(FieldTitle, chapter.Title, maxTitleLength)

	for index, page := range chapter.Pages {
		validator.Custom(FieldPages, page.Number != index+1, "Page numbers must run 1..n without gaps")
		validator.Required(FieldPages, page.ImageURL)
	}

	return validator.Err()
}
