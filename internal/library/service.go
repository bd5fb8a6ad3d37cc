// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	stdctx "context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/mangashelf/internal/core/chapter"
	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

const FieldPageNumber = "page_number"

// MangaChecker reports whether a manga can be bookmarked.
type MangaChecker interface {
	Exists(context stdctx.Context, id int64) (bool, error)
}

// ChapterFinder loads the chapter a progress record points at.
type ChapterFinder interface {
	FindByID(context stdctx.Context, id int64, scope softdelete.Scope) (*chapter.Chapter, error)
}

// Service manages a user's bookmarks and reading history.
type Service struct {
	repository Repository
	mangas     MangaChecker
	chapters   ChapterFinder
	logger     *slog.Logger
}

// NewService constructs a new library [Service].
func NewService(repository Repository, mangas MangaChecker, chapters ChapterFinder, logger *slog.Logger) *Service {
	return &Service{repository: repository, mangas: mangas, chapters: chapters, logger: logger}
}

// # Bookmarks

// AddBookmark saves the manga for the user. Adding it twice is not an error.
func (service *Service) AddBookmark(context stdctx.Context, userID, mangaID int64) error {
	found, err := service.mangas.Exists(context, mangaID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Manga")
	}

	created, err := service.repository.AddBookmark(context, userID, mangaID)
	if err != nil {
		return err
	}
	if created {
		service.logger.Info("bookmark_added", slog.Int64("user_id", userID), slog.Int64("manga_id", mangaID))
	}
	return nil
}

// RemoveBookmark drops the bookmark if there is one.
func (service *Service) RemoveBookmark(context stdctx.Context, userID, mangaID int64) error {
	removed, err := service.repository.RemoveBookmark(context, userID, mangaID)
	if err != nil {
		return err
	}
	if removed {
		service.logger.Info("bookmark_removed", slog.Int64("user_id", userID), slog.Int64("manga_id", mangaID))
	}
	return nil
}

func (service *Service) ListBookmarks(context stdctx.Context, userID int64, params pagination.Params) (pagination.Page[*Bookmark], error) {
	return service.repository.ListBookmarks(context, userID, params)
}

// # Reading History

/*
RecordProgress stores the page a user reached in a chapter.

Description: The manga id and chapter number are copied from the chapter so
history can be listed without joins. A page of 0 means the first page.

Returns:
  - *Progress: the stored row
  - error: NOT_FOUND when the chapter is missing or unpublished, VALIDATION_ERROR
    when the page is out of range
*/
func (service *Service) RecordProgress(context stdctx.Context, userID, chapterID int64, pageNumber int) (*Progress, error) {
	if pageNumber == 0 {
		pageNumber = 1
	}

	found, err := service.chapters.FindByID(context, chapterID, softdelete.ExcludeDeleted)
	if err != nil {
		return nil, err
	}
	if found == nil || !found.IsPublished {
		return nil, apperr.NotFound("Chapter")
	}

	pageCount := len(found.Pages)
	err = (&validate.Validator{}).
		Custom(FieldPageNumber, pageNumber < 1, "must be at least 1").
		Custom(FieldPageNumber, pageCount > 0 && pageNumber > pageCount, fmt.Sprintf("must not exceed %d", pageCount)).
		Err()
	if err != nil {
		return nil, err
	}

	progress := &Progress{
		UserID:        userID,
		MangaID:       found.MangaID,
		ChapterID:     found.ID,
		ChapterNumber: found.ChapterNumber,
		PageNumber:    pageNumber,
	}
	if err := service.repository.SaveProgress(context, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (service *Service) History(context stdctx.Context, userID int64, params pagination.Params) (pagination.Page[*Progress], error) {
	return service.repository.History(context, userID, params)
}
