// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"

	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// # Chapter & Page Data Access

// Repository defines the data access contract for chapters and pages.
//
// Single-row lookups return (nil, nil) when nothing matches.
type Repository interface {

	/*
		FindByID returns the chapter with its pages in order.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - scope: softdelete.Scope

		Returns:
		  - *Chapter: nil when missing
		  - error: Storage failures
	*/
	FindByID(context context.Context, id int64, scope softdelete.Scope) (*Chapter, error)

	// FindBySlug is [Repository.FindByID] keyed by the chapter slug.
	FindBySlug(context context.Context, slug string, scope softdelete.Scope) (*Chapter, error)

	/*
		ListByManga returns a page of a manga's chapters ordered by chapter number.

		Parameters:
		  - context: context.Context
		  - mangaID: int64
		  - params: pagination.Params
		  - onlyPublished: bool

		Returns:
		  - pagination.Page[*Chapter]: Chapters without pages
		  - error: Storage failures
	*/
	ListByManga(context context.Context, mangaID int64, params pagination.Params, onlyPublished bool) (pagination.Page[*Chapter], error)

	// Latest returns up to limit chapters by release date, undated ones last.
	Latest(context context.Context, limit int, onlyPublished bool) ([]*Chapter, error)

	// FindByMangaAndNumber is an exact lookup with no publication or deletion filter.
	FindByMangaAndNumber(context context.Context, mangaID int64, number float64) (*Chapter, error)

	// Next returns the published chapter with the smallest number above number.
	Next(context context.Context, mangaID int64, number float64) (*Chapter, error)

	// Previous returns the published chapter with the largest number below number.
	Previous(context context.Context, mangaID int64, number float64) (*Chapter, error)

	/*
		Save inserts (ID 0) or updates a chapter and replaces its pages in one transaction.

		Returns:
		  - error: CONFLICT on a duplicate (manga, number) or slug, NOT_FOUND on update of a missing id
	*/
	Save(context context.Context, chapter *Chapter) error

	// Delete soft-deletes an active chapter.
	Delete(context context.Context, id int64) (bool, error)

	// Restore clears the deletion mark.
	Restore(context context.Context, id int64) (bool, error)

	// ForceDelete removes the chapter and its pages.
	ForceDelete(context context.Context, id int64) (bool, error)

	// IncrementViews atomically adds one view.
	IncrementViews(context context.Context, id int64) (bool, error)
}
