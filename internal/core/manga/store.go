// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"

	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// # Manga Data Access

// Repository defines the data access contract for manga and their associations.
//
// Lookups return (nil, nil) when no row matches; callers decide whether that
// is an error.
type Repository interface {

	/*
		FindByID returns the manga with the given id, hydrated with its
		category and tag ids.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - scope: softdelete.Scope

		Returns:
		  - *Manga: nil when missing
		  - error: Storage failures
	*/
	FindByID(context context.Context, id int64, scope softdelete.Scope) (*Manga, error)

	// FindBySlug is [Repository.FindByID] keyed by slug.
	FindBySlug(context context.Context, slug string, scope softdelete.Scope) (*Manga, error)

	/*
		List returns a page of manga matching filter, newest first.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - params: pagination.Params

		Returns:
		  - pagination.Page[*Manga]: Page with accurate totals
		  - error: Storage failures
	*/
	List(context context.Context, filter Filter, params pagination.Params) (pagination.Page[*Manga], error)

	// Featured returns up to limit published, featured manga ordered by last update.
	Featured(context context.Context, limit int) ([]*Manga, error)

	// Popular returns up to limit published manga ordered by views.
	Popular(context context.Context, limit int) ([]*Manga, error)

	// LatestUpdated returns up to limit published manga ordered by last update.
	LatestUpdated(context context.Context, limit int) ([]*Manga, error)

	// ListByCategory returns published manga attached to a category.
	ListByCategory(context context.Context, categoryID int64, params pagination.Params) (pagination.Page[*Manga], error)

	// ListByTag returns published manga attached to a tag.
	ListByTag(context context.Context, tagID int64, params pagination.Params) (pagination.Page[*Manga], error)

	// ListByAuthor returns published manga written by an author.
	ListByAuthor(context context.Context, authorID int64, params pagination.Params) (pagination.Page[*Manga], error)

	/*
		Search returns non-deleted manga whose title or description contains
		term, case-insensitively. onlyPublished drops unpublished rows.

		Parameters:
		  - context: context.Context
		  - term: string
		  - params: pagination.Params
		  - onlyPublished: bool

		Returns:
		  - pagination.Page[*Manga]
		  - error: Storage failures
	*/
	Search(context context.Context, term string, params pagination.Params, onlyPublished bool) (pagination.Page[*Manga], error)

	/*
		Save inserts a new manga (ID 0) or updates an existing one, then
		synchronises category and tag associations in the same transaction.

		Parameters:
		  - context: context.Context
		  - manga: *Manga (ID, timestamps are written back)

		Returns:
		  - error: CONFLICT on duplicate slug, NOT_FOUND when updating a missing row
	*/
	Save(context context.Context, manga *Manga) error

	// Delete soft-deletes an active manga. Reports whether a row changed.
	Delete(context context.Context, id int64) (bool, error)

	// Restore clears the deletion mark. Reports whether a row changed.
	Restore(context context.Context, id int64) (bool, error)

	// ForceDelete removes the row permanently. Reports whether a row changed.
	ForceDelete(context context.Context, id int64) (bool, error)

	// IncrementViews atomically adds one view. Reports whether the manga exists.
	IncrementViews(context context.Context, id int64) (bool, error)

	// UpdateAverageRating recomputes and stores the mean rating score (0 when unrated).
	UpdateAverageRating(context context.Context, id int64) (float64, error)

	// AddCategory attaches a category. Reports false when the manga is missing.
	AddCategory(context context.Context, mangaID, categoryID int64) (bool, error)

	// RemoveCategory detaches a category. Reports false when the manga is missing.
	RemoveCategory(context context.Context, mangaID, categoryID int64) (bool, error)

	// AddTag attaches a tag. Reports false when the manga is missing.
	AddTag(context context.Context, mangaID, tagID int64) (bool, error)

	// RemoveTag detaches a tag. Reports false when the manga is missing.
	RemoveTag(context context.Context, mangaID, tagID int64) (bool, error)

	// SlugExists reports whether another manga (deleted or not) already uses slug.
	SlugExists(context context.Context, slug string, excludeID int64) (bool, error)
}
