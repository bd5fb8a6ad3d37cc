// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter manages the ordered chapters of a manga and their page images.

Chapters are sequenced by their (possibly fractional) chapter number, which is
unique within a manga. Reader navigation (next/previous) only walks published,
non-deleted chapters.
*/
package chapter

import (
	"slices"
	"time"

	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
)

// Page is one image of a chapter. Numbers start at 1.
type Page struct {
	Number   int    `json:"number"`
	ImageURL string `json:"image_url"`
}

// Chapter is a single installment of a manga.
type Chapter struct {
	ID            int64      `json:"id"`
	MangaID       int64      `json:"manga_id"`
	ChapterNumber float64    `json:"chapter_number"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	Views         int64      `json:"views"`
	IsPublished   bool       `json:"is_published"`
	Pages         []Page     `json:"pages,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// IsNew reports whether the chapter has never been persisted.
func (c *Chapter) IsNew() bool { return c.ID == 0 }

// State returns the soft-delete lifecycle stage.
func (c *Chapter) State() softdelete.State { return softdelete.StateOf(c.DeletedAt) }

func (c *Chapter) touch() { c.UpdatedAt = time.Now().UTC() }

// Publish makes the chapter readable.
func (c *Chapter) Publish() {
	c.IsPublished = true
	c.touch()
}

// Unpublish hides the chapter from readers and navigation.
func (c *Chapter) Unpublish() {
	c.IsPublished = false
	c.touch()
}

// SetPages replaces the page list, sorted by page number.
func (c *Chapter) SetPages(pages []Page) {
	c.Pages = slices.Clone(pages)
	slices.SortStableFunc(c.Pages, func(a, b Page) int { return a.Number - b.Number })
	c.touch()
}

// Changes is a partial chapter update. Only non-nil fields are applied.
type Changes struct {
	ChapterNumber *float64   `json:"chapter_number"`
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	ReleaseDate   *time.Time `json:"release_date"`
	IsPublished   *bool      `json:"is_published"`
	Pages         *[]Page    `json:"pages"`
}

// Apply merges the set fields of changes and refreshes UpdatedAt.
func (c *Chapter) Apply(changes Changes) {
	if changes.ChapterNumber != nil {
		c.ChapterNumber = *changes.ChapterNumber
	}
	if changes.Title != nil {
		c.Title = *changes.Title
	}
	if changes.Description != nil {
		c.Description = *changes.Description
	}
	if changes.ReleaseDate != nil {
		c.ReleaseDate = changes.ReleaseDate
	}
	if changes.IsPublished != nil {
		c.IsPublished = *changes.IsPublished
	}
	if changes.Pages != nil {
		c.SetPages(*changes.Pages)
	}
	c.touch()
}
