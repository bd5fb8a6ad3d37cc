// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package manga defines the central catalogue aggregate and everything needed to
read, list and mutate it.

Core Responsibility:

  - Catalogue: status lifecycle (ongoing, completed, hiatus) and publication flags.
  - Discovery: category and tag associations, featured/popular/latest showcases.
  - Metrics: view counter and the derived average rating.

Soft-deleted manga are hidden from every default read and stay restorable
until they are force-deleted.
*/
package manga

import (
	"slices"
	"time"

	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
)

// # Domain Enums

// Status represents the publication status of a manga.
type Status string

const (
	// StatusOngoing indicates the series is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the series is paused.
	StatusHiatus Status = "hiatus"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus:
		return true
	}
	return false
}

// StatusStrings lists the accepted status values for validation messages.
func StatusStrings() []string {
	return []string{string(StatusOngoing), string(StatusCompleted), string(StatusHiatus)}
}

// # Core Entity

// Manga is a single series in the catalogue.
//
// ID 0 means the manga has not been saved yet. AverageRating is derived from
// ratings and never written by callers.
type Manga struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Status        Status     `json:"status"`
	CoverImage    string     `json:"cover_image"`
	Thumbnail     string     `json:"thumbnail"`
	AuthorID      *int64     `json:"author_id,omitempty"`
	ArtistID      *int64     `json:"artist_id,omitempty"`
	ReleaseYear   *int       `json:"release_year,omitempty"`
	IsFeatured    bool       `json:"is_featured"`
	IsPublished   bool       `json:"is_published"`
	Views         int64      `json:"views"`
	AverageRating float64    `json:"average_rating"`
	Categories    []int64    `json:"categories"`
	Tags          []int64    `json:"tags"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// IsNew reports whether the manga has never been persisted.
func (m *Manga) IsNew() bool { return m.ID == 0 }

// State returns the soft-delete lifecycle stage.
func (m *Manga) State() softdelete.State { return softdelete.StateOf(m.DeletedAt) }

// touch refreshes UpdatedAt; every mutation method calls it.
func (m *Manga) touch() { m.UpdatedAt = time.Now().UTC() }

// # Mutations

// Rename changes the display title. The slug is not regenerated.
func (m *Manga) Rename(title string) {
	m.Title = title
	m.touch()
}

// SetStatus changes the publication status.
func (m *Manga) SetStatus(status Status) {
	m.Status = status
	m.touch()
}

// Publish makes the manga visible to readers.
func (m *Manga) Publish() {
	m.IsPublished = true
	m.touch()
}

// Unpublish hides the manga from reader-facing lists.
func (m *Manga) Unpublish() {
	m.IsPublished = false
	m.touch()
}

// Feature toggles the featured showcase flag.
func (m *Manga) Feature(featured bool) {
	m.IsFeatured = featured
	m.touch()
}

// AttachCategory adds a category id if it is not already attached.
func (m *Manga) AttachCategory(id int64) {
	if !slices.Contains(m.Categories, id) {
		m.Categories = append(m.Categories, id)
	}
	m.touch()
}

// DetachCategory removes a category id.
func (m *Manga) DetachCategory(id int64) {
	m.Categories = slices.DeleteFunc(m.Categories, func(existing int64) bool { return existing == id })
	m.touch()
}

// AttachTag adds a tag id if it is not already attached.
func (m *Manga) AttachTag(id int64) {
	if !slices.Contains(m.Tags, id) {
		m.Tags = append(m.Tags, id)
	}
	m.touch()
}

// DetachTag removes a tag id.
func (m *Manga) DetachTag(id int64) {
	m.Tags = slices.DeleteFunc(m.Tags, func(existing int64) bool { return existing == id })
	m.touch()
}

// # Filters

// Filter narrows [Repository.List]. Nil fields are ignored; set fields are ANDed.
type Filter struct {
	Status      *Status          `json:"status,omitempty"`
	IsPublished *bool            `json:"is_published,omitempty"`
	AuthorID    *int64           `json:"author_id,omitempty"`
	ArtistID    *int64           `json:"artist_id,omitempty"`
	Scope       softdelete.Scope `json:"scope"`
}

// # Change Sets

// Changes is a partial update. Only non-nil fields are applied.
type Changes struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Description *string  `json:"description"`
	Status      *Status  `json:"status"`
	CoverImage  *string  `json:"cover_image"`
	Thumbnail   *string  `json:"thumbnail"`
	AuthorID    *int64   `json:"author_id"`
	ArtistID    *int64   `json:"artist_id"`
	ReleaseYear *int     `json:"release_year"`
	IsFeatured  *bool    `json:"is_featured"`
	IsPublished *bool    `json:"is_published"`
	Categories  *[]int64 `json:"categories"`
	Tags        *[]int64 `json:"tags"`
}

// Apply merges the set fields of changes into m and refreshes UpdatedAt.
func (m *Manga) Apply(changes Changes) {
	if changes.Title != nil {
		m.Title = *changes.Title
	}
	if changes.Slug != nil {
		m.Slug = *changes.Slug
	}
	if changes.Description != nil {
		m.Description = *changes.Description
	}
	if changes.Status != nil {
		m.Status = *changes.Status
	}
	if changes.CoverImage != nil {
		m.CoverImage = *changes.CoverImage
	}
	if changes.Thumbnail != nil {
		m.Thumbnail = *changes.Thumbnail
	}
	if changes.AuthorID != nil {
		m.AuthorID = changes.AuthorID
	}
	if changes.ArtistID != nil {
		m.ArtistID = changes.ArtistID
	}
	if changes.ReleaseYear != nil {
		m.ReleaseYear = changes.ReleaseYear
	}
	if changes.IsFeatured != nil {
		m.IsFeatured = *changes.IsFeatured
	}
	if changes.IsPublished != nil {
		m.IsPublished = *changes.IsPublished
	}
	if changes.Categories != nil {
		m.Categories = slices.Clone(*changes.Categories)
	}
	if changes.Tags != nil {
		m.Tags = slices.Clone(*changes.Tags)
	}
	m.touch()
}
