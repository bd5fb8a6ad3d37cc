// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package taxonomy manages the named reference data that manga point at:
categories and tags (many-to-many) and authors and artists (one per manga).

All four share one shape, id + name + unique slug, and one table layout,
so a single repository serves them, parameterised by [Kind].
*/
package taxonomy

import (
	"time"

	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
)

// Kind selects a reference table.
type Kind string

const (
	KindCategory Kind = "category"
	KindTag      Kind = "tag"
	KindAuthor   Kind = "author"
	KindArtist   Kind = "artist"
)

// Label is the resource name used in error messages.
func (k Kind) Label() string {
	switch k {
	case KindCategory:
		return "Category"
	case KindTag:
		return "Tag"
	case KindAuthor:
		return "Author"
	case KindArtist:
		return "Artist"
	default:
		return "Term"
	}
}

func (k Kind) table() (schema.CatalogReferenceTable, bool) {
	switch k {
	case KindCategory:
		return schema.CatalogCategory, true
	case KindTag:
		return schema.CatalogTag, true
	case KindAuthor:
		return schema.CatalogAuthor, true
	case KindArtist:
		return schema.CatalogArtist, true
	default:
		return schema.CatalogReferenceTable{}, false
	}
}

// Term is one category, tag, author or artist.
type Term struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
