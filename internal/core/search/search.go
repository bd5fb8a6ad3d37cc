// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package search implements the faceted manga search: free text, scalar
// filters, categories that must ALL match and tags of which ANY may match.
package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/taibuivan/mangashelf/internal/core/manga"
	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// sortColumns is the allow-list of sortable fields.
var sortColumns = map[string]string{
	"title":          schema.CatalogManga.Title,
	"views":          schema.CatalogManga.Views,
	"average_rating": schema.CatalogManga.AverageRating,
	"created_at":     schema.CatalogManga.CreatedAt,
	"updated_at":     schema.CatalogManga.UpdatedAt,
	"release_year":   schema.CatalogManga.ReleaseYear,
}

// SortFields lists the accepted sort_by values.
func SortFields() []string {
	fields := make([]string, 0, len(sortColumns))
	for field := range sortColumns {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}

// Criteria is a search request. Zero values disable a filter.
type Criteria struct {
	Query       string        `json:"q,omitempty"`
	Status      *manga.Status `json:"status,omitempty"`
	ReleaseYear *int          `json:"year,omitempty"`
	AuthorID    *int64        `json:"author_id,omitempty"`
	ArtistID    *int64        `json:"artist_id,omitempty"`

	// Categories must all be attached to a result.
	Categories []int64 `json:"categories,omitempty"`

	// Tags match when at least one is attached.
	Tags []int64 `json:"tags,omitempty"`

	SortBy  string `json:"sort_by,omitempty"`
	SortDir string `json:"sort_dir,omitempty"`
}

// statement is the rendered SQL for one search page.
type statement struct {
	countSQL  string
	countArgs []any
	pageSQL   string
	pageArgs  []any
}

/*
buildQuery renders the id-page and count queries for criteria.

Description: Only published, non-deleted manga take part. Categories are
joined and grouped so that every requested category must be present; tags
use a single EXISTS so any one of them is enough. An unknown sort field falls
back to updated_at descending.

Parameters:
  - criteria: Criteria
  - params: pagination.Params

Returns:
  - statement
*/
func buildQuery(criteria Criteria, params pagination.Params) statement {
	table := schema.CatalogManga
	categories := schema.CatalogMangaCategory
	tags := schema.CatalogMangaTag

	var from, where strings.Builder
	var args []any
	argID := 1

	fmt.Fprintf(&from, "FROM %s m", table.Table)
	fmt.Fprintf(&where, " WHERE m.%s = TRUE AND m.%s IS NULL", table.IsPublished, table.DeletedAt)

	categoryIDs := unique(criteria.Categories)
	if len(categoryIDs) > 0 {
		fmt.Fprintf(&from, " JOIN %s mc ON mc.%s = m.%s AND mc.%s = ANY($%d)",
			categories.Table, categories.MangaID, table.ID, categories.CategoryID, argID)
		args = append(args, categoryIDs)
		argID++
	}

	if term := strings.TrimSpace(criteria.Query); term != "" {
		fmt.Fprintf(&where, " AND (m.%s ILIKE $%d OR m.%s ILIKE $%d)", table.Title, argID, table.Description, argID)
		args = append(args, manga.ContainsPattern(term))
		argID++
	}

	if criteria.Status != nil {
		fmt.Fprintf(&where, " AND m.%s = $%d", table.Status, argID)
		args = append(args, string(*criteria.Status))
		argID++
	}

	if criteria.ReleaseYear != nil {
		fmt.Fprintf(&where, " AND m.%s = $%d", table.ReleaseYear, argID)
		args = append(args, *criteria.ReleaseYear)
		argID++
	}

	if criteria.AuthorID != nil {
		fmt.Fprintf(&where, " AND m.%s = $%d", table.AuthorID, argID)
		args = append(args, *criteria.AuthorID)
		argID++
	}

	if criteria.ArtistID != nil {
		fmt.Fprintf(&where, " AND m.%s = $%d", table.ArtistID, argID)
		args = append(args, *criteria.ArtistID)
		argID++
	}

	if tagIDs := unique(criteria.Tags); len(tagIDs) > 0 {
		fmt.Fprintf(&where, " AND EXISTS (SELECT 1 FROM %s mt WHERE mt.%s = m.%s AND mt.%s = ANY($%d))",
			tags.Table, tags.MangaID, table.ID, tags.TagID, argID)
		args = append(args, tagIDs)
		argID++
	}

	matched := "SELECT m." + table.ID + " " + from.String() + where.String()
	if len(categoryIDs) > 0 {
		matched += fmt.Sprintf(" GROUP BY m.%s HAVING COUNT(DISTINCT mc.%s) = $%d", table.ID, categories.CategoryID, argID)
		args = append(args, len(categoryIDs))
		argID++
	}

	column, direction := sortOrder(criteria)

	return statement{
		countSQL:  "SELECT COUNT(*) FROM (" + matched + ") AS matched",
		countArgs: args,
		pageSQL: fmt.Sprintf("%s ORDER BY m.%s %s, m.%s %s LIMIT $%d OFFSET $%d",
			matched, column, direction, table.ID, direction, argID, argID+1),
		pageArgs: append(slices.Clone(args), params.Limit(), params.Offset()),
	}
}

// sortOrder resolves the ORDER BY column and direction.
func sortOrder(criteria Criteria) (string, string) {
	column, ok := sortColumns[criteria.SortBy]
	if !ok {
		return schema.CatalogManga.UpdatedAt, "DESC"
	}
	if strings.EqualFold(criteria.SortDir, SortAsc) {
		return column, "ASC"
	}
	return column, "DESC"
}

// unique drops duplicate ids, keeping the first occurrence.
func unique(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
