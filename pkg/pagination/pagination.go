// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters
// and how a page of results is delivered: a flat envelope carrying the data
// alongside total, per_page, current_page and last_page.
package pagination

import (
	"net/http"

	"github.com/taibuivan/mangashelf/pkg/query"
)

const (
	// DefaultPerPage is the number of items per page if not specified.
	DefaultPerPage = 15
	// MaxPerPage is the upper bound for items per page to prevent system abuse.
	MaxPerPage = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds a 1-based page number and a page size.
type Params struct {
	Page    int
	PerPage int
}

// New builds normalized [Params]: pages below 1 become 1, a page size below 1
// falls back to [DefaultPerPage] and one above [MaxPerPage] is clamped to it.
func New(page, perPage int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return Params{Page: page, PerPage: min(perPage, MaxPerPage)}
}

// Offset returns the SQL OFFSET value derived from [Page] and [PerPage].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Limit returns the SQL LIMIT value.
func (p Params) Limit() int {
	return p.PerPage
}

// Page is one page of an ordered result set.
//
// Requesting a page past LastPage is not an error: Data is empty while Total
// and LastPage still describe the full result set.
type Page[T any] struct {
	Data        []T `json:"data"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// NewPage assembles a [Page] from the fetched rows and the full match count.
func NewPage[T any](data []T, total int, params Params) Page[T] {
	if data == nil {
		data = make([]T, 0)
	}

	return Page[T]{
		Data:        data,
		Total:       total,
		PerPage:     params.PerPage,
		CurrentPage: params.Page,
		LastPage:    LastPage(total, params.PerPage),
	}
}

// Map converts the items of a page while keeping its counters.
func Map[T, R any](page Page[T], convert func(T) R) Page[R] {
	items := make([]R, 0, len(page.Data))
	for _, item := range page.Data {
		items = append(items, convert(item))
	}

	return Page[R]{
		Data:        items,
		Total:       page.Total,
		PerPage:     page.PerPage,
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
	}
}

// LastPage is ceil(total/perPage), never less than 1.
func LastPage(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// FromRequest parses "page" and "per_page" query parameters from an HTTP request.
//
// Invalid, negative, or excessive values are clamped through [New].
func FromRequest(r *http.Request) Params {
	page := parseIntParam(r, "page", DefaultPage)
	perPage := parseIntParam(r, "per_page", DefaultPerPage)

	return New(page, perPage)
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	return query.Int(r.URL.Query().Get(key), defaultVal)
}
