// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangashelf/internal/core/manga"
	requestutil "github.com/taibuivan/mangashelf/internal/platform/request"
	"github.com/taibuivan/mangashelf/internal/platform/respond"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Handler implements the HTTP layer for search.
type Handler struct {
	service *Service
}

// NewHandler constructs a new search [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the search endpoint to the versioned API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/search", handler.Search)
}

/*
GET /api/v1/search.

Request:
  - q: string (title or description contains)
  - status: string
  - year: int
  - author_id, artist_id: int64
  - categories: comma separated ids, all must match
  - tags: comma separated ids, any may match
  - sort_by: title | views | average_rating | created_at | updated_at | release_year
  - sort_direction: asc | desc (sort_dir is accepted as a short alias)
  - page, per_page: int

Response:
  - 200: Page[Manga]
  - 400: Validation errors
*/
func (handler *Handler) Search(writer http.ResponseWriter, request *http.Request) {
	criteria, err := criteriaFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.Search(request.Context(), criteria, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

func sortDirection(query url.Values) string {
	if direction := query.Get("sort_direction"); direction != "" {
		return direction
	}
	return query.Get("sort_dir")
}

func criteriaFromRequest(request *http.Request) (Criteria, error) {
	query := request.URL.Query()

	criteria := Criteria{
		Query:      query.Get("q"),
		AuthorID:   requestutil.QueryInt64(request, "author_id"),
		ArtistID:   requestutil.QueryInt64(request, "artist_id"),
		Categories: requestutil.QueryIDs(request, "categories"),
		Tags:       requestutil.QueryIDs(request, "tags"),
		SortBy:     query.Get("sort_by"),
		SortDir:    strings.ToLower(sortDirection(query)),
	}

	if raw := query.Get("status"); raw != "" {
		status := manga.Status(raw)
		criteria.Status = &status
	}

	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return Criteria{}, validate.FieldErr("year", "Must be an integer")
		}
		criteria.ReleaseYear = &year
	}

	return criteria, nil
}
