// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangashelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangashelf/internal/platform/request"
	"github.com/taibuivan/mangashelf/internal/platform/respond"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
)

// Handler implements the HTTP layer for reference terms.
type Handler struct {
	service *Service
}

// NewHandler constructs a new taxonomy [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /categories, /tags, /authors and /artists, each with
// a public list, a public lookup by slug and a staff-only create.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	for path, kind := range map[string]Kind{
		"/categories": KindCategory,
		"/tags":       KindTag,
		"/authors":    KindAuthor,
		"/artists":    KindArtist,
	} {
		api.Route(path, func(router chi.Router) {
			router.Get("/", handler.list(kind))
			router.Get("/{slug}", handler.show(kind))
			router.With(middleware.RequireCapability(sec.CanCreateCatalog)).Post("/", handler.create(kind))
		})
	}
}

func (handler *Handler) list(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		terms, err := handler.service.List(request.Context(), kind)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, terms)
	}
}

func (handler *Handler) show(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		term, err := handler.service.GetBySlug(request.Context(), kind, requestutil.Param(request, "slug"))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, term)
	}
}

// createInput is the body of POST /{kind}.
type createInput struct {
	Name string `json:"name"`
}

func (handler *Handler) create(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var input createInput
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}

		term, err := handler.service.Create(request.Context(), kind, input.Name)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Created(writer, term)
	}
}
