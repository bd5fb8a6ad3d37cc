// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/ctxutil"
	"github.com/taibuivan/mangashelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangashelf/internal/platform/request"
	"github.com/taibuivan/mangashelf/internal/platform/respond"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/pagination"
	"github.com/taibuivan/mangashelf/pkg/pointer"
)

var errNothingChanged = apperr.NotFound("Chapter")

// # Handler Implementation

// Handler implements the HTTP layer for chapters.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches chapter endpoints to the versioned API router.
//
// Chapter lists and navigation hang off their manga; single chapters are
// addressed under /chapters by slug for reads and by id for writes.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/mangas/{mangaID}/chapters", handler.ListByManga)
	api.With(middleware.RequireCapability(sec.CanCreateCatalog)).Post("/mangas/{mangaID}/chapters", handler.Create)
	api.Get("/mangas/{mangaID}/chapters/{number}/next", handler.Next)
	api.Get("/mangas/{mangaID}/chapters/{number}/previous", handler.Previous)

	api.Route("/chapters", func(router chi.Router) {
		router.Get("/latest", handler.Latest)
		router.Post("/{id}/views", handler.RecordView)
		router.With(middleware.RequireCapability(sec.CanUpdateCatalog)).Put("/{id}", handler.Update)
		router.With(middleware.RequireCapability(sec.CanDeleteCatalog)).Delete("/{id}", handler.Delete)
		router.With(middleware.RequireCapability(sec.CanRestoreCatalog)).Post("/{id}/restore", handler.Restore)
		router.Get("/*", handler.Show)
	})
}

// # Chapter Retrieval

/*
GET /api/v1/mangas/{mangaID}/chapters.

Response:
  - 200: Page[Chapter] ordered by chapter number
  - 404: Unknown manga
*/
func (handler *Handler) ListByManga(writer http.ResponseWriter, request *http.Request) {
	mangaID, err := requestutil.ID(request, "mangaID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.ListByManga(request.Context(), mangaID, pagination.FromRequest(request), staff(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

// Latest handles GET /api/v1/chapters/latest?limit=n.
func (handler *Handler) Latest(writer http.ResponseWriter, request *http.Request) {
	limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

	chapters, err := handler.service.Latest(request.Context(), limit, staff(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapters)
}

/*
GET /api/v1/chapters/{mangaSlug}/chapter-{n}.

Description: The chapter slug contains a slash, so the whole remainder of
the path is the key.
*/
func (handler *Handler) Show(writer http.ResponseWriter, request *http.Request) {
	chapterSlug := strings.Trim(chi.URLParam(request, "*"), "/")

	chapter, err := handler.service.GetBySlug(request.Context(), chapterSlug, staff(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// Next handles GET /api/v1/mangas/{mangaID}/chapters/{number}/next.
// The data is null after the last published chapter.
func (handler *Handler) Next(writer http.ResponseWriter, request *http.Request) {
	handler.navigate(writer, request, handler.service.Next)
}

// Previous handles GET /api/v1/mangas/{mangaID}/chapters/{number}/previous.
func (handler *Handler) Previous(writer http.ResponseWriter, request *http.Request) {
	handler.navigate(writer, request, handler.service.Previous)
}

// RecordView handles POST /api/v1/chapters/{id}/views and returns the chapter.
func (handler *Handler) RecordView(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.RecordView(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// # Chapter Management

/*
POST /api/v1/mangas/{mangaID}/chapters.

Request:
  - body: CreateInput (manga_id is taken from the path)

Response:
  - 201: Chapter
  - 400: Validation errors
  - 409: Chapter number already used in this manga
  - 422: Manga does not exist
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	mangaID, err := requestutil.ID(request, "mangaID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	input.MangaID = mangaID

	chapter, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, chapter)
}

// Update handles PUT /api/v1/chapters/{id}.
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var changes Changes
	if err := requestutil.DecodeJSON(request, &changes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.UpdateByID(request.Context(), id, changes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// Delete handles DELETE /api/v1/chapters/{id}[?force=true].
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	remove := handler.service.Delete
	if pointer.Val(requestutil.QueryBool(request, "force")) {
		if !sec.CanForceDeleteCatalog(ctxutil.ActorRole(request.Context())) {
			respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
			return
		}
		remove = handler.service.ForceDelete
	}
	handler.lifecycle(writer, request, remove)
}

// Restore handles POST /api/v1/chapters/{id}/restore.
func (handler *Handler) Restore(writer http.ResponseWriter, request *http.Request) {
	handler.lifecycle(writer, request, handler.service.Restore)
}

// # Handler Helpers

func (handler *Handler) navigate(writer http.ResponseWriter, request *http.Request, step func(context.Context, int64, float64, bool) (*Chapter, error)) {
	mangaID, err := requestutil.ID(request, "mangaID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	number, err := strconv.ParseFloat(requestutil.Param(request, "number"), 64)
	if err != nil || number < 0 {
		respond.Error(writer, request, validate.FieldErr("number", "Must be a non-negative number"))
		return
	}

	chapter, err := step(request.Context(), mangaID, number, staff(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

func (handler *Handler) lifecycle(writer http.ResponseWriter, request *http.Request, apply func(context.Context, int64) (bool, error)) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	changed, err := apply(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !changed {
		respond.Error(writer, request, errNothingChanged)
		return
	}
	respond.NoContent(writer)
}

func staff(request *http.Request) bool {
	return sec.CanViewUnpublished(ctxutil.ActorRole(request.Context()))
}
