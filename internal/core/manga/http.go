// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/ctxutil"
	"github.com/taibuivan/mangashelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangashelf/internal/platform/request"
	"github.com/taibuivan/mangashelf/internal/platform/respond"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
	"github.com/taibuivan/mangashelf/pkg/pointer"
)

var (
	errNothingChanged    = apperr.NotFound("Manga")
	errForceDeleteDenied = apperr.Forbidden("Insufficient permissions")
)

// # Handler Implementation

// Handler implements the HTTP layer for the manga catalogue.
type Handler struct {
	service *Service
}

// NewHandler constructs a new manga [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches manga endpoints to the versioned API router.
//
// # Routing Strategy
//
//   - Public: catalogue listings, showcases, search and detail by slug.
//   - Staff: create, update and association changes ([sec.CanCreateCatalog], [sec.CanUpdateCatalog]).
//   - Admin: delete, force delete and restore.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/mangas", func(router chi.Router) {
		router.Get("/", handler.List)
		router.Get("/featured", handler.Featured)
		router.Get("/popular", handler.Popular)
		router.Get("/latest", handler.Latest)
		router.Get("/search", handler.Search)
		router.Get("/category/{id}", handler.ByCategory)
		router.Get("/tag/{id}", handler.ByTag)
		router.Get("/author/{id}", handler.ByAuthor)
		router.Get("/{slug}", handler.Show)
		router.Post("/{id}/views", handler.RecordView)

		router.With(middleware.RequireCapability(sec.CanCreateCatalog)).Post("/", handler.Create)

		router.Group(func(staff chi.Router) {
			staff.Use(middleware.RequireCapability(sec.CanUpdateCatalog))
			staff.Put("/{slug}", handler.Update)
			staff.Post("/{id}/categories/{categoryID}", handler.AddCategory)
			staff.Delete("/{id}/categories/{categoryID}", handler.RemoveCategory)
			staff.Post("/{id}/tags/{tagID}", handler.AddTag)
			staff.Delete("/{id}/tags/{tagID}", handler.RemoveTag)
		})

		router.With(middleware.RequireCapability(sec.CanDeleteCatalog)).Delete("/{id}", handler.Delete)
		router.With(middleware.RequireCapability(sec.CanRestoreCatalog)).Post("/{id}/restore", handler.Restore)
	})
}

// # Catalogue Retrieval

/*
GET /api/v1/mangas.

Description: Returns a filtered, paginated catalogue. Unpublished and deleted
entries are only listed for staff.

Request:
  - status: string (ongoing, completed, hiatus)
  - author_id, artist_id: int64
  - is_published: bool (staff only)
  - with_deleted: bool (admin only)
  - page, per_page: int

Response:
  - 200: Page[Manga]
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	role := ctxutil.ActorRole(request.Context())
	query := request.URL.Query()

	filter := Filter{
		AuthorID: requestutil.QueryInt64(request, "author_id"),
		ArtistID: requestutil.QueryInt64(request, "artist_id"),
	}

	if raw := query.Get("status"); raw != "" {
		status := Status(raw)
		filter.Status = &status
	}

	if sec.CanViewUnpublished(role) {
		filter.IsPublished = requestutil.QueryBool(request, "is_published")
	} else {
		filter.IsPublished = pointer.To(true)
	}

	if pointer.Val(requestutil.QueryBool(request, "with_deleted")) && sec.CanRestoreCatalog(role) {
		filter.Scope = softdelete.IncludeDeleted
	}

	page, err := handler.service.List(request.Context(), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page)
}

// Featured handles GET /api/v1/mangas/featured?limit=n.
func (handler *Handler) Featured(writer http.ResponseWriter, request *http.Request) {
	mangas, err := handler.service.Featured(request.Context(), limitParam(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, mangas)
}

// Popular handles GET /api/v1/mangas/popular?limit=n.
func (handler *Handler) Popular(writer http.ResponseWriter, request *http.Request) {
	mangas, err := handler.service.Popular(request.Context(), limitParam(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, mangas)
}

// Latest handles GET /api/v1/mangas/latest?limit=n.
func (handler *Handler) Latest(writer http.ResponseWriter, request *http.Request) {
	mangas, err := handler.service.Latest(request.Context(), limitParam(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, mangas)
}

// Search handles GET /api/v1/mangas/search?q=term. Only staff see unpublished matches.
func (handler *Handler) Search(writer http.ResponseWriter, request *http.Request) {
	includeUnpublished := sec.CanViewUnpublished(ctxutil.ActorRole(request.Context()))
	page, err := handler.service.Search(request.Context(), request.URL.Query().Get("q"), pagination.FromRequest(request), includeUnpublished)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

// ByCategory handles GET /api/v1/mangas/category/{id}.
func (handler *Handler) ByCategory(writer http.ResponseWriter, request *http.Request) {
	handler.listByReference(writer, request, handler.service.ByCategory)
}

// ByTag handles GET /api/v1/mangas/tag/{id}.
func (handler *Handler) ByTag(writer http.ResponseWriter, request *http.Request) {
	handler.listByReference(writer, request, handler.service.ByTag)
}

// ByAuthor handles GET /api/v1/mangas/author/{id}.
func (handler *Handler) ByAuthor(writer http.ResponseWriter, request *http.Request) {
	handler.listByReference(writer, request, handler.service.ByAuthor)
}

/*
GET /api/v1/mangas/{slug}.

Response:
  - 200: Manga
  - 404: ErrNotFound: missing, deleted, or unpublished for a non-staff caller
*/
func (handler *Handler) Show(writer http.ResponseWriter, request *http.Request) {
	includeUnpublished := sec.CanViewUnpublished(ctxutil.ActorRole(request.Context()))

	manga, err := handler.service.GetBySlug(request.Context(), requestutil.Param(request, "slug"), includeUnpublished)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, manga)
}

// RecordView handles POST /api/v1/mangas/{id}/views.
func (handler *Handler) RecordView(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RecordView(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Catalogue Management

/*
POST /api/v1/mangas.

Request:
  - body: CreateInput

Response:
  - 201: Manga
  - 400: Validation errors
  - 409: Slug already in use
  - 422: Author or artist does not exist
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manga, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, manga)
}

/*
PUT /api/v1/mangas/{slug}.

Request:
  - body: Changes (only present fields are applied)

Response:
  - 200: Manga
  - 404: Unknown slug
*/
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	var changes Changes
	if err := requestutil.DecodeJSON(request, &changes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manga, err := handler.service.Update(request.Context(), requestutil.Param(request, "slug"), changes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, manga)
}

/*
DELETE /api/v1/mangas/{id}.

Description: Soft-deletes by default; ?force=true removes the row and requires
the force-delete capability.

Response:
  - 204: Deleted
  - 404: Nothing to delete
*/
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	remove := handler.service.Delete
	if pointer.Val(requestutil.QueryBool(request, "force")) {
		if !sec.CanForceDeleteCatalog(ctxutil.ActorRole(request.Context())) {
			respond.Error(writer, request, errForceDeleteDenied)
			return
		}
		remove = handler.service.ForceDelete
	}

	handler.respondLifecycle(writer, request, id, remove)
}

// Restore handles POST /api/v1/mangas/{id}/restore.
func (handler *Handler) Restore(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.respondLifecycle(writer, request, id, handler.service.Restore)
}

// AddCategory handles POST /api/v1/mangas/{id}/categories/{categoryID}.
func (handler *Handler) AddCategory(writer http.ResponseWriter, request *http.Request) {
	handler.changeAssociation(writer, request, "categoryID", handler.service.AddCategory)
}

// RemoveCategory handles DELETE /api/v1/mangas/{id}/categories/{categoryID}.
func (handler *Handler) RemoveCategory(writer http.ResponseWriter, request *http.Request) {
	handler.changeAssociation(writer, request, "categoryID", handler.service.RemoveCategory)
}

// AddTag handles POST /api/v1/mangas/{id}/tags/{tagID}.
func (handler *Handler) AddTag(writer http.ResponseWriter, request *http.Request) {
	handler.changeAssociation(writer, request, "tagID", handler.service.AddTag)
}

// RemoveTag handles DELETE /api/v1/mangas/{id}/tags/{tagID}.
func (handler *Handler) RemoveTag(writer http.ResponseWriter, request *http.Request) {
	handler.changeAssociation(writer, request, "tagID", handler.service.RemoveTag)
}

// # Handler Helpers

func (handler *Handler) listByReference(writer http.ResponseWriter, request *http.Request, list func(context.Context, int64, pagination.Params) (pagination.Page[*Manga], error)) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := list(request.Context(), id, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

func (handler *Handler) respondLifecycle(writer http.ResponseWriter, request *http.Request, id int64, apply func(context.Context, int64) (bool, error)) {
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

func (handler *Handler) changeAssociation(writer http.ResponseWriter, request *http.Request, refParam string, apply func(context.Context, int64, int64) error) {
	mangaID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	refID, err := requestutil.ID(request, refParam)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := apply(request.Context(), mangaID, refID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// limitParam reads ?limit; [ShowcaseLimit] applies bounds.
func limitParam(request *http.Request) int {
	limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))
	return limit
}
