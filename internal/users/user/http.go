// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangashelf/internal/platform/request"
	"github.com/taibuivan/mangashelf/internal/platform/respond"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
	"github.com/taibuivan/mangashelf/pkg/pointer"
)

// # Handler Implementation

// Handler implements the HTTP layer for accounts.
type Handler struct {
	service *Service
}

// NewHandler constructs a new user [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches account endpoints to the versioned API router.
//
// Registration and profile reads are public; the service applies the
// per-target rules for updates and deletes.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/users", func(router chi.Router) {
		router.Post("/", handler.Create)
		router.Get("/{username}", handler.Show)

		router.Group(func(authenticated chi.Router) {
			authenticated.Use(middleware.RequireAuth)
			authenticated.Get("/", handler.List)
			authenticated.Put("/{username}", handler.Update)
			authenticated.Delete("/{username}", handler.Delete)
		})

		router.With(middleware.RequireCapability(sec.CanRestoreUser)).Post("/{id}/restore", handler.Restore)
	})
}

/*
GET /api/v1/users.

Request:
  - role: string (optional)
  - with_deleted: bool (admin only)
  - page, per_page: int

Response:
  - 200: Page[User]
  - 403: Caller cannot list users
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{}
	if raw := request.URL.Query().Get("role"); raw != "" {
		role := sec.Role(raw)
		filter.Role = &role
	}
	if pointer.Val(requestutil.QueryBool(request, "with_deleted")) {
		filter.Scope = softdelete.IncludeDeleted
	}

	page, err := handler.service.List(request.Context(), actor(request), filter, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

// Show handles GET /api/v1/users/{username}.
func (handler *Handler) Show(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.GetByUsername(request.Context(), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

/*
POST /api/v1/users.

Request:
  - body: CreateInput

Response:
  - 201: User
  - 400: Validation errors
  - 403: Non-admin asked for a privileged role
  - 409: Username or email already in use
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Create(request.Context(), actor(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, user)
}

// Update handles PUT /api/v1/users/{username}.
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	var changes Changes
	if err := requestutil.DecodeJSON(request, &changes); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Update(request.Context(), actor(request), requestutil.Param(request, "username"), changes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

// Delete handles DELETE /api/v1/users/{username}.
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	deleted, err := handler.service.Delete(request.Context(), actor(request), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !deleted {
		respond.Error(writer, request, apperr.NotFound("User"))
		return
	}
	respond.NoContent(writer)
}

// Restore handles POST /api/v1/users/{id}/restore.
func (handler *Handler) Restore(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	restored, err := handler.service.Restore(request.Context(), actor(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !restored {
		respond.Error(writer, request, apperr.NotFound("User"))
		return
	}
	respond.NoContent(writer)
}

func actor(request *http.Request) Actor {
	return ActorFromClaims(requestutil.Claims(request))
}
