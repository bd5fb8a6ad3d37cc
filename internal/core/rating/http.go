// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangashelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangashelf/internal/platform/request"
	"github.com/taibuivan/mangashelf/internal/platform/respond"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Handler implements the HTTP layer for ratings.
type Handler struct {
	service *Service
}

// NewHandler constructs a new rating [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the rating endpoints under /mangas/{mangaID}.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/mangas/{mangaID}/ratings", handler.list)

	api.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)
		router.Get("/mangas/{mangaID}/rating", handler.mine)
		router.Put("/mangas/{mangaID}/rating", handler.rate)
		router.Delete("/mangas/{mangaID}/rating", handler.remove)
	})
}

// rateInput is the body of PUT /mangas/{mangaID}/rating.
type rateInput struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	mangaID, err := requestutil.ID(request, "mangaID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.ListForManga(request.Context(), mangaID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

func (handler *Handler) mine(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	rating, err := handler.service.Mine(request.Context(), userID, mangaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, rating)
}

func (handler *Handler) rate(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input rateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Rate(request.Context(), userID, mangaID, input.Score, input.Comment)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, mangaID, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Remove(request.Context(), userID, mangaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func target(request *http.Request) (userID, mangaID int64, err error) {
	if userID, err = requestutil.RequiredUserID(request); err != nil {
		return 0, 0, err
	}
	if mangaID, err = requestutil.ID(request, "mangaID"); err != nil {
		return 0, 0, err
	}
	return userID, mangaID, nil
}
