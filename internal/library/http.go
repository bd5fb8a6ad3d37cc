// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangashelf/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangashelf/internal/platform/request"
	"github.com/taibuivan/mangashelf/internal/platform/respond"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Handler implements the HTTP layer for the signed-in user's library.
type Handler struct {
	service *Service
}

// NewHandler constructs a new library [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /me/bookmarks and /me/history. Every route needs a session.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/me", func(router chi.Router) {
		router.Use(middleware.RequireAuth)

		router.Get("/bookmarks", handler.listBookmarks)
		router.Put("/bookmarks/{mangaID}", handler.addBookmark)
		router.Delete("/bookmarks/{mangaID}", handler.removeBookmark)

		router.Get("/history", handler.history)
		router.Put("/history/{chapterID}", handler.recordProgress)
	})
}

// progressInput is the body of PUT /me/history/{chapterID}.
type progressInput struct {
	PageNumber int `json:"page_number"`
}

func (handler *Handler) listBookmarks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.ListBookmarks(request.Context(), userID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

func (handler *Handler) addBookmark(writer http.ResponseWriter, request *http.Request) {
	handler.bookmark(writer, request, handler.service.AddBookmark)
}

func (handler *Handler) removeBookmark(writer http.ResponseWriter, request *http.Request) {
	handler.bookmark(writer, request, handler.service.RemoveBookmark)
}

func (handler *Handler) bookmark(writer http.ResponseWriter, request *http.Request, apply func(context.Context, int64, int64) error) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	mangaID, err := requestutil.ID(request, "mangaID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := apply(request.Context(), userID, mangaID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.service.History(request.Context(), userID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, page)
}

func (handler *Handler) recordProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	chapterID, err := requestutil.ID(request, "chapterID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input progressInput
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	progress, err := handler.service.RecordProgress(request.Context(), userID, chapterID, input.PageNumber)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, progress)
}
