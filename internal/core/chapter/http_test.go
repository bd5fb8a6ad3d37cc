// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/core/chapter"
	"github.com/taibuivan/mangashelf/internal/platform/ctxutil"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
)

func newRouter(f fixture, role sec.Role) http.Handler {
	router := chi.NewRouter()
	if role != "" {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				claims := &sec.AuthClaims{UserID: 1, Role: role}
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithClaims(request.Context(), claims)))
			})
		})
	}
	chapter.NewHandler(f.service).RegisterRoutes(router)
	return router
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(method, target, strings.NewReader(body)))
	return recorder
}

func TestHandler_ShowBySlug(t *testing.T) {
	f := newFixture(t)
	id := f.seed(1, true)

	recorder := serve(newRouter(f, ""), http.MethodGet, "/chapters/test-saga/chapter-1", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data chapter.Chapter `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, id, body.Data.ID)
}

func TestHandler_NextAtBoundaryIsNull(t *testing.T) {
	f := newFixture(t)
	f.seed(1, true)

	recorder := serve(newRouter(f, ""), http.MethodGet, "/mangas/1/chapters/1/next", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":null}`, recorder.Body.String())
}

func TestHandler_CreateRequiresCapability(t *testing.T) {
	f := newFixture(t)
	payload := `{"chapter_number": 1, "title": "One"}`

	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(f, ""), http.MethodPost, "/mangas/1/chapters", payload).Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(f, sec.RoleUser), http.MethodPost, "/mangas/1/chapters", payload).Code)

	recorder := serve(newRouter(f, sec.RoleTranslator), http.MethodPost, "/mangas/1/chapters", payload)
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestHandler_CreateForMissingManga(t *testing.T) {
	f := newFixture(t)

	recorder := serve(newRouter(f, sec.RoleAdmin), http.MethodPost, "/mangas/77/chapters", `{"chapter_number": 1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}
