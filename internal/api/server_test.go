// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/platform/config"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
)

type noTokens struct{}

func (noTokens) VerifyToken(string) (*sec.AuthClaims, error) { return nil, errors.New("no tokens") }

type pingDomain struct{}

func (pingDomain) RegisterRoutes(api chi.Router) {
	api.Get("/ping", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
	})
}

func newTestServer(t *testing.T, dependencies HealthDependencies) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	liveness, readiness := NewHealthHandlers(dependencies, logger)
	cfg := &config.Config{ServerPort: "0", Environment: "test"}

	server := NewServer(ctx, cfg, logger, noTokens{}, Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Domains:   []RouteRegistrar{pingDomain{}},
	})
	return server.Handler()
}

func get(handler http.Handler, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestServer_MountsDomainsUnderVersionPrefix(t *testing.T) {
	handler := newTestServer(t, HealthDependencies{})

	assert.Equal(t, http.StatusTeapot, get(handler, "/api/v1/ping").Code)
	assert.Equal(t, http.StatusNotFound, get(handler, "/ping").Code)
	assert.NotEmpty(t, get(handler, "/api/v1/ping").Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("liveness", func(t *testing.T) {
		recorder := get(newTestServer(t, HealthDependencies{CheckDatabase: down}), "/health")
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("ready", func(t *testing.T) {
		recorder := get(newTestServer(t, HealthDependencies{CheckDatabase: healthy, CheckCache: healthy}), "/ready")
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("degraded", func(t *testing.T) {
		recorder := get(newTestServer(t, HealthDependencies{CheckDatabase: healthy, CheckCache: down}), "/ready")
		require.Equal(t, http.StatusServiceUnavailable, recorder.Code)

		var body struct {
			Data struct {
				Status string `json:"status"`
				Checks []struct {
					Name string `json:"name"`
					OK   bool   `json:"ok"`
				} `json:"checks"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Data.Status)
		require.Len(t, body.Data.Checks, 2)
		assert.False(t, body.Data.Checks[1].OK)
	})
}
