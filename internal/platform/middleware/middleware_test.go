// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/taibuivan/mangashelf/internal/platform/ctxutil"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
)

var ok = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

type fakeVerifier map[string]*sec.AuthClaims

func (verifier fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, found := verifier[token]; found {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

type corsConfig struct {
	development bool
	suffix      string
}

func (c corsConfig) IsDevelopment() bool         { return c.development }
func (c corsConfig) AllowedOriginSuffix() string { return c.suffix }

func serve(handler http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestAuthenticate(t *testing.T) {
	verifier := fakeVerifier{"good": {UserID: 3, Role: sec.RoleModerator}}

	var seen *sec.AuthClaims
	handler := Authenticate(verifier)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.Claims(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous passes through", func(t *testing.T) {
		seen = nil
		recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid bearer injects claims", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good")
		recorder := serve(handler, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, seen)
		assert.Equal(t, int64(3), seen.UserID)
	})

	t.Run("bad token is rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, serve(handler, request).Code)

		request.Header.Set("Authorization", "Token good")
		assert.Equal(t, http.StatusUnauthorized, serve(handler, request).Code)
	})
}

func TestRequireCapability(t *testing.T) {
	handler := RequireCapability(sec.CanDeleteCatalog)(ok)

	withRole := func(role sec.Role) *http.Request {
		request := httptest.NewRequest(http.MethodDelete, "/", nil)
		claims := &sec.AuthClaims{UserID: 1, Role: role}
		return request.WithContext(ctxutil.WithClaims(request.Context(), claims))
	}

	assert.Equal(t, http.StatusUnauthorized, serve(handler, httptest.NewRequest(http.MethodDelete, "/", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(handler, withRole(sec.RoleModerator)).Code)
	assert.Equal(t, http.StatusOK, serve(handler, withRole(sec.RoleAdmin)).Code)
}

func TestCORS(t *testing.T) {
	handler := CORS(corsConfig{suffix: "mangashelf.app"})(ok)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "https://reader.mangashelf.app")
	recorder := serve(handler, request)
	assert.Equal(t, "https://reader.mangashelf.app", recorder.Header().Get("Access-Control-Allow-Origin"))

	request.Header.Set("Origin", "https://evil.example")
	recorder = serve(handler, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set("Origin", "https://reader.mangashelf.app")
	assert.Equal(t, http.StatusNoContent, serve(handler, preflight).Code)
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := rateLimit(ctx, rate.Limit(0.001), 2)(ok)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Real-IP", "10.0.0.1")

	assert.Equal(t, http.StatusOK, serve(handler, request).Code)
	assert.Equal(t, http.StatusOK, serve(handler, request).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler, request).Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, http.StatusOK, serve(handler, other).Code)
}

func TestRequestID(t *testing.T) {
	handler := RequestID()(ok)

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "given")
	assert.Equal(t, "given", serve(handler, request).Header().Get("X-Request-ID"))
}

func TestPanicRecovery(t *testing.T) {
	handler := PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	assert.Equal(t, http.StatusInternalServerError, serve(handler, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}
