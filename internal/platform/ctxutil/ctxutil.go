// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and reads the per-request values the HTTP layer
// attaches to a [context.Context]: the request ID, a scoped logger and the
// verified session claims.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/mangashelf/internal/platform/ctxkey"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
)

// # Request Tracing

// WithRequestID attaches the correlation ID echoed in X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// RequestID returns the correlation ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches a logger already enriched with request attributes.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// Logger returns the request logger, falling back to [slog.Default].
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Session

// WithClaims attaches the verified bearer token claims.
func WithClaims(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, claims)
}

// Claims returns the session claims, or nil for anonymous requests.
func Claims(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}

// ActorRole returns the caller's role, or "" for anonymous requests.
//
// Services use it to decide whether unpublished or soft-deleted records are
// visible without threading the role through every signature.
func ActorRole(ctx context.Context) sec.Role {
	if claims := Claims(ctx); claims != nil {
		return claims.Role
	}
	return ""
}
