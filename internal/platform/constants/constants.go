// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, header names, and cache taxonomy keys
that are shared between different layers of the system.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "mangashelf-api"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderOrigin        = "Origin"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderAuthorization = "Authorization"
)

// # Authentication

const (
	// AuthIssuer is the expected 'iss' claim in bearer tokens.
	AuthIssuer = "mangashelf.app"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Catalog Listing Limits

const (
	// DefaultShowcaseLimit bounds featured / popular / latest lists.
	DefaultShowcaseLimit = 10

	// MaxShowcaseLimit is the largest limit a client may request for those lists.
	MaxShowcaseLimit = 50
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisNamespace prefixes every key this service writes.
	RedisNamespace = "mangashelf:"

	CacheKeyManga     = "manga:"
	CacheKeyMangaSlug = "manga:slug:"
	CacheKeyMangaList = "manga:list:"
	CacheKeyChapter   = "chapter:"
	CacheKeyUser      = "user:"
	CacheKeyTaxonomy  = "taxonomy:"
)
