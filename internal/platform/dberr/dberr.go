// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
)

// Wrap inspects a database error and classifies it as an [apperr.AppError].
//
// # Mapping
//
//   - pgx.ErrNoRows: NOT_FOUND
//   - 23505 unique_violation: CONFLICT (constraint name in the message)
//   - 23503 foreign_key_violation: REFERENCE_NOT_FOUND
//   - connection failures and deadlines: STORE_FAILURE
//   - anything else: INTERNAL_ERROR
//
// The action is recorded in the cause for server-side logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Resource")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			conflict := apperr.Conflict(conflictMessage(pgErr.ConstraintName))
			conflict.Cause = fmt.Errorf("postgres: %s: %w", action, err)
			return conflict
		case pgerrcode.ForeignKeyViolation:
			return &apperr.AppError{
				Code:       apperr.CodeReferenceMissing,
				Message:    "Referenced resource does not exist",
				HTTPStatus: http.StatusUnprocessableEntity,
				Cause:      fmt.Errorf("postgres: %s: %w", action, err),
			}
		case pgerrcode.QueryCanceled, pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow:
			return apperr.StoreFailure(fmt.Errorf("postgres: %s: %w", action, err))
		}
	}

	if IsUnavailable(err) {
		return apperr.StoreFailure(fmt.Errorf("postgres: %s: %w", action, err))
	}

	return apperr.Internal(fmt.Errorf("postgres: %s: %w", action, err))
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsUnavailable reports whether err means the store could not be reached in time.
func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	return pgconn.Timeout(err)
}

// conflictMessage turns a constraint name into a client-safe message.
func conflictMessage(constraint string) string {
	if message, ok := constraintMessages[constraint]; ok {
		return message
	}
	return "Resource already exists"
}

// constraintMessages names the unique constraints declared in data/migrations.
var constraintMessages = map[string]string{
	"manga_slug_key":           "A manga with this slug already exists",
	"chapter_manga_number_key": "This manga already has a chapter with that number",
	"chapter_slug_key":         "A chapter with this slug already exists",
	"account_username_key":     "Username is already taken",
	"account_email_key":        "Email is already registered",
	"category_slug_key":        "A category with this slug already exists",
	"tag_slug_key":             "A tag with this slug already exists",
	"author_slug_key":          "An author with this slug already exists",
	"artist_slug_key":          "An artist with this slug already exists",
}
