// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pgtest opens a migrated, emptied PostgreSQL database for repository
// integration tests.
//
// Tests are skipped unless MANGASHELF_TEST_DATABASE_URL is set. An advisory
// lock serializes tests from different packages that share the database.
package pgtest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/platform/migration"
	"github.com/taibuivan/mangashelf/internal/platform/postgres"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "MANGASHELF_TEST_DATABASE_URL"

const lockKey = 7_301_004

// tables lists every data table, children first.
var tables = []string{
	"library.readinghistory",
	"library.bookmark",
	"social.rating",
	"catalog.chapterpage",
	"catalog.chapter",
	"catalog.mangatag",
	"catalog.mangacategory",
	"catalog.manga",
	"catalog.category",
	"catalog.tag",
	"catalog.author",
	"catalog.artist",
	"users.account",
}

// Open returns a pool to an empty, fully migrated database.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set; skipping integration test", EnvDatabaseURL)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, migration.RunUp(dsn, "", logger))

	pool, err := postgres.NewPool(ctx, dsn, logger)
	require.NoError(t, err)

	// Hold the lock on a dedicated connection until the test ends
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "SELECT pg_advisory_lock($1)", lockKey)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockKey)
		conn.Release()
		pool.Close()
	})

	_, err = pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return pool
}

// Insert runs an INSERT ... RETURNING id and returns the id.
func Insert(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int64 {
	t.Helper()

	var id int64
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&id))
	return id
}
