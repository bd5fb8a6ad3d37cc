// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/core/search"
	"github.com/taibuivan/mangashelf/internal/platform/postgres/pgtest"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

func TestPostgres_CategoryAllTagAny(t *testing.T) {
	pool := pgtest.Open(t)
	matcher := search.NewPostgresMatcher(pool)
	ctx := context.Background()

	action := pgtest.Insert(t, pool, `INSERT INTO catalog.category (name, slug) VALUES ('Action', 'action') RETURNING id`)
	drama := pgtest.Insert(t, pool, `INSERT INTO catalog.category (name, slug) VALUES ('Drama', 'drama') RETURNING id`)
	isekai := pgtest.Insert(t, pool, `INSERT INTO catalog.tag (name, slug) VALUES ('Isekai', 'isekai') RETURNING id`)
	magic := pgtest.Insert(t, pool, `INSERT INTO catalog.tag (name, slug) VALUES ('Magic', 'magic') RETURNING id`)

	both := pgtest.Insert(t, pool, `INSERT INTO catalog.manga (title, slug) VALUES ('Both', 'both') RETURNING id`)
	onlyAction := pgtest.Insert(t, pool, `INSERT INTO catalog.manga (title, slug) VALUES ('Only Action', 'only-action') RETURNING id`)
	hidden := pgtest.Insert(t, pool, `INSERT INTO catalog.manga (title, slug, ispublished) VALUES ('Hidden', 'hidden', FALSE) RETURNING id`)

	for _, pair := range [][2]int64{{both, action}, {both, drama}, {onlyAction, action}, {hidden, action}, {hidden, drama}} {
		pgtest.Insert(t, pool, `INSERT INTO catalog.mangacategory (mangaid, categoryid) VALUES ($1, $2) RETURNING mangaid`, pair[0], pair[1])
	}
	pgtest.Insert(t, pool, `INSERT INTO catalog.mangatag (mangaid, tagid) VALUES ($1, $2) RETURNING mangaid`, both, isekai)
	pgtest.Insert(t, pool, `INSERT INTO catalog.mangatag (mangaid, tagid) VALUES ($1, $2) RETURNING mangaid`, onlyAction, magic)

	params := pagination.Params{Page: 1, PerPage: 10}

	ids, total, err := matcher.Match(ctx, search.Criteria{Categories: []int64{action, drama}}, params)
	require.NoError(t, err)
	assert.Equal(t, []int64{both}, ids)
	assert.Equal(t, 1, total)

	ids, total, err = matcher.Match(ctx, search.Criteria{Tags: []int64{isekai, magic}, SortBy: "title", SortDir: "asc"}, params)
	require.NoError(t, err)
	assert.Equal(t, []int64{both, onlyAction}, ids)
	assert.Equal(t, 2, total)

	ids, total, err = matcher.Match(ctx, search.Criteria{Categories: []int64{action}, Tags: []int64{magic}}, params)
	require.NoError(t, err)
	assert.Equal(t, []int64{onlyAction}, ids)
	assert.Equal(t, 1, total)

	ids, total, err = matcher.Match(ctx, search.Criteria{Query: "only"}, pagination.Params{Page: 5, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 1, total)
}
