// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangashelf/internal/platform/dberr"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Matcher resolves criteria to an ordered page of manga ids and the total match count.
type Matcher interface {
	Match(context context.Context, criteria Criteria, params pagination.Params) ([]int64, int, error)
}

// postgresMatcher implements [Matcher] using pgx.
type postgresMatcher struct {
	pool *pgxpool.Pool
}

// NewPostgresMatcher constructs a PostgreSQL backed [Matcher].
func NewPostgresMatcher(pool *pgxpool.Pool) Matcher {
	return &postgresMatcher{pool: pool}
}

func (matcher *postgresMatcher) Match(context context.Context, criteria Criteria, params pagination.Params) ([]int64, int, error) {
	stmt := buildQuery(criteria, params)

	var total int
	if err := matcher.pool.QueryRow(context, stmt.countSQL, stmt.countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count search results")
	}
	if params.Offset() >= total {
		return []int64{}, total, nil
	}

	rows, err := matcher.pool.Query(context, stmt.pageSQL, stmt.pageArgs...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "search manga")
	}
	defer rows.Close()

	ids := make([]int64, 0, params.Limit())
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, 0, dberr.Wrap(err, "scan search result")
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "search manga")
	}
	return ids, total, nil
}
