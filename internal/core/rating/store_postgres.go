// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
	"github.com/taibuivan/mangashelf/internal/platform/dberr"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

var ratingTable = schema.SocialRating

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed rating store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

/*
Upsert writes the rating keyed by (userid, mangaid).

Description: A second rating from the same user replaces score and comment
in place, keeping the original id and creation time.
*/
func (repository *postgresRepository) Upsert(context context.Context, rating *Rating) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
		RETURNING %s, %s, %s
	`,
		ratingTable.Table, ratingTable.UserID, ratingTable.MangaID, ratingTable.Score, ratingTable.Comment,
		ratingTable.UserID, ratingTable.MangaID,
		ratingTable.Score, ratingTable.Score, ratingTable.Comment, ratingTable.Comment, ratingTable.UpdatedAt,
		ratingTable.ID, ratingTable.CreatedAt, ratingTable.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, rating.UserID, rating.MangaID, rating.Score, rating.Comment).
		Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)
	return dberr.Wrap(err, "upsert rating")
}

func (repository *postgresRepository) Find(context context.Context, userID, mangaID int64) (*Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		columns(), ratingTable.Table, ratingTable.UserID, ratingTable.MangaID)

	rating, err := scanRating(repository.pool.QueryRow(context, query, userID, mangaID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find rating")
	}
	return rating, nil
}

func (repository *postgresRepository) Delete(context context.Context, userID, mangaID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		ratingTable.Table, ratingTable.UserID, ratingTable.MangaID)

	result, err := repository.pool.Exec(context, query, userID, mangaID)
	if err != nil {
		return false, dberr.Wrap(err, "delete rating")
	}
	return result.RowsAffected() > 0, nil
}

func (repository *postgresRepository) ListForManga(context context.Context, mangaID int64, params pagination.Params) (pagination.Page[*Rating], error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, ratingTable.Table, ratingTable.MangaID)
	if err := repository.pool.QueryRow(context, countQuery, mangaID).Scan(&total); err != nil {
		return pagination.Page[*Rating]{}, dberr.Wrap(err, "count ratings")
	}

	if params.Offset() >= total {
		return pagination.NewPage[*Rating](nil, total, params), nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC, %s DESC LIMIT $2 OFFSET $3`,
		columns(), ratingTable.Table, ratingTable.MangaID, ratingTable.UpdatedAt, ratingTable.ID)

	rows, err := repository.pool.Query(context, query, mangaID, params.Limit(), params.Offset())
	if err != nil {
		return pagination.Page[*Rating]{}, dberr.Wrap(err, "list ratings")
	}
	defer rows.Close()

	ratings := make([]*Rating, 0, params.Limit())
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return pagination.Page[*Rating]{}, dberr.Wrap(err, "scan rating")
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[*Rating]{}, dberr.Wrap(err, "list ratings")
	}

	return pagination.NewPage(ratings, total, params), nil
}

func columns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s",
		ratingTable.ID, ratingTable.UserID, ratingTable.MangaID, ratingTable.Score,
		ratingTable.Comment, ratingTable.CreatedAt, ratingTable.UpdatedAt)
}

func scanRating(row pgx.Row) (*Rating, error) {
	var rating Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MangaID,
		&rating.Score,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
