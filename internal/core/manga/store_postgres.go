// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
	"github.com/taibuivan/mangashelf/internal/platform/dberr"
	"github.com/taibuivan/mangashelf/internal/platform/postgres"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// # PostgreSQL Repository

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed manga store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

var (
	mangaTable    = schema.CatalogManga
	categoryTable = schema.CatalogMangaCategory
	tagTable      = schema.CatalogMangaTag
	ratingTable   = schema.SocialRating
)

// selectColumns renders the manga column list with the "m." alias.
func selectColumns() string {
	columns := mangaTable.Columns()
	for index, column := range columns {
		columns[index] = "m." + column
	}
	return strings.Join(columns, ", ")
}

// publishedClause restricts a read to published, non-deleted rows.
func publishedClause() string {
	return fmt.Sprintf("m.%s = TRUE%s", mangaTable.IsPublished, softdelete.ExcludeDeleted.Clause("m."+mangaTable.DeletedAt))
}

// # Lookups

/*
FindByID returns a single manga with its associations.

Parameters:
  - context: context.Context
  - id: int64
  - scope: softdelete.Scope

Returns:
  - *Manga: nil when no row matches
  - error: Classified storage failure
*/
func (repository *postgresRepository) FindByID(context context.Context, id int64, scope softdelete.Scope) (*Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.%s = $1%s`,
		selectColumns(), mangaTable.Table, mangaTable.ID, scope.Clause("m."+mangaTable.DeletedAt))
	return repository.findOne(context, query, id)
}

// FindBySlug returns a single manga by its unique slug.
func (repository *postgresRepository) FindBySlug(context context.Context, slug string, scope softdelete.Scope) (*Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.%s = $1%s`,
		selectColumns(), mangaTable.Table, mangaTable.Slug, scope.Clause("m."+mangaTable.DeletedAt))
	return repository.findOne(context, query, slug)
}

func (repository *postgresRepository) findOne(context context.Context, query string, key any) (*Manga, error) {
	manga, err := scanManga(repository.pool.QueryRow(context, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "find manga")
	}

	if err := loadAssociations(context, repository.pool, []*Manga{manga}); err != nil {
		return nil, err
	}

	return manga, nil
}

// # Listings

/*
List returns a filtered, paginated listing ordered by creation time.

Description: Builds the WHERE clause incrementally with positional arguments.
The total comes from a separate COUNT over the same predicate so pages past
the end still report it.
*/
func (repository *postgresRepository) List(context context.Context, filter Filter, params pagination.Params) (pagination.Page[*Manga], error) {
	var where strings.Builder
	var args []any
	argID := 1

	where.WriteString("TRUE")
	where.WriteString(filter.Scope.Clause("m." + mangaTable.DeletedAt))

	if filter.Status != nil {
		where.WriteString(fmt.Sprintf(" AND m.%s = $%d", mangaTable.Status, argID))
		args = append(args, string(*filter.Status))
		argID++
	}

	if filter.IsPublished != nil {
		where.WriteString(fmt.Sprintf(" AND m.%s = $%d", mangaTable.IsPublished, argID))
		args = append(args, *filter.IsPublished)
		argID++
	}

	if filter.AuthorID != nil {
		where.WriteString(fmt.Sprintf(" AND m.%s = $%d", mangaTable.AuthorID, argID))
		args = append(args, *filter.AuthorID)
		argID++
	}

	if filter.ArtistID != nil {
		where.WriteString(fmt.Sprintf(" AND m.%s = $%d", mangaTable.ArtistID, argID))
		args = append(args, *filter.ArtistID)
	}

	order := fmt.Sprintf("m.%s DESC, m.%s DESC", mangaTable.CreatedAt, mangaTable.ID)
	return repository.page(context, where.String(), args, order, params)
}

// Featured returns the featured showcase.
func (repository *postgresRepository) Featured(context context.Context, limit int) ([]*Manga, error) {
	where := fmt.Sprintf("%s AND m.%s = TRUE", publishedClause(), mangaTable.IsFeatured)
	return repository.showcase(context, where, fmt.Sprintf("m.%s DESC", mangaTable.UpdatedAt), limit)
}

// Popular returns the most viewed manga.
func (repository *postgresRepository) Popular(context context.Context, limit int) ([]*Manga, error) {
	return repository.showcase(context, publishedClause(), fmt.Sprintf("m.%s DESC, m.%s DESC", mangaTable.Views, mangaTable.ID), limit)
}

// LatestUpdated returns the most recently updated manga.
func (repository *postgresRepository) LatestUpdated(context context.Context, limit int) ([]*Manga, error) {
	return repository.showcase(context, publishedClause(), fmt.Sprintf("m.%s DESC", mangaTable.UpdatedAt), limit)
}

// ListByCategory returns published manga attached to categoryID.
func (repository *postgresRepository) ListByCategory(context context.Context, categoryID int64, params pagination.Params) (pagination.Page[*Manga], error) {
	where := fmt.Sprintf("%s AND EXISTS (SELECT 1 FROM %s mc WHERE mc.%s = m.%s AND mc.%s = $1)",
		publishedClause(), categoryTable.Table, categoryTable.MangaID, mangaTable.ID, categoryTable.CategoryID)
	return repository.page(context, where, []any{categoryID}, fmt.Sprintf("m.%s DESC", mangaTable.UpdatedAt), params)
}

// ListByTag returns published manga attached to tagID.
func (repository *postgresRepository) ListByTag(context context.Context, tagID int64, params pagination.Params) (pagination.Page[*Manga], error) {
	where := fmt.Sprintf("%s AND EXISTS (SELECT 1 FROM %s mt WHERE mt.%s = m.%s AND mt.%s = $1)",
		publishedClause(), tagTable.Table, tagTable.MangaID, mangaTable.ID, tagTable.TagID)
	return repository.page(context, where, []any{tagID}, fmt.Sprintf("m.%s DESC", mangaTable.UpdatedAt), params)
}

// ListByAuthor returns published manga written by authorID.
func (repository *postgresRepository) ListByAuthor(context context.Context, authorID int64, params pagination.Params) (pagination.Page[*Manga], error) {
	where := fmt.Sprintf("%s AND m.%s = $1", publishedClause(), mangaTable.AuthorID)
	return repository.page(context, where, []any{authorID}, fmt.Sprintf("m.%s DESC", mangaTable.UpdatedAt), params)
}

/*
Search performs a case-insensitive substring match over title and description.

Description: The term is escaped for LIKE so user-supplied '%' and '_' match literally.
*/
func (repository *postgresRepository) Search(context context.Context, term string, params pagination.Params, onlyPublished bool) (pagination.Page[*Manga], error) {
	where := fmt.Sprintf("(m.%s ILIKE $1 OR m.%s ILIKE $1)%s",
		mangaTable.Title, mangaTable.Description, softdelete.ExcludeDeleted.Clause("m."+mangaTable.DeletedAt))
	if onlyPublished {
		where += fmt.Sprintf(" AND m.%s = TRUE", mangaTable.IsPublished)
	}
	return repository.page(context, where, []any{ContainsPattern(term)}, fmt.Sprintf("m.%s ASC", mangaTable.Title), params)
}

// ContainsPattern turns term into an ILIKE pattern matching it anywhere.
func ContainsPattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(term) + "%"
}

// page runs the COUNT and the LIMIT/OFFSET query for a predicate.
func (repository *postgresRepository) page(context context.Context, where string, args []any, order string, params pagination.Params) (pagination.Page[*Manga], error) {

	// 1. Total over the same predicate
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s m WHERE %s`, mangaTable.Table, where)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return pagination.Page[*Manga]{}, dberr.Wrap(err, "count manga")
	}

	// 2. Page slice, skipped when the window is past the end
	if params.Offset() >= total {
		return pagination.NewPage[*Manga](nil, total, params), nil
	}

	argID := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		selectColumns(), mangaTable.Table, where, order, argID, argID+1)

	mangas, err := repository.collect(context, query, append(args, params.Limit(), params.Offset())...)
	if err != nil {
		return pagination.Page[*Manga]{}, err
	}

	return pagination.NewPage(mangas, total, params), nil
}

func (repository *postgresRepository) showcase(context context.Context, where, order string, limit int) ([]*Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE %s ORDER BY %s LIMIT $1`,
		selectColumns(), mangaTable.Table, where, order)
	return repository.collect(context, query, limit)
}

// collect runs a manga query and hydrates associations for every row.
func (repository *postgresRepository) collect(context context.Context, query string, args ...any) ([]*Manga, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list manga")
	}
	defer rows.Close()

	mangas := []*Manga{}
	for rows.Next() {
		manga, err := scanManga(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan manga")
		}
		mangas = append(mangas, manga)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate manga")
	}

	if err := loadAssociations(context, repository.pool, mangas); err != nil {
		return nil, err
	}

	return mangas, nil
}

// # Persistence

/*
Save inserts or updates a manga and replaces its association sets.

Description: The row write and both association syncs share one
transaction, so readers never observe a manga with half-applied tags.

Parameters:
  - context: context.Context
  - manga: *Manga

Returns:
  - error: CONFLICT (duplicate slug), NOT_FOUND (update of a missing id), REFERENCE_NOT_FOUND
*/
func (repository *postgresRepository) Save(context context.Context, manga *Manga) error {
	err := postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {
		if manga.IsNew() {
			if err := insertManga(context, transaction, manga); err != nil {
				return err
			}
		} else if err := updateManga(context, transaction, manga); err != nil {
			return err
		}

		if err := syncAssociation(context, transaction, categoryTable.Table, categoryTable.MangaID, categoryTable.CategoryID, manga.ID, manga.Categories); err != nil {
			return err
		}
		return syncAssociation(context, transaction, tagTable.Table, tagTable.MangaID, tagTable.TagID, manga.ID, manga.Tags)
	})

	if apperr.As(err) != nil {
		return err
	}
	return dberr.Wrap(err, "save manga")
}

func insertManga(context context.Context, transaction pgx.Tx, manga *Manga) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s, %s, %s, %s, %s
	`,
		mangaTable.Table,
		mangaTable.Title, mangaTable.Slug, mangaTable.Description, mangaTable.Status,
		mangaTable.CoverImage, mangaTable.Thumbnail, mangaTable.AuthorID, mangaTable.ArtistID,
		mangaTable.ReleaseYear, mangaTable.IsFeatured, mangaTable.IsPublished,
		mangaTable.ID, mangaTable.Views, mangaTable.AverageRating, mangaTable.CreatedAt, mangaTable.UpdatedAt,
	)

	return transaction.QueryRow(context, query,
		manga.Title, manga.Slug, manga.Description, string(manga.Status),
		manga.CoverImage, manga.Thumbnail, manga.AuthorID, manga.ArtistID,
		manga.ReleaseYear, manga.IsFeatured, manga.IsPublished,
	).Scan(&manga.ID, &manga.Views, &manga.AverageRating, &manga.CreatedAt, &manga.UpdatedAt)
}

func updateManga(context context.Context, transaction pgx.Tx, manga *Manga) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = $10, %s = $11, %s = NOW()
		WHERE %s = $12
		RETURNING %s
	`,
		mangaTable.Table,
		mangaTable.Title, mangaTable.Slug, mangaTable.Description, mangaTable.Status,
		mangaTable.CoverImage, mangaTable.Thumbnail, mangaTable.AuthorID, mangaTable.ArtistID,
		mangaTable.ReleaseYear, mangaTable.IsFeatured, mangaTable.IsPublished, mangaTable.UpdatedAt,
		mangaTable.ID,
		mangaTable.UpdatedAt,
	)

	err := transaction.QueryRow(context, query,
		manga.Title, manga.Slug, manga.Description, string(manga.Status),
		manga.CoverImage, manga.Thumbnail, manga.AuthorID, manga.ArtistID,
		manga.ReleaseYear, manga.IsFeatured, manga.IsPublished,
		manga.ID,
	).Scan(&manga.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Manga")
	}
	return err
}

// syncAssociation makes the junction rows for mangaID equal to ids.
func syncAssociation(context context.Context, transaction pgx.Tx, table, ownerColumn, refColumn string, mangaID int64, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}

	// 1. Drop associations no longer present
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND NOT (%s = ANY($2))`, table, ownerColumn, refColumn)
	if _, err := transaction.Exec(context, deleteQuery, mangaID, ids); err != nil {
		return err
	}

	// 2. Add the missing ones, leaving existing rows untouched
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, UNNEST($2::BIGINT[]) ON CONFLICT DO NOTHING`, table, ownerColumn, refColumn)
	_, err := transaction.Exec(context, insertQuery, mangaID, ids)
	return err
}

// # Lifecycle

// Delete soft-deletes an active manga.
func (repository *postgresRepository) Delete(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		mangaTable.Table, mangaTable.DeletedAt, mangaTable.UpdatedAt, mangaTable.ID, mangaTable.DeletedAt)
	return repository.execAffected(context, "delete manga", query, id)
}

// Restore clears the deletion timestamp of a soft-deleted manga.
func (repository *postgresRepository) Restore(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NULL, %s = NOW() WHERE %s = $1 AND %s IS NOT NULL`,
		mangaTable.Table, mangaTable.DeletedAt, mangaTable.UpdatedAt, mangaTable.ID, mangaTable.DeletedAt)
	return repository.execAffected(context, "restore manga", query, id)
}

// ForceDelete removes the manga row; chapters and associations cascade.
func (repository *postgresRepository) ForceDelete(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, mangaTable.Table, mangaTable.ID)
	return repository.execAffected(context, "force delete manga", query, id)
}

// IncrementViews adds one view without a read-modify-write cycle.
func (repository *postgresRepository) IncrementViews(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1 WHERE %s = $1`,
		mangaTable.Table, mangaTable.Views, mangaTable.Views, mangaTable.ID)
	return repository.execAffected(context, "increment manga views", query, id)
}

func (repository *postgresRepository) execAffected(context context.Context, action, query string, args ...any) (bool, error) {
	result, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return false, dberr.Wrap(err, action)
	}
	return result.RowsAffected() > 0, nil
}

/*
UpdateAverageRating recomputes the derived average from social ratings and
touches updatedat like any other write.

Returns:
  - float64: The stored average, 0 when the manga has no ratings
  - error: NOT_FOUND when the manga does not exist
*/
func (repository *postgresRepository) UpdateAverageRating(context context.Context, id int64) (float64, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = COALESCE((SELECT AVG(r.%s) FROM %s r WHERE r.%s = $1), 0), %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		mangaTable.Table, mangaTable.AverageRating,
		ratingTable.Score, ratingTable.Table, ratingTable.MangaID,
		mangaTable.UpdatedAt,
		mangaTable.ID,
		mangaTable.AverageRating,
	)

	var average float64
	if err := repository.pool.QueryRow(context, query, id).Scan(&average); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperr.NotFound("Manga")
		}
		return 0, dberr.Wrap(err, "update average rating")
	}

	return average, nil
}

// # Associations

// AddCategory attaches a category without touching other associations.
func (repository *postgresRepository) AddCategory(context context.Context, mangaID, categoryID int64) (bool, error) {
	return repository.attach(context, categoryTable.Table, categoryTable.MangaID, categoryTable.CategoryID, mangaID, categoryID)
}

// RemoveCategory detaches a category.
func (repository *postgresRepository) RemoveCategory(context context.Context, mangaID, categoryID int64) (bool, error) {
	return repository.detach(context, categoryTable.Table, categoryTable.MangaID, categoryTable.CategoryID, mangaID, categoryID)
}

// AddTag attaches a tag without touching other associations.
func (repository *postgresRepository) AddTag(context context.Context, mangaID, tagID int64) (bool, error) {
	return repository.attach(context, tagTable.Table, tagTable.MangaID, tagTable.TagID, mangaID, tagID)
}

// RemoveTag detaches a tag.
func (repository *postgresRepository) RemoveTag(context context.Context, mangaID, tagID int64) (bool, error) {
	return repository.detach(context, tagTable.Table, tagTable.MangaID, tagTable.TagID, mangaID, tagID)
}

func (repository *postgresRepository) attach(context context.Context, table, ownerColumn, refColumn string, mangaID, refID int64) (bool, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, ownerColumn, refColumn)
	return repository.touchThen(context, "attach association", mangaID, query, mangaID, refID)
}

func (repository *postgresRepository) detach(context context.Context, table, ownerColumn, refColumn string, mangaID, refID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table, ownerColumn, refColumn)
	return repository.touchThen(context, "detach association", mangaID, query, mangaID, refID)
}

// touchThen bumps the manga's UpdatedAt and, if the manga exists, runs query
// in the same transaction.
func (repository *postgresRepository) touchThen(context context.Context, action string, mangaID int64, query string, args ...any) (bool, error) {
	found := false

	err := postgres.WithTx(context, repository.pool, func(transaction pgx.Tx) error {
		touch := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
			mangaTable.Table, mangaTable.UpdatedAt, mangaTable.ID, mangaTable.DeletedAt)

		result, err := transaction.Exec(context, touch, mangaID)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return nil
		}

		found = true
		_, err = transaction.Exec(context, query, args...)
		return err
	})
	if err != nil {
		return false, dberr.Wrap(err, action)
	}

	return found, nil
}

// SlugExists checks slug uniqueness across all rows, deleted ones included.
func (repository *postgresRepository) SlugExists(context context.Context, slug string, excludeID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2)`,
		mangaTable.Table, mangaTable.Slug, mangaTable.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, slug, excludeID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check manga slug")
	}
	return exists, nil
}

// # Row Mapping

func scanManga(row pgx.Row) (*Manga, error) {
	var manga Manga
	var status string

	err := row.Scan(
		&manga.ID,
		&manga.Title,
		&manga.Slug,
		&manga.Description,
		&status,
		&manga.CoverImage,
		&manga.Thumbnail,
		&manga.AuthorID,
		&manga.ArtistID,
		&manga.ReleaseYear,
		&manga.IsFeatured,
		&manga.IsPublished,
		&manga.Views,
		&manga.AverageRating,
		&manga.CreatedAt,
		&manga.UpdatedAt,
		&manga.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	manga.Status = Status(status)
	manga.Categories = []int64{}
	manga.Tags = []int64{}
	return &manga, nil
}

// loadAssociations fills Categories and Tags for every manga with two queries.
func loadAssociations(context context.Context, db querier, mangas []*Manga) error {
	if len(mangas) == 0 {
		return nil
	}

	byID := make(map[int64]*Manga, len(mangas))
	ids := make([]int64, 0, len(mangas))
	for _, manga := range mangas {
		byID[manga.ID] = manga
		ids = append(ids, manga.ID)
	}

	load := func(table, ownerColumn, refColumn string, assign func(*Manga, int64)) error {
		query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1) ORDER BY %s, %s`,
			ownerColumn, refColumn, table, ownerColumn, ownerColumn, refColumn)

		rows, err := db.Query(context, query, ids)
		if err != nil {
			return dberr.Wrap(err, "load manga associations")
		}
		defer rows.Close()

		for rows.Next() {
			var mangaID, refID int64
			if err := rows.Scan(&mangaID, &refID); err != nil {
				return dberr.Wrap(err, "scan manga association")
			}
			if manga, ok := byID[mangaID]; ok {
				assign(manga, refID)
			}
		}
		return dberr.Wrap(rows.Err(), "iterate manga associations")
	}

	if err := load(categoryTable.Table, categoryTable.MangaID, categoryTable.CategoryID, func(manga *Manga, id int64) {
		manga.Categories = append(manga.Categories, id)
	}); err != nil {
		return err
	}

	return load(tagTable.Table, tagTable.MangaID, tagTable.TagID, func(manga *Manga, id int64) {
		manga.Tags = append(manga.Tags, id)
	})
}
