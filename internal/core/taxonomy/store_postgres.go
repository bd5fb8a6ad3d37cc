// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
	"github.com/taibuivan/mangashelf/internal/platform/dberr"
)

// PostgresRepository implements [Repository] over the catalog reference tables.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed taxonomy store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) List(context context.Context, kind Kind) ([]*Term, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s ORDER BY %s ASC, %s ASC`,
		table.ID, table.Name, table.Slug, table.CreatedAt, table.Table, table.Name, table.ID)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_"+string(kind))
	}
	defer rows.Close()

	terms := make([]*Term, 0)
	for rows.Next() {
		term := &Term{}
		if err := rows.Scan(&term.ID, &term.Name, &term.Slug, &term.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_"+string(kind))
		}
		terms = append(terms, term)
	}

	return terms, dberr.Wrap(rows.Err(), "list_"+string(kind))
}

func (repository *PostgresRepository) FindBySlug(context context.Context, kind Kind, slug string) (*Term, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		table.ID, table.Name, table.Slug, table.CreatedAt, table.Table, table.Slug)

	term := &Term{}
	err = repository.db.QueryRow(context, query, slug).Scan(&term.ID, &term.Name, &term.Slug, &term.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_"+string(kind)+"_by_slug")
	}
	return term, nil
}

func (repository *PostgresRepository) Create(context context.Context, kind Kind, term *Term) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s, %s`,
		table.Table, table.Name, table.Slug, table.ID, table.CreatedAt)

	err = repository.db.QueryRow(context, query, term.Name, term.Slug).Scan(&term.ID, &term.CreatedAt)
	return dberr.Wrap(err, "create_"+string(kind))
}

func tableFor(kind Kind) (schema.CatalogReferenceTable, error) {
	table, ok := kind.table()
	if !ok {
		return table, fmt.Errorf("taxonomy: unknown kind %q", kind)
	}
	return table, nil
}
