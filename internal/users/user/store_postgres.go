// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/database/schema"
	"github.com/taibuivan/mangashelf/internal/platform/dberr"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

var accountTable = schema.UsersAccount

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed account store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func selectColumns() string {
	return strings.Join([]string{
		accountTable.ID, accountTable.Username, accountTable.Email, accountTable.PasswordHash,
		accountTable.Role, accountTable.Avatar, accountTable.Bio,
		accountTable.CreatedAt, accountTable.UpdatedAt, accountTable.DeletedAt,
	}, ", ")
}

// # Lookups

func (repository *postgresRepository) FindByID(context context.Context, id int64, scope softdelete.Scope) (*User, error) {
	return repository.findBy(context, accountTable.ID, id, scope)
}

func (repository *postgresRepository) FindByUsername(context context.Context, username string, scope softdelete.Scope) (*User, error) {
	return repository.findBy(context, accountTable.Username, username, scope)
}

func (repository *postgresRepository) FindByEmail(context context.Context, email string, scope softdelete.Scope) (*User, error) {
	return repository.findBy(context, accountTable.Email, email, scope)
}

func (repository *postgresRepository) findBy(context context.Context, column string, key any, scope softdelete.Scope) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1%s`,
		selectColumns(), accountTable.Table, column, scope.Clause(accountTable.DeletedAt))

	user, err := scanUser(repository.pool.QueryRow(context, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "find user")
	}
	return user, nil
}

/*
List returns accounts newest first, optionally narrowed to one role.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - pagination.Page[*User]
  - error
*/
func (repository *postgresRepository) List(context context.Context, filter Filter, params pagination.Params) (pagination.Page[*User], error) {
	where := "TRUE" + filter.Scope.Clause(accountTable.DeletedAt)
	var args []any

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		where += fmt.Sprintf(" AND %s = $%d", accountTable.Role, len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, accountTable.Table, where)
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return pagination.Page[*User]{}, dberr.Wrap(err, "count users")
	}

	if params.Offset() >= total {
		return pagination.NewPage[*User](nil, total, params), nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d`,
		selectColumns(), accountTable.Table, where, accountTable.CreatedAt, accountTable.ID, len(args)+1, len(args)+2)

	rows, err := repository.pool.Query(context, query, append(args, params.Limit(), params.Offset())...)
	if err != nil {
		return pagination.Page[*User]{}, dberr.Wrap(err, "list users")
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit())
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return pagination.Page[*User]{}, dberr.Wrap(err, "scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[*User]{}, dberr.Wrap(err, "list users")
	}

	return pagination.NewPage(users, total, params), nil
}

// # Persistence

// Save inserts a new account or rewrites the mutable columns of an existing one.
func (repository *postgresRepository) Save(context context.Context, user *User) error {
	var err error
	if user.IsNew() {
		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING %s, %s, %s
		`,
			accountTable.Table,
			accountTable.Username, accountTable.Email, accountTable.PasswordHash,
			accountTable.Role, accountTable.Avatar, accountTable.Bio,
			accountTable.ID, accountTable.CreatedAt, accountTable.UpdatedAt,
		)
		err = repository.pool.QueryRow(context, query,
			user.Username, user.Email, user.PasswordHash, string(user.Role), user.Avatar, user.Bio,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	} else {
		query := fmt.Sprintf(`
			UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
			WHERE %s = $7
			RETURNING %s
		`,
			accountTable.Table,
			accountTable.Username, accountTable.Email, accountTable.PasswordHash,
			accountTable.Role, accountTable.Avatar, accountTable.Bio, accountTable.UpdatedAt,
			accountTable.ID,
			accountTable.UpdatedAt,
		)
		err = repository.pool.QueryRow(context, query,
			user.Username, user.Email, user.PasswordHash, string(user.Role), user.Avatar, user.Bio, user.ID,
		).Scan(&user.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("User")
		}
	}

	return dberr.Wrap(err, "save user")
}

func (repository *postgresRepository) Delete(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW(), %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		accountTable.Table, accountTable.DeletedAt, accountTable.UpdatedAt, accountTable.ID, accountTable.DeletedAt)
	return repository.execAffected(context, "delete user", query, id)
}

func (repository *postgresRepository) Restore(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NULL, %s = NOW() WHERE %s = $1 AND %s IS NOT NULL`,
		accountTable.Table, accountTable.DeletedAt, accountTable.UpdatedAt, accountTable.ID, accountTable.DeletedAt)
	return repository.execAffected(context, "restore user", query, id)
}

func (repository *postgresRepository) execAffected(context context.Context, action, query string, args ...any) (bool, error) {
	result, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return false, dberr.Wrap(err, action)
	}
	return result.RowsAffected() > 0, nil
}

// # Uniqueness

func (repository *postgresRepository) UsernameExists(context context.Context, username string, excludeID int64) (bool, error) {
	return repository.exists(context, accountTable.Username, username, excludeID)
}

func (repository *postgresRepository) EmailExists(context context.Context, email string, excludeID int64) (bool, error) {
	return repository.exists(context, accountTable.Email, email, excludeID)
}

func (repository *postgresRepository) exists(context context.Context, column, value string, excludeID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s <> $2)`,
		accountTable.Table, column, accountTable.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, value, excludeID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "check user "+column)
	}
	return exists, nil
}

// # Row Mapping

func scanUser(row pgx.Row) (*User, error) {
	var user User
	var role string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.Avatar,
		&user.Bio,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = sec.Role(role)
	return &user, nil
}
