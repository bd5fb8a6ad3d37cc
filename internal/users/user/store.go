// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	"context"

	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// # Repository Contracts

// Repository defines the persistence contract for accounts.
// Single-row lookups return (nil, nil) when nothing matches.
type Repository interface {
	FindByID(context context.Context, id int64, scope softdelete.Scope) (*User, error)
	FindByUsername(context context.Context, username string, scope softdelete.Scope) (*User, error)
	FindByEmail(context context.Context, email string, scope softdelete.Scope) (*User, error)

	// List returns users ordered by newest first.
	List(context context.Context, filter Filter, params pagination.Params) (pagination.Page[*User], error)

	/*
		Save inserts (ID 0) or updates an account.

		Returns:
		  - error: CONFLICT on a duplicate username or email, NOT_FOUND on update of a missing id
	*/
	Save(context context.Context, user *User) error

	Delete(context context.Context, id int64) (bool, error)
	Restore(context context.Context, id int64) (bool, error)

	// UsernameExists and EmailExists consider deleted accounts too, since the
	// unique constraints do.
	UsernameExists(context context.Context, username string, excludeID int64) (bool, error)
	EmailExists(context context.Context, email string, excludeID int64) (bool, error)
}
