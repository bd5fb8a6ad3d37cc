// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package usertest provides an in-memory [user.Repository] for service tests.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/internal/users/user"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Repository is a map-backed [user.Repository].
type Repository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*user.User
}

// New returns an empty repository.
func New() *Repository {
	return &Repository{rows: map[int64]*user.User{}}
}

var _ user.Repository = (*Repository)(nil)

// Seed stores u as-is (assigning an id when zero) and returns its id.
func (repository *Repository) Seed(u user.User) int64 {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if u.ID == 0 {
		repository.nextID++
		u.ID = repository.nextID
	} else if u.ID > repository.nextID {
		repository.nextID = u.ID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC().Add(time.Duration(u.ID) * time.Millisecond)
		u.UpdatedAt = u.CreatedAt
	}
	copied := u
	repository.rows[u.ID] = &copied
	return u.ID
}

func visible(u *user.User, scope softdelete.Scope) bool {
	return scope == softdelete.IncludeDeleted || u.DeletedAt == nil
}

func (repository *Repository) FindByID(_ context.Context, id int64, scope softdelete.Scope) (*user.User, error) {
	return repository.first(func(u *user.User) bool { return u.ID == id && visible(u, scope) })
}

func (repository *Repository) FindByUsername(_ context.Context, username string, scope softdelete.Scope) (*user.User, error) {
	return repository.first(func(u *user.User) bool { return u.Username == username && visible(u, scope) })
}

func (repository *Repository) FindByEmail(_ context.Context, email string, scope softdelete.Scope) (*user.User, error) {
	return repository.first(func(u *user.User) bool { return u.Email == email && visible(u, scope) })
}

func (repository *Repository) List(_ context.Context, filter user.Filter, params pagination.Params) (pagination.Page[*user.User], error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	all := []*user.User{}
	for _, u := range repository.rows {
		if visible(u, filter.Scope) && (filter.Role == nil || u.Role == *filter.Role) {
			copied := *u
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := min(params.Offset(), len(all))
	end := min(start+params.Limit(), len(all))
	return pagination.NewPage(all[start:end], len(all), params), nil
}

func (repository *Repository) Save(_ context.Context, u *user.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for id, existing := range repository.rows {
		if id != u.ID && (existing.Username == u.Username || existing.Email == u.Email) {
			return apperr.Conflict("A user with this username or email already exists")
		}
	}

	now := time.Now().UTC()
	if u.IsNew() {
		repository.nextID++
		u.ID = repository.nextID
		u.CreatedAt = now
	} else {
		existing, ok := repository.rows[u.ID]
		if !ok {
			return apperr.NotFound("User")
		}
		u.CreatedAt = existing.CreatedAt
		u.DeletedAt = existing.DeletedAt
	}
	u.UpdatedAt = now

	copied := *u
	repository.rows[u.ID] = &copied
	return nil
}

func (repository *Repository) Delete(_ context.Context, id int64) (bool, error) {
	return repository.mutate(id, func(u *user.User) bool {
		if u.DeletedAt != nil {
			return false
		}
		now := time.Now().UTC()
		u.DeletedAt = &now
		return true
	})
}

func (repository *Repository) Restore(_ context.Context, id int64) (bool, error) {
	return repository.mutate(id, func(u *user.User) bool {
		if u.DeletedAt == nil {
			return false
		}
		u.DeletedAt = nil
		return true
	})
}

func (repository *Repository) UsernameExists(_ context.Context, username string, excludeID int64) (bool, error) {
	found, _ := repository.first(func(u *user.User) bool { return u.Username == username && u.ID != excludeID })
	return found != nil, nil
}

func (repository *Repository) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	found, _ := repository.first(func(u *user.User) bool { return u.Email == email && u.ID != excludeID })
	return found != nil, nil
}

func (repository *Repository) mutate(id int64, apply func(*user.User) bool) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	u, ok := repository.rows[id]
	if !ok {
		return false, nil
	}
	return apply(u), nil
}

func (repository *Repository) first(keep func(*user.User) bool) (*user.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, u := range repository.rows {
		if keep(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}
