// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package user manages registered accounts: creation with unique username and
email, profile changes, role assignment and the soft-delete lifecycle.

# Architecture

  - Entities: User, Changes, Filter.
  - Persistence: users.account through [Repository].
  - Policy: every write is checked against the acting caller with the
    capability functions of the sec package.
*/
package user

import (
	"time"

	"github.com/taibuivan/mangashelf/internal/platform/sec"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
)

// # Domain Entities

// User represents a registered member.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         sec.Role   `json:"role"`
	Avatar       string     `json:"avatar,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// IsNew reports whether the user has never been persisted.
func (u *User) IsNew() bool { return u.ID == 0 }

// State returns the soft-delete lifecycle stage.
func (u *User) State() softdelete.State { return softdelete.StateOf(u.DeletedAt) }

func (u *User) touch() { u.UpdatedAt = time.Now().UTC() }

// ChangeRole assigns a new role.
func (u *User) ChangeRole(role sec.Role) {
	u.Role = role
	u.touch()
}

// SetPasswordHash replaces the stored bcrypt hash.
func (u *User) SetPasswordHash(hash string) {
	u.PasswordHash = hash
	u.touch()
}

// Actor is the caller performing a user action.
type Actor struct {
	ID   int64
	Role sec.Role
}

// ActorFromClaims builds an [Actor] from verified token claims. Nil claims
// give the anonymous actor.
func ActorFromClaims(claims *sec.AuthClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{ID: claims.UserID, Role: claims.Role}
}

// Changes is a partial profile update. Only non-nil fields are applied;
// Password is hashed by the service, never stored as given.
type Changes struct {
	Username *string   `json:"username"`
	Email    *string   `json:"email"`
	Password *string   `json:"password"`
	Role     *sec.Role `json:"role"`
	Avatar   *string   `json:"avatar"`
	Bio      *string   `json:"bio"`
}

// Apply merges the plain fields of changes. Password and Role are handled by the service.
func (u *User) Apply(changes Changes) {
	if changes.Username != nil {
		u.Username = *changes.Username
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.Avatar != nil {
		u.Avatar = *changes.Avatar
	}
	if changes.Bio != nil {
		u.Bio = *changes.Bio
	}
	u.touch()
}

// Filter narrows [Repository.List].
type Filter struct {
	Role  *sec.Role
	Scope softdelete.Scope
}
