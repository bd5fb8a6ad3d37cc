// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package user

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/cache"
	"github.com/taibuivan/mangashelf/internal/platform/events"
	"github.com/taibuivan/mangashelf/internal/platform/sec"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/pagination"
	"github.com/taibuivan/mangashelf/pkg/pointer"
)

// # Field Identifiers

const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
	FieldBio      = "bio"

	minPasswordLength = 8
	maxPasswordBytes  = 72
	maxBioLength      = 1000
)

var errForbidden = apperr.Forbidden("Insufficient permissions")

// # Service Layer

// Service orchestrates account business rules.
type Service struct {
	repository Repository
	cache      *cache.Cache
	events     events.Sink
	logger     *slog.Logger
	hash       func(string) (string, error)
}

// NewService constructs a new user [Service]. Passwords are hashed with
// bcrypt at its default cost.
func NewService(repository Repository, readCache *cache.Cache, sink events.Sink, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      readCache,
		events:     sink,
		logger:     logger,
		hash:       sec.HashPassword,
	}
}

// WithHashCost switches the bcrypt cost, used by tests to keep hashing fast.
func (service *Service) WithHashCost(cost int) *Service {
	service.hash = func(password string) (string, error) {
		return sec.HashPasswordWithCost(password, cost)
	}
	return service
}

// # Queries

// Get returns an active account by id.
func (service *Service) Get(context stdctx.Context, id int64) (*User, error) {
	return cache.Remember(context, service.cache, cache.UserKey(id), service.cache.TTL(), func(context stdctx.Context) (*User, error) {
		return mustFind(service.repository.FindByID(context, id, softdelete.ExcludeDeleted))
	})
}

// GetByUsername returns an active account by username.
func (service *Service) GetByUsername(context stdctx.Context, username string) (*User, error) {
	return mustFind(service.repository.FindByUsername(context, username, softdelete.ExcludeDeleted))
}

// GetByEmail returns an active account by email. Emails are compared lowercased.
func (service *Service) GetByEmail(context stdctx.Context, email string) (*User, error) {
	return mustFind(service.repository.FindByEmail(context, normalizeEmail(email), softdelete.ExcludeDeleted))
}

// List returns accounts newest first. Only listing roles may call it.
func (service *Service) List(context stdctx.Context, actor Actor, filter Filter, params pagination.Params) (pagination.Page[*User], error) {
	if !sec.CanListUsers(actor.Role) {
		return pagination.Page[*User]{}, errForbidden
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return pagination.Page[*User]{}, validate.FieldErr(FieldRole, "Must be one of: "+strings.Join(sec.RoleStrings(), ", "))
	}
	if filter.Scope == softdelete.IncludeDeleted && !sec.CanRestoreUser(actor.Role) {
		filter.Scope = softdelete.ExcludeDeleted
	}
	return service.repository.List(context, filter, params)
}

// ListByRole is [Service.List] narrowed to one role.
func (service *Service) ListByRole(context stdctx.Context, actor Actor, role sec.Role, params pagination.Params) (pagination.Page[*User], error) {
	return service.List(context, actor, Filter{Role: &role}, params)
}

// # Actions

// CreateInput carries the registration fields.
type CreateInput struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     sec.Role `json:"role"`
	Avatar   string   `json:"avatar"`
	Bio      string   `json:"bio"`
}

/*
Create registers a new account.

Description: Validates the input, rejects a taken username or email with a
CONFLICT naming the value, hashes the password with bcrypt and saves. The
role defaults to user; any other role can only be granted by an admin.

Parameters:
  - context: context.Context
  - actor: Actor (anonymous for self-registration)
  - input: CreateInput

Returns:
  - *User
  - error: VALIDATION_ERROR, FORBIDDEN, CONFLICT or storage errors
*/
func (service *Service) Create(context stdctx.Context, actor Actor, input CreateInput) (*User, error) {
	if input.Role == "" {
		input.Role = sec.RoleUser
	}
	if input.Role != sec.RoleUser && actor.Role != sec.RoleAdmin {
		return nil, errForbidden
	}

	user := &User{
		Username: strings.TrimSpace(input.Username),
		Email:    normalizeEmail(input.Email),
		Role:     input.Role,
		Avatar:   input.Avatar,
		Bio:      input.Bio,
	}

	validator := validateUser(user)
	validatePassword(validator, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.ensureUnique(context, user); err != nil {
		return nil, err
	}

	hash, err := service.hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user.PasswordHash = hash

	if err := service.repository.Save(context, user); err != nil {
		return nil, err
	}

	service.events.Emit(context, events.New(events.UserCreated, user.ID, user))
	service.logger.Info("user_created",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)

	return user, nil
}

/*
Update applies changes to the account named by username.

Description: The account is resolved first (NOT_FOUND), then the actor is
checked with [sec.CanUpdateUser]. Role changes additionally require an
admin. Username and email uniqueness is re-checked excluding the account
itself.
*/
func (service *Service) Update(context stdctx.Context, actor Actor, username string, changes Changes) (*User, error) {
	user, err := mustFind(service.repository.FindByUsername(context, username, softdelete.ExcludeDeleted))
	if err != nil {
		return nil, err
	}

	if !sec.CanUpdateUser(actor.Role, actor.ID, user.Role, user.ID) {
		return nil, errForbidden
	}
	if pointer.Changed(changes.Role, user.Role) && actor.Role != sec.RoleAdmin {
		return nil, errForbidden
	}

	if changes.Email != nil {
		email := normalizeEmail(*changes.Email)
		changes.Email = &email
	}
	user.Apply(changes)
	if changes.Role != nil {
		user.ChangeRole(*changes.Role)
	}

	validator := validateUser(user)
	if changes.Password != nil {
		validatePassword(validator, *changes.Password)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.ensureUnique(context, user); err != nil {
		return nil, err
	}

	if changes.Password != nil {
		hash, err := service.hash(*changes.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		user.SetPasswordHash(hash)
	}

	if err := service.repository.Save(context, user); err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, []string{cache.UserKey(user.ID)})
	service.events.Emit(context, events.New(events.UserUpdated, user.ID, user))
	service.logger.Info("user_updated", slog.Int64("user_id", user.ID), slog.Int64("actor_id", actor.ID))

	return user, nil
}

// Delete soft-deletes the account named by username, subject to [sec.CanDeleteUser].
func (service *Service) Delete(context stdctx.Context, actor Actor, username string) (bool, error) {
	user, err := mustFind(service.repository.FindByUsername(context, username, softdelete.ExcludeDeleted))
	if err != nil {
		return false, err
	}

	if !sec.CanDeleteUser(actor.Role, actor.ID, user.Role, user.ID) {
		return false, errForbidden
	}

	deleted, err := service.repository.Delete(context, user.ID)
	if err != nil || !deleted {
		return deleted, err
	}

	service.cache.Invalidate(context, []string{cache.UserKey(user.ID)})
	service.events.Emit(context, events.New(events.UserDeleted, user.ID, map[string]string{"username": user.Username}))
	service.logger.Warn("user_deleted", slog.Int64("user_id", user.ID), slog.Int64("actor_id", actor.ID))

	return true, nil
}

// Restore brings back a soft-deleted account. Admin only.
func (service *Service) Restore(context stdctx.Context, actor Actor, id int64) (bool, error) {
	if !sec.CanRestoreUser(actor.Role) {
		return false, errForbidden
	}

	restored, err := service.repository.Restore(context, id)
	if err != nil || !restored {
		return restored, err
	}

	service.cache.Invalidate(context, []string{cache.UserKey(id)})
	service.events.Emit(context, events.New(events.UserUpdated, id, map[string]string{"mode": "restore"}))
	service.logger.Info("user_restored", slog.Int64("user_id", id), slog.Int64("actor_id", actor.ID))

	return true, nil
}

// # Internal Helpers

func (service *Service) ensureUnique(context stdctx.Context, user *User) error {
	taken, err := service.repository.UsernameExists(context, user.Username, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict(fmt.Sprintf("Username '%s' is already taken", user.Username))
	}

	registered, err := service.repository.EmailExists(context, user.Email, user.ID)
	if err != nil {
		return err
	}
	if registered {
		return apperr.Conflict(fmt.Sprintf("Email '%s' is already registered", user.Email))
	}
	return nil
}

func mustFind(user *User, err error) (*User, error) {
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUser(user *User) *validate.Validator {
	validator := &validate.Validator{}
	validator.Username(FieldUsername, user.Username).
		Email(FieldEmail, user.Email).
		OneOf(FieldRole, string(user.Role), sec.RoleStrings()...).
		MaxLen(FieldBio, user.Bio, maxBioLength)
	return validator
}

// bcrypt rejects input longer than 72 bytes, so the upper bound counts bytes.
func validatePassword(validator *validate.Validator, password string) {
	validator.MinLen(FieldPassword, password, minPasswordLength).
		Custom(FieldPassword, len(password) > maxPasswordBytes, fmt.Sprintf("Maximum %d bytes", maxPasswordBytes))
}
