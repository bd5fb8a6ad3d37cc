// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/cache"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/slug"
)

const (
	FieldName = "name"

	maxNameLength = 100
)

// # Service Layer

// Service lists and creates reference terms. Term lists are read-mostly and
// cached whole per kind.
type Service struct {
	repository Repository
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewService constructs a new taxonomy [Service].
func NewService(repository Repository, readCache *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repository: repository, cache: readCache, logger: logger}
}

// ListCategories returns every category ordered by name.
func (service *Service) ListCategories(context stdctx.Context) ([]*Term, error) {
	return service.List(context, KindCategory)
}

// ListTags returns every tag ordered by name.
func (service *Service) ListTags(context stdctx.Context) ([]*Term, error) {
	return service.List(context, KindTag)
}

// CreateCategory adds a category; the slug is derived from the name.
func (service *Service) CreateCategory(context stdctx.Context, name string) (*Term, error) {
	return service.Create(context, KindCategory, name)
}

// CreateTag adds a tag; the slug is derived from the name.
func (service *Service) CreateTag(context stdctx.Context, name string) (*Term, error) {
	return service.Create(context, KindTag, name)
}

// List returns all terms of kind.
func (service *Service) List(context stdctx.Context, kind Kind) ([]*Term, error) {
	return cache.Remember(context, service.cache, cache.TaxonomyKey(string(kind)), service.cache.TTL(), func(context stdctx.Context) ([]*Term, error) {
		return service.repository.List(context, kind)
	})
}

// GetBySlug returns one term or NOT_FOUND.
func (service *Service) GetBySlug(context stdctx.Context, kind Kind, termSlug string) (*Term, error) {
	term, err := service.repository.FindBySlug(context, kind, termSlug)
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, apperr.NotFound(kind.Label())
	}
	return term, nil
}

/*
Create adds a term of kind named name.

Returns:
  - *Term
  - error: VALIDATION_ERROR for an empty or unsluggable name, CONFLICT when
    the slug is already used
*/
func (service *Service) Create(context stdctx.Context, kind Kind, name string) (*Term, error) {
	term := &Term{Name: strings.TrimSpace(name)}
	term.Slug = slug.From(term.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, term.Name).
		MaxLen(FieldName, term.Name, maxNameLength).
		Custom(FieldName, term.Name != "" && term.Slug == "", "Must contain at least one letter or digit")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.repository.FindBySlug(context, kind, term.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(fmt.Sprintf("%s '%s' already exists", kind.Label(), term.Slug))
	}

	if err := service.repository.Create(context, kind, term); err != nil {
		return nil, err
	}

	service.cache.Invalidate(context, []string{cache.TaxonomyKey(string(kind))})
	service.logger.Info("taxonomy_term_created",
		slog.String("kind", string(kind)),
		slog.Int64("term_id", term.ID),
		slog.String("slug", term.Slug),
	)

	return term, nil
}
