// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	stdctx "context"
	"log/slog"
	"math"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/events"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
	"github.com/taibuivan/mangashelf/pkg/pagination"
)

const (
	FieldScore   = "score"
	FieldComment = "comment"

	maxCommentLength = 2000
)

// Catalog is the part of the manga service ratings depend on.
type Catalog interface {
	Exists(context stdctx.Context, id int64) (bool, error)
	RefreshRating(context stdctx.Context, mangaID int64) (float64, error)
}

// Service records ratings and refreshes the manga average after every change.
type Service struct {
	repository Repository
	catalog    Catalog
	events     events.Sink
	logger     *slog.Logger
}

// NewService constructs a new rating [Service].
func NewService(repository Repository, catalog Catalog, sink events.Sink, logger *slog.Logger) *Service {
	return &Service{repository: repository, catalog: catalog, events: sink, logger: logger}
}

// Result is the outcome of a rating change.
type Result struct {
	Rating        *Rating `json:"rating,omitempty"`
	AverageRating float64 `json:"average_rating"`
}

/*
Rate stores the user's score for a manga, replacing any previous one.

Description: Scores outside [MinScore, MaxScore] are clamped. The manga's
average is recomputed before returning.

Returns:
  - *Result: the stored rating and the new average
  - error: NOT_FOUND when the manga does not exist
*/
func (service *Service) Rate(context stdctx.Context, userID, mangaID int64, score float64, comment string) (*Result, error) {
	err := (&validate.Validator{}).
		PositiveID("user_id", userID).
		Custom(FieldScore, math.IsNaN(score) || math.IsInf(score, 0), "must be a number").
		MaxLen(FieldComment, comment, maxCommentLength).
		Err()
	if err != nil {
		return nil, err
	}

	if err := service.requireManga(context, mangaID); err != nil {
		return nil, err
	}

	rating := New(userID, mangaID, score, comment)
	if err := service.repository.Upsert(context, rating); err != nil {
		return nil, err
	}

	average, err := service.catalog.RefreshRating(context, mangaID)
	if err != nil {
		return nil, err
	}

	service.events.Emit(context, events.New(events.RatingChanged, mangaID, map[string]any{
		"user_id": userID,
		"score":   rating.Score,
		"average": average,
	}))
	service.logger.Info("rating_saved", slog.Int64("manga_id", mangaID), slog.Int64("user_id", userID), slog.Float64("score", rating.Score))

	return &Result{Rating: rating, AverageRating: average}, nil
}

// Remove deletes the user's rating for a manga and recomputes the average.
func (service *Service) Remove(context stdctx.Context, userID, mangaID int64) (*Result, error) {
	if err := service.requireManga(context, mangaID); err != nil {
		return nil, err
	}

	removed, err := service.repository.Delete(context, userID, mangaID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, apperr.NotFound("Rating")
	}

	average, err := service.catalog.RefreshRating(context, mangaID)
	if err != nil {
		return nil, err
	}

	service.events.Emit(context, events.New(events.RatingChanged, mangaID, map[string]any{
		"user_id": userID,
		"removed": true,
		"average": average,
	}))
	service.logger.Info("rating_removed", slog.Int64("manga_id", mangaID), slog.Int64("user_id", userID))

	return &Result{AverageRating: average}, nil
}

// Mine returns the caller's rating for a manga.
func (service *Service) Mine(context stdctx.Context, userID, mangaID int64) (*Rating, error) {
	rating, err := service.repository.Find(context, userID, mangaID)
	if err != nil {
		return nil, err
	}
	if rating == nil {
		return nil, apperr.NotFound("Rating")
	}
	return rating, nil
}

// ListForManga pages through a manga's ratings, newest first.
func (service *Service) ListForManga(context stdctx.Context, mangaID int64, params pagination.Params) (pagination.Page[*Rating], error) {
	if err := service.requireManga(context, mangaID); err != nil {
		return pagination.Page[*Rating]{}, err
	}
	return service.repository.ListForManga(context, mangaID, params)
}

func (service *Service) requireManga(context stdctx.Context, mangaID int64) error {
	found, err := service.catalog.Exists(context, mangaID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Manga")
	}
	return nil
}
