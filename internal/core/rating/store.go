// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"

	"github.com/taibuivan/mangashelf/pkg/pagination"
)

// Repository defines the persistence contract for ratings.
type Repository interface {
	// Upsert inserts or replaces the (user, manga) rating and fills ID and timestamps.
	Upsert(context context.Context, rating *Rating) error

	// Find returns (nil, nil) when the user has not rated the manga.
	Find(context context.Context, userID, mangaID int64) (*Rating, error)

	// Delete reports whether a rating was removed.
	Delete(context context.Context, userID, mangaID int64) (bool, error)

	// ListForManga returns ratings newest first.
	ListForManga(context context.Context, mangaID int64, params pagination.Params) (pagination.Page[*Rating], error)
}
