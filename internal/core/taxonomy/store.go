// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import "context"

// Repository defines the persistence contract for reference terms.
type Repository interface {
	// List returns every term of a kind ordered by name.
	List(context context.Context, kind Kind) ([]*Term, error)

	// FindBySlug returns (nil, nil) when no term matches.
	FindBySlug(context context.Context, kind Kind, slug string) (*Term, error)

	// Create inserts a term; a duplicate slug is a CONFLICT.
	Create(context context.Context, kind Kind, term *Term) error
}
