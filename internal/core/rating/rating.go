// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package rating stores per-user manga scores and keeps the manga's derived
// average in step with them.
package rating

import (
	"time"
)

// Score bounds. Out-of-range scores are clamped, not rejected.
const (
	MinScore = 1.0
	MaxScore = 5.0
)

// Rating is one user's score for one manga.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MangaID   int64     `json:"manga_id"`
	Score     float64   `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds a rating with its score clamped into [MinScore, MaxScore].
func New(userID, mangaID int64, score float64, comment string) *Rating {
	rating := &Rating{UserID: userID, MangaID: mangaID, Comment: comment}
	rating.SetScore(score)
	return rating
}

// SetScore stores score clamped into [MinScore, MaxScore].
func (r *Rating) SetScore(score float64) {
	r.Score = ClampScore(score)
	r.UpdatedAt = time.Now().UTC()
}

// ClampScore limits score to [MinScore, MaxScore].
func ClampScore(score float64) float64 {
	return min(max(score, MinScore), MaxScore)
}
