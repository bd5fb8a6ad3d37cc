// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library tracks what each user follows and how far they have read.

A bookmark is a (user, manga) pair. Reading progress keeps one row per
(user, chapter); recording progress again moves that row to the front of the
history instead of adding a new one.
*/
package library

import (
	"time"
)

// Bookmark is a manga saved by a user.
type Bookmark struct {
	MangaID    int64     `json:"manga_id"`
	MangaTitle string    `json:"manga_title"`
	MangaSlug  string    `json:"manga_slug"`
	CreatedAt  time.Time `json:"created_at"`
}

// Progress is the last position a user reached in a chapter.
type Progress struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	MangaID       int64     `json:"manga_id"`
	ChapterID     int64     `json:"chapter_id"`
	ChapterNumber float64   `json:"chapter_number"`
	PageNumber    int       `json:"page_number"`
	LastReadAt    time.Time `json:"last_read_at"`
}
