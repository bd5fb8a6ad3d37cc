// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mangashelf/internal/core/manga"
	"github.com/taibuivan/mangashelf/internal/platform/softdelete"
)

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, manga.StatusOngoing.IsValid())
	assert.True(t, manga.StatusCompleted.IsValid())
	assert.True(t, manga.StatusHiatus.IsValid())
	assert.False(t, manga.Status("cancelled").IsValid())
	assert.False(t, manga.Status("").IsValid())
}

/*
TestManga_MutationsTouchUpdatedAt verifies every mutation refreshes UpdatedAt.
*/
func TestManga_MutationsTouchUpdatedAt(t *testing.T) {
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	mutations := map[string]func(*manga.Manga){
		"rename":          func(m *manga.Manga) { m.Rename("New") },
		"status":          func(m *manga.Manga) { m.SetStatus(manga.StatusHiatus) },
		"publish":         func(m *manga.Manga) { m.Publish() },
		"unpublish":       func(m *manga.Manga) { m.Unpublish() },
		"feature":         func(m *manga.Manga) { m.Feature(true) },
		"attach category": func(m *manga.Manga) { m.AttachCategory(3) },
		"detach category": func(m *manga.Manga) { m.DetachCategory(1) },
		"attach tag":      func(m *manga.Manga) { m.AttachTag(3) },
		"detach tag":      func(m *manga.Manga) { m.DetachTag(1) },
		"apply":           func(m *manga.Manga) { m.Apply(manga.Changes{}) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			m := &manga.Manga{ID: 1, Categories: []int64{1}, Tags: []int64{1}, UpdatedAt: past}
			mutate(m)
			assert.True(t, m.UpdatedAt.After(past))
		})
	}
}

func TestManga_AttachIsIdempotent(t *testing.T) {
	m := &manga.Manga{}
	m.AttachCategory(2)
	m.AttachCategory(2)
	m.AttachTag(5)
	m.AttachTag(5)

	assert.Equal(t, []int64{2}, m.Categories)
	assert.Equal(t, []int64{5}, m.Tags)

	m.DetachCategory(2)
	assert.Empty(t, m.Categories)
}

func TestManga_Apply(t *testing.T) {
	title := "Renamed"
	status := manga.StatusCompleted
	published := false
	tags := []int64{7, 8}

	m := &manga.Manga{ID: 4, Title: "Old", Slug: "old", Description: "keep", Status: manga.StatusOngoing, IsPublished: true}
	m.Apply(manga.Changes{Title: &title, Status: &status, IsPublished: &published, Tags: &tags})

	assert.Equal(t, "Renamed", m.Title)
	assert.Equal(t, "old", m.Slug, "slug is never regenerated by a rename")
	assert.Equal(t, "keep", m.Description)
	assert.Equal(t, manga.StatusCompleted, m.Status)
	assert.False(t, m.IsPublished)
	assert.Equal(t, []int64{7, 8}, m.Tags)

	tags[0] = 99
	assert.Equal(t, int64(7), m.Tags[0], "applied slices are copied")
}

func TestManga_State(t *testing.T) {
	m := &manga.Manga{}
	assert.True(t, m.IsNew())
	assert.Equal(t, softdelete.Active, m.State())

	now := time.Now()
	m.DeletedAt = &now
	assert.Equal(t, softdelete.Deleted, m.State())
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%saga%", manga.ContainsPattern("saga"))
	assert.Equal(t, `%100\%\_off%`, manga.ContainsPattern("100%_off"))
}
