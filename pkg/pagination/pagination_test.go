// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mangashelf/pkg/pagination"
)

/*
TestNewPage_BeyondLastPage asks for page 3 of a two-page result set.
*/
func TestNewPage_BeyondLastPage(t *testing.T) {
	params := pagination.New(3, 10)
	page := pagination.NewPage[string](nil, 15, params)

	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 15, page.Total)
	assert.Equal(t, 2, page.LastPage)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 10, page.PerPage)
}

func TestLastPage(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 15, 1},
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{45, 15, 3},
		{10, 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pagination.LastPage(tt.total, tt.perPage), "total=%d perPage=%d", tt.total, tt.perPage)
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.New(1, 20).Offset())
	assert.Equal(t, 20, pagination.New(2, 20).Offset())
	assert.Equal(t, 0, pagination.New(-4, 20).Offset())
}

func TestFromRequest_Clamping(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "", 1, pagination.DefaultPerPage},
		{"explicit", "?page=4&per_page=50", 4, 50},
		{"negative_page", "?page=-2", 1, pagination.DefaultPerPage},
		{"oversized", "?per_page=1000", 1, pagination.MaxPerPage},
		{"at_max", "?per_page=100", 1, pagination.MaxPerPage},
		{"zero", "?per_page=0", 1, pagination.DefaultPerPage},
		{"garbage", "?page=abc&per_page=x", 1, pagination.DefaultPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/mangas"+tt.query, nil)
			params := pagination.FromRequest(request)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantPerPage, params.PerPage)
		})
	}
}

func TestMap(t *testing.T) {
	page := pagination.NewPage([]int{1, 2}, 12, pagination.New(1, 2))
	mapped := pagination.Map(page, func(n int) int { return n * 10 })

	assert.Equal(t, []int{10, 20}, mapped.Data)
	assert.Equal(t, 6, mapped.LastPage)
}
