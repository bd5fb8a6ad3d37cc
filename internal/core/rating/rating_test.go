// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{7, MaxScore},
		{-1, MinScore},
		{0, MinScore},
		{1, 1},
		{3.5, 3.5},
		{5, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScore(tt.in), "ClampScore(%v)", tt.in)
	}
}

func TestNew_Clamps(t *testing.T) {
	rating := New(1, 2, 9, "great")
	assert.Equal(t, MaxScore, rating.Score)
	assert.False(t, rating.UpdatedAt.IsZero())
}
