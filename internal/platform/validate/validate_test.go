// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/mangashelf/internal/platform/apperr"
	"github.com/taibuivan/mangashelf/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Test Saga", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("username", "tai").
		MinLen("username", "tai", 3).
		MaxLen("username", "tai", 10).
		Email("email", "tai@mangashelf.app").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("username", "").       // Fails
		MinLen("username", "a", 5).     // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}

/*
TestValidator_CatalogRules covers the id, slug, username and enum rules used by catalog actions.
*/
func TestValidator_CatalogRules(t *testing.T) {
	author := int64(0)

	tests := []struct {
		name  string
		apply func(v *validate.Validator)
		field string
	}{
		{"zero_id", func(v *validate.Validator) { v.PositiveID("manga_id", 0) }, "manga_id"},
		{"zero_optional_id", func(v *validate.Validator) { v.OptionalPositiveID("author_id", &author) }, "author_id"},
		{"negative_number", func(v *validate.Validator) { v.NonNegative("chapter_number", -1) }, "chapter_number"},
		{"bad_slug", func(v *validate.Validator) { v.Slug("slug", "Not A Slug") }, "slug"},
		{"edge_hyphen_slug", func(v *validate.Validator) { v.Slug("slug", "-test-") }, "slug"},
		{"short_username", func(v *validate.Validator) { v.Username("username", "ab") }, "username"},
		{"spaced_username", func(v *validate.Validator) { v.Username("username", "two words") }, "username"},
		{"unknown_status", func(v *validate.Validator) { v.OneOf("status", "paused", "ongoing", "completed", "hiatus") }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.apply(v)

			ae := apperr.As(v.Err())
			require.NotNil(t, ae)
			require.Len(t, ae.Details, 1)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

func TestValidator_CatalogRules_Pass(t *testing.T) {
	v := &validate.Validator{}
	v.PositiveID("manga_id", 3).
		OptionalPositiveID("author_id", nil).
		NonNegative("chapter_number", 0).
		Slug("slug", "test-saga").
		Username("username", "reader_01").
		OneOf("status", "hiatus", "ongoing", "completed", "hiatus")

	assert.NoError(t, v.Err())
}
