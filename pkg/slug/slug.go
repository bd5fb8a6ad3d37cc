// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs for catalog entries.
//
// # Usage
//
// Manga slugs are derived from titles ("Test Saga" → "test-saga") and chapter
// slugs nest under their manga ("test-saga/chapter-1-5-the-start"). Both are
// pure functions: uniqueness is enforced by the store, never here.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlphanumeric matches any run of characters outside [a-z0-9].
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
//  1. Normalizes to NFD (é → e + combining acute) and drops combining marks.
//  2. Converts to lowercase.
//  3. Collapses every run of characters outside [a-z0-9] into one hyphen.
//  4. Trims leading/trailing hyphens.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// Chapter builds the slug of a chapter nested under its manga.
//
// The number is written in its shortest form with the decimal point turned
// into a hyphen (1.5 → "1-5", 2.0 → "2"). The title segment is appended only
// when the title produces a non-empty slug.
func Chapter(mangaSlug string, number float64, title string) string {
	segment := strings.ReplaceAll(FormatNumber(number), ".", "-")

	var builder strings.Builder
	builder.WriteString(mangaSlug)
	builder.WriteString("/chapter-")
	builder.WriteString(segment)

	if titleSlug := From(title); titleSlug != "" {
		builder.WriteString("-")
		builder.WriteString(titleSlug)
	}

	return builder.String()
}

// FormatNumber writes a chapter number in its shortest decimal form (2 → "2", 1.5 → "1.5").
func FormatNumber(number float64) string {
	return strconv.FormatFloat(number, 'f', -1, 64)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
