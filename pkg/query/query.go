// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query parses raw query-string values.

Parsing is lenient: malformed input yields the fallback (or nil) rather than
an error. Handlers that must reject bad input validate the raw value first.
*/
package query

import (
	"strconv"
	"strings"

	"github.com/taibuivan/mangashelf/pkg/pointer"
)

// Int parses raw as an int, returning fallback when raw is empty or malformed.
func Int(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return fallback
}

// Int64 parses raw as an int64. Empty or malformed values yield nil.
func Int64(raw string) *int64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return pointer.To(v)
}

// Bool parses raw with [strconv.ParseBool]. Empty or malformed values yield nil.
func Bool(raw string) *bool {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return pointer.To(v)
}

// Strings splits a comma-separated value into trimmed, non-empty parts.
func Strings(raw string) []string {
	if raw == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(part); clean != "" {
			parts = append(parts, clean)
		}
	}
	return parts
}

// IDs parses a comma-separated list of positive identifiers ("1,2,3"),
// skipping entries that are malformed or not positive.
func IDs(raw string) []int64 {
	var ids []int64
	for _, part := range Strings(raw) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
