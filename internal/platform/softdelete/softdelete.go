// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package softdelete models the lifecycle of rows that are retired with a
"deleted at" timestamp instead of being removed.

Entities carry an explicit [State]; repositories receive an explicit [Scope]
and render it into SQL with [Scope.Clause] rather than hard-coding the
"IS NULL" predicate into every query.
*/
package softdelete

import (
	"fmt"
	"time"
)

// # Lifecycle State

// State is the lifecycle stage of a soft-deletable entity.
type State string

const (
	// Active rows are visible to default reads.
	Active State = "active"

	// Deleted rows are retained and restorable until force-deleted.
	Deleted State = "deleted"
)

// StateOf derives the lifecycle state from a nullable deletion timestamp.
func StateOf(deletedAt *time.Time) State {
	if deletedAt == nil {
		return Active
	}
	return Deleted
}

// # Query Scope

// Scope selects whether soft-deleted rows take part in a read.
type Scope int

const (
	// ExcludeDeleted is the default scope for every read.
	ExcludeDeleted Scope = iota

	// IncludeDeleted also returns soft-deleted rows (admin views, restore flows).
	IncludeDeleted
)

// Clause renders the scope as an AND-able SQL fragment for the given column.
//
//	softdelete.ExcludeDeleted.Clause("m.deletedat") // " AND m.deletedat IS NULL"
//	softdelete.IncludeDeleted.Clause("m.deletedat") // ""
func (s Scope) Clause(column string) string {
	if s == IncludeDeleted {
		return ""
	}
	return fmt.Sprintf(" AND %s IS NULL", column)
}
