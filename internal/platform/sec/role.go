// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # User Roles

// Role is the closed set of authorization levels an account can hold.
type Role string

const (
	// RoleUser is the default role for registered readers.
	RoleUser Role = "user"

	// RoleTranslator can publish and edit catalog entries.
	RoleTranslator Role = "translator"

	// RoleModerator manages catalog content and regular accounts.
	RoleModerator Role = "mod"

	// RoleAdmin has unrestricted access.
	RoleAdmin Role = "admin"
)

// Roles lists every valid role, lowest privilege first.
var Roles = []Role{RoleUser, RoleTranslator, RoleModerator, RoleAdmin}

// ParseRole converts a raw string into a [Role].
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTranslator, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// RoleStrings returns the declared roles as plain strings (for validation messages).
func RoleStrings() []string {
	names := make([]string, 0, len(Roles))
	for _, role := range Roles {
		names = append(names, string(role))
	}
	return names
}

// # Capabilities

// isStaff reports roles allowed to curate the catalog.
func isStaff(r Role) bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleTranslator
}

// CanViewUnpublished reports whether r may read unpublished manga and chapters.
func CanViewUnpublished(r Role) bool { return isStaff(r) }

// CanCreateCatalog reports whether r may create manga and chapters.
func CanCreateCatalog(r Role) bool { return isStaff(r) }

// CanUpdateCatalog reports whether r may edit manga, chapters and their associations.
func CanUpdateCatalog(r Role) bool { return isStaff(r) }

// CanDeleteCatalog reports whether r may soft-delete catalog entries.
func CanDeleteCatalog(r Role) bool { return r == RoleAdmin }

// CanRestoreCatalog reports whether r may restore soft-deleted catalog entries.
func CanRestoreCatalog(r Role) bool { return r == RoleAdmin }

// CanForceDeleteCatalog reports whether r may permanently remove catalog entries.
func CanForceDeleteCatalog(r Role) bool { return r == RoleAdmin }

// CanListUsers reports whether r may browse the account directory.
func CanListUsers(r Role) bool { return r == RoleAdmin || r == RoleModerator }

// CanUpdateUser reports whether the actor may edit the target account.
//
// Everyone may edit themselves, admins may edit anyone, and moderators may edit
// accounts that are neither admins nor moderators.
func CanUpdateUser(actor Role, actorID int64, target Role, targetID int64) bool {
	if actorID == targetID {
		return true
	}

	switch actor {
	case RoleAdmin:
		return true
	case RoleModerator:
		return target != RoleAdmin && target != RoleModerator
	default:
		return false
	}
}

// CanDeleteUser reports whether the actor may soft-delete the target account.
// Only admins may delete their own account.
func CanDeleteUser(actor Role, actorID int64, target Role, targetID int64) bool {
	if actorID == targetID {
		return actor == RoleAdmin
	}
	return CanUpdateUser(actor, actorID, target, targetID)
}

// CanRestoreUser reports whether r may restore soft-deleted accounts.
func CanRestoreUser(r Role) bool { return r == RoleAdmin }
