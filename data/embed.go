// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package data embeds the SQL schema migrations shipped with the binary.
package data

import "embed"

// MigrationsDir is the directory inside [Migrations] holding the .sql files.
const MigrationsDir = "migrations"

// Migrations holds the golang-migrate up/down scripts.
//
//go:embed migrations/*.sql
var Migrations embed.FS
