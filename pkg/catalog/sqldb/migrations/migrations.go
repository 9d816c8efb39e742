// Package migrations embeds the PostgreSQL schema of the SQL catalog.
package migrations

import "embed"

// FS holds the golang-migrate migration files.
//
//go:embed *.sql
var FS embed.FS
