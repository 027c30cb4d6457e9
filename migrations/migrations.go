// Package migrations embeds the PostgreSQL schema migrations in
// golang-migrate's NNN_name.{up,down}.sql layout.
package migrations

import "embed"

// FS holds every migration file.
//
//go:embed *.sql
var FS embed.FS
