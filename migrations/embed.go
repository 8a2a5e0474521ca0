// Package migrations embeds the SQLite schema applied at start-up.
package migrations

import "embed"

// FS holds every NNN_name.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
