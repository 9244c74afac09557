package migrations

import "embed"

// FS contains embedded SQLite migrations for tape storage.
//
//go:embed *.sql
var FS embed.FS
