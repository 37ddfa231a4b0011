// Package migrations embeds the goose SQL migrations of the directory schema.
// The statements stick to the SQL subset shared by PostgreSQL and SQLite so
// the same files serve production and in-memory tests.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
