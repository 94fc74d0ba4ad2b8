// Package migrations embeds the goose SQL migrations for the users, items and
// reservations tables. The server applies them on start when MIGRATE_ON_START
// is set; the integration tests apply them in TestMain.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
