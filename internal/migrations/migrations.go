// Package migrations embeds the goose SQL migrations for the collection
// database. repomanager.RunMigrations applies them on open.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
