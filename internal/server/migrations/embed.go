// Package migrations embeds the goose SQL migrations for the server schema
// and the catalog seed data.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
