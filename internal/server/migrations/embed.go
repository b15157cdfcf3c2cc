// Package migrations embeds the identity service PostgreSQL schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
