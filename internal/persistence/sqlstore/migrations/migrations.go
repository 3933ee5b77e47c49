// Package migrations embeds the goose migrations for both SQL dialects.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
