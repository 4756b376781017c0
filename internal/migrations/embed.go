// Package migrations embeds the goose SQL migrations for every supported
// dialect. Each dialect has its own directory inside the FS.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
