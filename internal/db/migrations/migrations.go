// Package migrations embeds the goose SQL migration set for the core schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
