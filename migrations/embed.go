// Package migrations embeds the SQL migration files so they ship inside the
// server binary and run at boot.
package migrations

import "embed"

//go:embed *.sql
var MigrationsFS embed.FS
