// Package migrations embeds the SQL schema migrations applied by cmd/migrate
// and by the postgres integration tests.
package migrations

import "embed"

// FS holds every <version>_<name>.{up,down}.sql file
//
//go:embed *.sql
var FS embed.FS
