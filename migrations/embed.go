package migrations

import "embed"

// FS holds the SQL migrations, applied in filename order by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
