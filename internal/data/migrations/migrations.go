// Package migrations holds the database schema of the node registry.
package migrations

import _ "embed"

var (
	//go:embed sqlite/initial_tables.sql
	SQLite string

	//go:embed postgres/initial_tables.sql
	Postgres string
)
