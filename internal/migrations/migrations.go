// Package migrations holds the bun migration registry. Each migration file
// registers itself in init; the db cobra subcommands drive the migrator.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry consumed by migrate.NewMigrator.
var Migrations = migrate.NewMigrations()
