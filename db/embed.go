// Package db embeds the SQL migrations applied by cmd/migrate.
package db

import "embed"

// Migrations holds goose migrations under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"
