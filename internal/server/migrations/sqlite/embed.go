// Package sqlite embeds the goose migrations for the device-local SQLite
// database: the attempt ledger plus a local profiles table for standalone
// installs.
package sqlite

import "embed"

//go:embed *.sql
var Migrations embed.FS
