// Package postgres embeds the goose migrations for the server-shared
// PostgreSQL ledger. The profiles table is normally owned by the account
// system; it is created only when missing so a standalone deployment works.
package postgres

import "embed"

//go:embed *.sql
var Migrations embed.FS
