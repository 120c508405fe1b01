// Package repomanager wires repository constructors to a database backend and
// applies that backend's embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pinkeeper/internal/dbx"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/credentials"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Attempts(db dbx.DBTX) attempts.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}
