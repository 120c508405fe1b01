package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pinkeeper/internal/dbx"
	sqlitemigrations "github.com/dmitrijs2005/pinkeeper/internal/server/migrations/sqlite"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/credentials"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends repositories over a local SQLite file. A
// single process owns the file, so no cross-process serialisation is offered.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Attempts(db dbx.DBTX) attempts.Repository {
	return attempts.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(sqlitemigrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
