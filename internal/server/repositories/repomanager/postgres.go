package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pinkeeper/internal/dbx"
	"github.com/dmitrijs2005/pinkeeper/internal/server/migrations/postgres"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/credentials"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. Because the
// attempt ledger may be shared by several server processes, it also
// serialises work per principal with a transaction-scoped advisory lock.
type PostgresRepositoryManager struct {
	db *sql.DB
}

func NewPostgresRepositoryManager(db *sql.DB) (*PostgresRepositoryManager, error) {
	return &PostgresRepositoryManager{db: db}, nil
}

func (m *PostgresRepositoryManager) Attempts(db dbx.DBTX) attempts.Repository {
	return attempts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(postgres.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Serialize runs fn in a transaction holding the advisory lock for
// principalID. fn receives an attempts repository bound to that transaction.
//
// The transaction itself is not tied to ctx: once fn has written, a caller
// going away must not roll the write back. Waiting for the lock still
// honours ctx.
func (m *PostgresRepositoryManager) Serialize(
	ctx context.Context,
	principalID string,
	fn func(ctx context.Context, repo attempts.Repository) error,
) error {
	return dbx.WithTx(context.WithoutCancel(ctx), m.db, nil, func(_ context.Context, tx dbx.DBTX) error {
		repo := attempts.NewPostgresRepository(tx)
		if err := repo.LockPrincipal(ctx, principalID); err != nil {
			return fmt.Errorf("lock principal: %w", err)
		}
		return fn(ctx, repo)
	})
}
