package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pinkeeper/internal/lockout"
	"github.com/dmitrijs2005/pinkeeper/internal/server/config"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/repomanager"
)

// stores is what the step-up service runs on for the configured backend.
type stores struct {
	attempts    attempts.Repository
	credentials credentials.Repository
	serializer  lockout.Serializer
	closers     []func() error
}

func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// openStores connects the configured backend and applies its migrations.
// Credentials live in PostgreSQL for the postgres backend and in the SQLite
// file otherwise; the memory backend only keeps the attempt ledger in memory.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.LedgerBackend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg.DatabaseDSN)
	case config.BackendSQLite, config.BackendMemory:
		return openSQLite(ctx, cfg.SQLitePath, cfg.LedgerBackend == config.BackendMemory)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

func openPostgres(ctx context.Context, dsn string) (*stores, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &stores{
		attempts:    m.Attempts(db),
		credentials: m.Credentials(db),
		serializer:  m,
		closers:     []func() error{db.Close},
	}, nil
}

func openSQLite(ctx context.Context, path string, memoryLedger bool) (*stores, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	// One writer at a time; SQLite would otherwise report SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	m := repomanager.NewSQLiteRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	s := &stores{
		attempts:    m.Attempts(db),
		credentials: m.Credentials(db),
		closers:     []func() error{db.Close},
	}
	if memoryLedger {
		mem := attempts.NewMemoryRepository()
		s.attempts = mem
		s.closers = append(s.closers, func() error { mem.Close(); return nil })
	}
	return s, nil
}
