package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/dbx"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
)

// PostgresRepository keeps attempt records in the pin_attempts table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, principalID string) (*models.AttemptRecord, error) {
	query :=
		`SELECT principal_id, failure_count, locked_until, last_attempt_at FROM pin_attempts
		 WHERE principal_id = $1
		 `

	rec := &models.AttemptRecord{}
	var lockedUntil sql.NullTime

	err := r.db.QueryRowContext(ctx, query, principalID).
		Scan(&rec.PrincipalID, &rec.FailureCount, &lockedUntil, &rec.LastAttemptAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lockedUntil.Valid {
		t := lockedUntil.Time
		rec.LockedUntil = &t
	}
	return rec, nil
}

func (r *PostgresRepository) Put(ctx context.Context, rec *models.AttemptRecord) error {
	query :=
		`INSERT INTO pin_attempts (principal_id, failure_count, locked_until, last_attempt_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (principal_id) DO UPDATE
		 SET failure_count = EXCLUDED.failure_count,
		     locked_until = EXCLUDED.locked_until,
		     last_attempt_at = EXCLUDED.last_attempt_at
		 `

	var lockedUntil sql.NullTime
	if rec.LockedUntil != nil {
		lockedUntil = sql.NullTime{Time: *rec.LockedUntil, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, rec.PrincipalID, rec.FailureCount, lockedUntil, rec.LastAttemptAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, principalID string) error {
	query :=
		`DELETE FROM pin_attempts
		 WHERE principal_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, principalID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// LockPrincipal takes a transaction-scoped advisory lock on principalID.
// It must run inside a transaction; the lock is released on commit or
// rollback, so other servers sharing the database queue behind it.
func (r *PostgresRepository) LockPrincipal(ctx context.Context, principalID string) error {
	query := `SELECT pg_advisory_xact_lock(hashtext($1))`

	if _, err := r.db.ExecContext(ctx, query, principalID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
