package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/dbx"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
)

// SQLiteRepository keeps attempt records in a local SQLite file, which scopes
// throttling to the device that owns the file. Timestamps are stored as Unix
// nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, principalID string) (*models.AttemptRecord, error) {
	var (
		rec         = &models.AttemptRecord{}
		lockedUntil sql.NullInt64
		lastAttempt int64
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT principal_id, failure_count, locked_until_ns, last_attempt_ns FROM pin_attempts WHERE principal_id = ?`,
		principalID,
	).Scan(&rec.PrincipalID, &rec.FailureCount, &lockedUntil, &lastAttempt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get attempts[%s]: %w", principalID, err)
	}

	rec.LastAttemptAt = time.Unix(0, lastAttempt).UTC()
	if lockedUntil.Valid {
		t := time.Unix(0, lockedUntil.Int64).UTC()
		rec.LockedUntil = &t
	}
	return rec, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, rec *models.AttemptRecord) error {
	var lockedUntil sql.NullInt64
	if rec.LockedUntil != nil {
		lockedUntil = sql.NullInt64{Int64: rec.LockedUntil.UnixNano(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pin_attempts (principal_id, failure_count, locked_until_ns, last_attempt_ns)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(principal_id) DO UPDATE SET
			failure_count = excluded.failure_count,
			locked_until_ns = excluded.locked_until_ns,
			last_attempt_ns = excluded.last_attempt_ns
	`, rec.PrincipalID, rec.FailureCount, lockedUntil, rec.LastAttemptAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to put attempts[%s]: %w", rec.PrincipalID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, principalID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pin_attempts WHERE principal_id = ?`, principalID); err != nil {
		return fmt.Errorf("failed to delete attempts[%s]: %w", principalID, err)
	}
	return nil
}
