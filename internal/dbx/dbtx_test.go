package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:dbx_tx?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`DROP TABLE IF EXISTS pin_attempts_tx; CREATE TABLE pin_attempts_tx (principal_id TEXT PRIMARY KEY, failure_count INTEGER)`)
	require.NoError(t, err)
	return db
}

func rowCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM pin_attempts_tx`).Scan(&n))
	return n
}

func insert(ctx context.Context, tx DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO pin_attempts_tx (principal_id, failure_count) VALUES (?, 1)`, id)
	return err
}

func TestWithTx_Commit(t *testing.T) {
	db := openDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return insert(ctx, tx, "u1")
	})
	require.NoError(t, err)
	require.Equal(t, 1, rowCount(t, db))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := openDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insert(ctx, tx, "u1"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, rowCount(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openDB(t)

	require.Panics(t, func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insert(ctx, tx, "u1"))
			panic("kaput")
		})
	})
	require.Equal(t, 0, rowCount(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Close()) // соединение закрыто, BeginTx должен упасть

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}
