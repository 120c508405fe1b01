package attempts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qGet    = `(?s)^SELECT\s+principal_id,\s*failure_count,\s*locked_until,\s*last_attempt_at\s+FROM\s+pin_attempts\s+WHERE\s+principal_id\s*=\s*\$1\s*$`
	qPut    = `(?s)^INSERT\s+INTO\s+pin_attempts\s*\(principal_id,\s*failure_count,\s*locked_until,\s*last_attempt_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*ON\s+CONFLICT\s*\(principal_id\)\s*DO\s+UPDATE.*$`
	qDelete = `(?s)^DELETE\s+FROM\s+pin_attempts\s+WHERE\s+principal_id\s*=\s*\$1\s*$`
	qLock   = `(?s)^SELECT\s+pg_advisory_xact_lock\(hashtext\(\$1\)\)$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresGet_Open(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	last := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"principal_id", "failure_count", "locked_until", "last_attempt_at"}).
		AddRow("u1", 2, nil, last)
	mock.ExpectQuery(qGet).WithArgs("u1").WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.PrincipalID)
	assert.Equal(t, 2, rec.FailureCount)
	assert.Nil(t, rec.LockedUntil)
	assert.True(t, last.Equal(rec.LastAttemptAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_Locked(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	last := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	until := last.Add(15 * time.Minute)

	rows := sqlmock.NewRows([]string{"principal_id", "failure_count", "locked_until", "last_attempt_at"}).
		AddRow("u1", 5, until, last)
	mock.ExpectQuery(qGet).WithArgs("u1").WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, rec.LockedUntil)
	assert.True(t, until.Equal(*rec.LockedUntil))
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qGet).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresGet_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(qGet).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresPut(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	last := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	until := last.Add(15 * time.Minute)

	mock.ExpectExec(qPut).
		WithArgs("u1", 5, sql.NullTime{Time: until, Valid: true}, last).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qPut).
		WithArgs("u2", 1, sql.NullTime{}, last).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(context.Background(), &models.AttemptRecord{
		PrincipalID: "u1", FailureCount: 5, LockedUntil: &until, LastAttemptAt: last,
	}))
	require.NoError(t, repo.Put(context.Background(), &models.AttemptRecord{
		PrincipalID: "u2", FailureCount: 1, LastAttemptAt: last,
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPut_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(qPut).WillReturnError(errors.New("disk full"))

	err := repo.Put(context.Background(), &models.AttemptRecord{PrincipalID: "u1", FailureCount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: disk full")
}

func TestPostgresDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(qDelete).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(qDelete).WithArgs("u1").WillReturnError(errors.New("gone"))

	assert.Error(t, repo.Delete(context.Background(), "u1"))
}

func TestPostgresLockPrincipal(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(qLock).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(qLock).WithArgs("u2").WillReturnError(errors.New("deadlock"))

	require.NoError(t, repo.LockPrincipal(context.Background(), "u1"))
	assert.Error(t, repo.LockPrincipal(context.Background(), "u2"))
	require.NoError(t, mock.ExpectationsWereMet())
}
