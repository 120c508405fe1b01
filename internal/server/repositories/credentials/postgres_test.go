package credentials

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pinkeeper/internal/common"
)

const qLookup = `(?s)^SELECT\s+id,\s*pin_hash,\s*pin_salt\s+FROM\s+profiles\s+WHERE\s+id\s*=\s*\$1\s*$`

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestLookup_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "pin_hash", "pin_salt"}).AddRow("u1", "aGFzaA==", "c2FsdA==")
	mock.ExpectQuery(qLookup).WithArgs("u1").WillReturnRows(rows)

	cred, err := repo.Lookup(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if cred.PrincipalID != "u1" || cred.SecretHash != "aGFzaA==" || cred.Salt != "c2FsdA==" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if !cred.Configured() {
		t.Fatal("expected configured credential")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLookup_NullColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "pin_hash", "pin_salt"}).AddRow("u1", nil, nil)
	mock.ExpectQuery(qLookup).WithArgs("u1").WillReturnRows(rows)

	cred, err := repo.Lookup(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if cred.Configured() {
		t.Fatalf("expected unconfigured credential, got %+v", cred)
	}
}

func TestLookup_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qLookup).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Lookup(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestLookup_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qLookup).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.Lookup(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
