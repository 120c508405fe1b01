package credentials

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	sqlitemigrations "github.com/dmitrijs2005/pinkeeper/internal/server/migrations/sqlite"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	p, err := goose.NewProvider(goose.DialectSQLite3, db, sqlitemigrations.Migrations)
	require.NoError(t, err)
	_, err = p.Up(context.Background())
	require.NoError(t, err)
	return db
}

func TestSQLiteLookup(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, pin_hash, pin_salt) VALUES (?, ?, ?, ?), (?, ?, NULL, NULL)`,
		"u1", "u1@example.com", "aGFzaA==", "c2FsdA==",
		"u2", "u2@example.com",
	)
	require.NoError(t, err)

	repo := NewSQLiteRepository(db)

	tests := []struct {
		name       string
		id         string
		want       *models.Credential
		configured bool
		wantErr    error
	}{
		{name: "configured", id: "u1", want: &models.Credential{PrincipalID: "u1", SecretHash: "aGFzaA==", Salt: "c2FsdA=="}, configured: true},
		{name: "no pin set", id: "u2", want: &models.Credential{PrincipalID: "u2"}},
		{name: "missing", id: "u3", wantErr: common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Lookup(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.configured, got.Configured())
		})
	}
}

func TestFuncAdapter(t *testing.T) {
	var r Repository = Func(func(_ context.Context, id string) (*models.Credential, error) {
		return &models.Credential{PrincipalID: id}, nil
	})

	cred, err := r.Lookup(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", cred.PrincipalID)
}
