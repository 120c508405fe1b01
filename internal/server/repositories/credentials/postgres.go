package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/dbx"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Lookup(ctx context.Context, principalID string) (*models.Credential, error) {
	query :=
		`SELECT id, pin_hash, pin_salt FROM profiles
		 WHERE id = $1
		 `

	var hash, salt sql.NullString
	cred := &models.Credential{}

	err := r.db.QueryRowContext(ctx, query, principalID).Scan(&cred.PrincipalID, &hash, &salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	cred.SecretHash = hash.String
	cred.Salt = salt.String
	return cred, nil
}
