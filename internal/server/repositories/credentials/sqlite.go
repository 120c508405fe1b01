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

// SQLiteRepository reads credentials from a local profiles table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Lookup(ctx context.Context, principalID string) (*models.Credential, error) {
	var hash, salt sql.NullString
	cred := &models.Credential{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, pin_hash, pin_salt FROM profiles WHERE id = ?`, principalID,
	).Scan(&cred.PrincipalID, &hash, &salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get credential[%s]: %w", principalID, err)
	}

	cred.SecretHash = hash.String
	cred.Salt = salt.String
	return cred, nil
}
