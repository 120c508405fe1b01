// Package credentials reads step-up PIN credentials from the profile store.
// The store is owned by the account system; this package never writes to it.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
)

// Repository looks up the stored PIN digest and salt for a principal.
type Repository interface {
	// Lookup returns the credential for principalID or common.ErrorNotFound.
	// A profile row without a PIN is returned with empty fields; callers
	// check Credential.Configured.
	Lookup(ctx context.Context, principalID string) (*models.Credential, error)
}

// Func adapts a plain function to a Repository.
type Func func(ctx context.Context, principalID string) (*models.Credential, error)

func (f Func) Lookup(ctx context.Context, principalID string) (*models.Credential, error) {
	return f(ctx, principalID)
}
