// Package attempts stores the failed-verification ledger, one record per
// principal. Implementations are keyed stores only; the lockout rules live in
// package lockout.
package attempts

import (
	"context"

	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
)

// Repository is the durable keyed store behind the attempt ledger.
type Repository interface {
	// Get returns the record for principalID or common.ErrorNotFound.
	Get(ctx context.Context, principalID string) (*models.AttemptRecord, error)

	// Put inserts or replaces the record for rec.PrincipalID.
	Put(ctx context.Context, rec *models.AttemptRecord) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, principalID string) error
}
