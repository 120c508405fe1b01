package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/server/services"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Verify(ctx context.Context, pin string) (*VerifyResult, error)
	Status(ctx context.Context) (*StatusResult, error)
	CheckGrant(ctx context.Context, grant string) (*GrantResult, error)
}

// VerifyResult mirrors the Verify response.
type VerifyResult struct {
	Success           bool
	Reason            string
	AttemptsRemaining int
	RemainingTime     string
	LockedUntil       time.Time
	Grant             string
	Message           string
}

// Err is nil on success and otherwise common.ErrLocked,
// common.ErrNoCredentialConfigured or common.ErrIncorrectPIN.
func (r *VerifyResult) Err() error {
	out := services.Outcome{Success: r.Success, Reason: services.Reason(r.Reason)}
	return out.Err()
}

type StatusResult struct {
	IsLocked          bool
	AttemptsRemaining int
	RemainingTime     string
	Message           string
}

type GrantResult struct {
	Valid       bool
	PrincipalID string
}
