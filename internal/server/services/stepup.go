// Package services contains server-side business logic. This file implements
// StepUpService, the single entry point that gates a sensitive action behind
// a PIN check.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/lockout"
	"github.com/dmitrijs2005/pinkeeper/internal/logging"
	"github.com/dmitrijs2005/pinkeeper/internal/pinhash"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/credentials"
)

// Reason explains a refused verification.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonLocked        Reason = "locked"
	ReasonNoCredential  Reason = "no_credential"
	ReasonInvalidSecret Reason = "invalid_secret"
)

// Outcome is the result of one verification request. Exactly one of the
// following holds:
//   - Success, with Grant set when a grant issuer is configured;
//   - Reason locked, with RemainingTime (m:ss) and LockedUntil;
//   - Reason invalid_secret, with AttemptsRemaining;
//   - Reason no_credential.
type Outcome struct {
	Success           bool
	Reason            Reason
	AttemptsRemaining int
	RemainingTime     string
	LockedUntil       time.Time
	Grant             string
}

// Message is the text shown to the person entering the PIN.
func (o *Outcome) Message() string {
	switch {
	case o.Success:
		return ""
	case o.Reason == ReasonLocked:
		return "Account locked. Try again in " + o.RemainingTime
	case o.Reason == ReasonNoCredential:
		return "No PIN is set for this account."
	default:
		return fmt.Sprintf("Incorrect PIN. Please try again. %d attempt(s) remaining.", o.AttemptsRemaining)
	}
}

// Err maps a refused outcome to its sentinel: common.ErrLocked,
// common.ErrNoCredentialConfigured or common.ErrIncorrectPIN. It is nil on
// success.
func (o *Outcome) Err() error {
	switch {
	case o.Success:
		return nil
	case o.Reason == ReasonLocked:
		return common.ErrLocked
	case o.Reason == ReasonNoCredential:
		return common.ErrNoCredentialConfigured
	default:
		return common.ErrIncorrectPIN
	}
}

// Verifier checks a candidate PIN against a stored digest and salt.
// Implemented by *pinhash.Hasher.
type Verifier interface {
	Verify(ctx context.Context, candidate, storedDigest, storedSalt string) (bool, error)
}

// GrantIssuer mints a proof of successful verification.
// Implemented by *auth.GrantIssuer.
type GrantIssuer interface {
	Issue(principalID string) (string, error)
}

type StepUpService struct {
	ledger      *lockout.Ledger
	credentials credentials.Repository
	verifier    Verifier
	grants      GrantIssuer
	log         logging.Logger
}

type StepUpOption func(*StepUpService)

func WithGrantIssuer(g GrantIssuer) StepUpOption {
	return func(s *StepUpService) { s.grants = g }
}

func WithLogger(l logging.Logger) StepUpOption {
	return func(s *StepUpService) { s.log = l }
}

func NewStepUpService(ledger *lockout.Ledger, creds credentials.Repository, verifier Verifier, opts ...StepUpOption) *StepUpService {
	s := &StepUpService{
		ledger:      ledger,
		credentials: creds,
		verifier:    verifier,
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestVerification checks candidate for principalID and updates the
// attempt ledger. The lock check, credential lookup, comparison and ledger
// update run as one critical section per principal.
//
// Errors:
//   - a malformed candidate or stored credential returns a nil Outcome and an
//     error wrapping common.ErrInvalidCredentialFormat; nothing is recorded;
//   - if ctx ends before anything is recorded, ctx.Err() is returned;
//   - storage failures return the locked Outcome for a full lockout window
//     together with an error wrapping common.ErrStorageUnavailable.
func (s *StepUpService) RequestVerification(ctx context.Context, principalID, candidate string) (*Outcome, error) {
	if err := pinhash.ValidatePIN(candidate); err != nil {
		return nil, err
	}

	log := s.log.With("principal_id", principalID)

	var (
		out   *Outcome
		wrote bool
	)
	err := s.ledger.Exclusive(ctx, principalID, func(ctx context.Context, sess *lockout.Session) error {
		st, err := sess.CheckStatus(ctx)
		if err != nil {
			return err
		}
		if st.IsLocked {
			out = lockedOutcome(st)
			return nil
		}

		cred, err := s.credentials.Lookup(ctx, principalID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				out = &Outcome{Reason: ReasonNoCredential}
				return nil
			}
			return fmt.Errorf("%w: lookup credential: %w", common.ErrStorageUnavailable, err)
		}
		if !cred.Configured() {
			out = &Outcome{Reason: ReasonNoCredential}
			return nil
		}

		ok, err := s.verifier.Verify(ctx, candidate, cred.SecretHash, cred.Salt)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// From here on the result is committed regardless of the caller.
		wctx := context.WithoutCancel(ctx)
		wrote = true

		if ok {
			out = &Outcome{Success: true}
			if err := sess.RecordSuccess(wctx); err != nil {
				log.Warn(ctx, "verified but failed to reset attempts", "error", err)
			}
			return nil
		}

		st, err = sess.RecordFailure(wctx)
		if err != nil {
			return err
		}
		out = failureOutcome(st)
		return nil
	})

	if err != nil {
		switch {
		case out != nil && out.Success:
			log.Warn(ctx, "verified but failed to commit attempt reset", "error", err)
		case errors.Is(err, common.ErrInvalidCredentialFormat):
			log.Error(ctx, "step-up verification rejected malformed input", "error", err)
			return nil, err
		case !wrote && ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			if !errors.Is(err, common.ErrStorageUnavailable) {
				err = fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
			}
			log.Error(ctx, "step-up verification failed closed", "error", err)
			return lockedOutcome(s.ledger.FailClosed()), err
		}
	}

	if out.Success && s.grants != nil {
		grant, err := s.grants.Issue(principalID)
		if err != nil {
			log.Error(ctx, "failed to issue step-up grant", "error", err)
		} else {
			out.Grant = grant
		}
	}

	log.Info(ctx, "step-up verification",
		"success", out.Success,
		"reason", string(out.Reason),
		"attempts_remaining", out.AttemptsRemaining,
	)
	return out, nil
}

// CheckStatus reports the principal's lockout state without counting an
// attempt. On storage failure it returns a locked status for a full window
// and an error wrapping common.ErrStorageUnavailable.
func (s *StepUpService) CheckStatus(ctx context.Context, principalID string) (*lockout.Status, error) {
	st, err := s.ledger.CheckStatus(ctx, principalID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Error(ctx, "lockout status unavailable", "principal_id", principalID, "error", err)
	}
	return &st, err
}

func lockedOutcome(st lockout.Status) *Outcome {
	return &Outcome{
		Reason:        ReasonLocked,
		RemainingTime: st.FormatRemaining(),
		LockedUntil:   st.LockedUntil,
	}
}

func failureOutcome(st lockout.Status) *Outcome {
	if st.IsLocked {
		return lockedOutcome(st)
	}
	return &Outcome{Reason: ReasonInvalidSecret, AttemptsRemaining: st.AttemptsRemaining}
}
