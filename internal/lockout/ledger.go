// Package lockout implements the attempt ledger: a per-principal counter of
// failed step-up verifications that locks the principal out for a fixed
// window once the failure threshold is reached.
//
// States per principal are Open(n) and Locked(until):
//
//	Open(n)       + failure -> Open(n+1), or Locked(now+duration) when n+1 >= max
//	Open(n)       + success -> record deleted
//	Locked(until) + attempt -> refused while now < until, count unchanged
//	Locked(until) read at now >= until -> Open(0), stale record deleted
//
// The ledger never sees the secret. All mutation for one principal happens
// inside a critical section, see Ledger.Exclusive.
package lockout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/logging"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
	"github.com/dmitrijs2005/pinkeeper/internal/server/repositories/attempts"
)

// Serializer runs fn while holding a lock on principalID that is visible to
// every process sharing the store. fn receives a repository bound to that
// lock's scope, for example a database transaction.
type Serializer interface {
	Serialize(ctx context.Context, principalID string, fn func(ctx context.Context, repo attempts.Repository) error) error
}

type Ledger struct {
	repo       attempts.Repository
	policy     Policy
	now        func() time.Time
	serializer Serializer
	log        logging.Logger
	locks      *keyedMutex
}

type Option func(*Ledger)

func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithSerializer adds cross-process serialisation on top of the in-process
// per-principal lock.
func WithSerializer(s Serializer) Option {
	return func(l *Ledger) { l.serializer = s }
}

func WithLogger(log logging.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// NewLedger returns a ledger over repo. It fails with ErrInvalidPolicy when
// the configured policy is unusable.
func NewLedger(repo attempts.Repository, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		repo:   repo,
		policy: DefaultPolicy(),
		now:    time.Now,
		log:    logging.Nop(),
		locks:  newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.policy.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Policy() Policy { return l.policy }

// FailClosed is the status reported when the ledger cannot be consulted:
// locked for a full window.
func (l *Ledger) FailClosed() Status {
	now := l.now()
	return Status{
		IsLocked:      true,
		RemainingTime: l.policy.LockoutDuration,
		LockedUntil:   now.Add(l.policy.LockoutDuration),
	}
}

// Exclusive runs fn inside the critical section for principalID. Concurrent
// calls for the same principal run one at a time; different principals never
// wait for each other. Waiting for the section honours ctx.
//
// Errors from acquiring a cross-process lock, or from committing after fn
// succeeded, wrap common.ErrStorageUnavailable. Errors returned by fn are
// passed through unchanged.
func (l *Ledger) Exclusive(ctx context.Context, principalID string, fn func(ctx context.Context, s *Session) error) error {
	unlock, err := l.locks.lock(ctx, principalID)
	if err != nil {
		return err
	}
	defer unlock()

	if l.serializer == nil {
		return fn(ctx, l.session(principalID, l.repo))
	}

	var (
		ran   bool
		fnErr error
	)
	err = l.serializer.Serialize(ctx, principalID, func(ctx context.Context, repo attempts.Repository) error {
		ran = true
		fnErr = fn(ctx, l.session(principalID, repo))
		return fnErr
	})
	if err == nil || (ran && fnErr != nil) {
		return err
	}
	if !ran && ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
}

// CheckStatus is Session.CheckStatus in its own critical section.
func (l *Ledger) CheckStatus(ctx context.Context, principalID string) (st Status, err error) {
	err = l.Exclusive(ctx, principalID, func(ctx context.Context, s *Session) error {
		st, err = s.CheckStatus(ctx)
		return err
	})
	if err != nil && !st.IsLocked {
		st = l.FailClosed()
	}
	return st, err
}

// RecordFailure is Session.RecordFailure in its own critical section.
func (l *Ledger) RecordFailure(ctx context.Context, principalID string) (st Status, err error) {
	err = l.Exclusive(ctx, principalID, func(ctx context.Context, s *Session) error {
		st, err = s.RecordFailure(ctx)
		return err
	})
	if err != nil && !st.IsLocked {
		st = l.FailClosed()
	}
	return st, err
}

// RecordSuccess is Session.RecordSuccess in its own critical section.
func (l *Ledger) RecordSuccess(ctx context.Context, principalID string) error {
	return l.Exclusive(ctx, principalID, func(ctx context.Context, s *Session) error {
		return s.RecordSuccess(ctx)
	})
}

func (l *Ledger) session(principalID string, repo attempts.Repository) *Session {
	return &Session{l: l, repo: repo, principalID: principalID}
}

func (l *Ledger) statusOf(rec *models.AttemptRecord, now time.Time) Status {
	if rec.LockedAt(now) {
		return Status{
			IsLocked:      true,
			RemainingTime: rec.LockedUntil.Sub(now),
			LockedUntil:   *rec.LockedUntil,
		}
	}
	count := 0
	if rec != nil {
		count = rec.FailureCount
	}
	return Status{AttemptsRemaining: max(0, l.policy.MaxAttempts-count)}
}

// Session is the ledger as seen from inside a critical section for one
// principal. It must not be used after the Exclusive callback returns.
type Session struct {
	l           *Ledger
	repo        attempts.Repository
	principalID string
}

func (s *Session) PrincipalID() string { return s.principalID }

// load returns the live record, nil when the principal is Open(0). A record
// whose lock has run out is deleted and reported as nil.
func (s *Session) load(ctx context.Context, now time.Time) (*models.AttemptRecord, error) {
	rec, err := s.repo.Get(ctx, s.principalID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read attempts: %w", common.ErrStorageUnavailable, err)
	}

	if rec.ExpiredAt(now) {
		if err := s.repo.Delete(ctx, s.principalID); err != nil {
			s.l.log.Warn(ctx, "failed to clear expired lockout", "principal_id", s.principalID, "error", err)
		}
		return nil, nil
	}
	return rec, nil
}

// CheckStatus reports the current state. It never counts as an attempt but
// clears an expired lock.
func (s *Session) CheckStatus(ctx context.Context) (Status, error) {
	now := s.l.now()
	rec, err := s.load(ctx, now)
	if err != nil {
		return s.l.FailClosed(), err
	}
	return s.l.statusOf(rec, now), nil
}

// RecordFailure counts one failed verification and returns the resulting
// status. Against a locked principal it changes nothing and reports the lock.
func (s *Session) RecordFailure(ctx context.Context) (Status, error) {
	now := s.l.now()
	rec, err := s.load(ctx, now)
	if err != nil {
		return s.l.FailClosed(), err
	}
	if rec.LockedAt(now) {
		return s.l.statusOf(rec, now), nil
	}

	next := &models.AttemptRecord{PrincipalID: s.principalID, FailureCount: 1, LastAttemptAt: now}
	if rec != nil {
		next.FailureCount = rec.FailureCount + 1
	}
	if next.FailureCount >= s.l.policy.MaxAttempts {
		until := now.Add(s.l.policy.LockoutDuration)
		next.LockedUntil = &until
	}

	if err := s.repo.Put(ctx, next); err != nil {
		return s.l.FailClosed(), fmt.Errorf("%w: write attempts: %w", common.ErrStorageUnavailable, err)
	}

	if next.LockedUntil != nil {
		s.l.log.Warn(ctx, "principal locked out",
			"principal_id", s.principalID,
			"failures", next.FailureCount,
			"locked_until", next.LockedUntil.UTC(),
		)
	}
	return s.l.statusOf(next, now), nil
}

// RecordSuccess clears the principal's record unconditionally.
func (s *Session) RecordSuccess(ctx context.Context) error {
	if err := s.repo.Delete(ctx, s.principalID); err != nil {
		return fmt.Errorf("%w: reset attempts: %w", common.ErrStorageUnavailable, err)
	}
	return nil
}
