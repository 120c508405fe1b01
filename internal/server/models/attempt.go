package models

import "time"

// AttemptRecord tracks failed step-up verifications for one principal.
// It exists only between the first failure and the next reset.
type AttemptRecord struct {
	PrincipalID   string
	FailureCount  int
	LockedUntil   *time.Time
	LastAttemptAt time.Time
}

// LockedAt reports whether the record refuses attempts at the given instant.
func (r *AttemptRecord) LockedAt(now time.Time) bool {
	return r != nil && r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// ExpiredAt reports whether the record carried a lock that has run out.
func (r *AttemptRecord) ExpiredAt(now time.Time) bool {
	return r != nil && r.LockedUntil != nil && !now.Before(*r.LockedUntil)
}
