package lockout

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMaxAttempts     = 5
	DefaultLockoutDuration = 15 * time.Minute
)

var ErrInvalidPolicy = errors.New("lockout: invalid policy")

// Policy bounds the number of guesses per lockout window. It is shared by
// all principals.
type Policy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, LockoutDuration: DefaultLockoutDuration}
}

func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.LockoutDuration <= 0 {
		return fmt.Errorf("%w: lockout duration must be positive, got %s", ErrInvalidPolicy, p.LockoutDuration)
	}
	return nil
}
