package lockout

import (
	"fmt"
	"time"
)

// Status is the lockout state of one principal at a given instant.
type Status struct {
	IsLocked bool
	// RemainingTime is zero unless IsLocked.
	RemainingTime     time.Duration
	AttemptsRemaining int
	// LockedUntil is the zero time unless IsLocked.
	LockedUntil time.Time
}

// FormatRemaining renders RemainingTime as m:ss, rounding up to the next
// whole second. Fifteen minutes is "15:00".
func (s Status) FormatRemaining() string {
	if s.RemainingTime <= 0 {
		return "0:00"
	}
	secs := int64((s.RemainingTime + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Message is the user-facing lockout notice, or "" when not locked.
func (s Status) Message() string {
	if !s.IsLocked || s.RemainingTime <= 0 {
		return ""
	}
	minutes := int64(s.RemainingTime / time.Minute)
	if minutes > 0 {
		return fmt.Sprintf("Account locked. Try again in %d minute(s)", minutes)
	}
	seconds := int64((s.RemainingTime % time.Minute) / time.Second)
	return fmt.Sprintf("Account locked. Try again in %d seconds", seconds)
}
