package timelog

import (
	"math"
	"time"
)

// SessionPolicy holds the per-organization timing rules for a work session.
type SessionPolicy struct {
	WorkingHours time.Duration
	GracePeriod  time.Duration
}

const (
	DefaultWorkingHoursPerDay = 9
	DefaultGracePeriodHours   = 1
)

// DefaultSessionPolicy returns the 9 hour working day with a 1 hour grace window.
func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{
		WorkingHours: DefaultWorkingHoursPerDay * time.Hour,
		GracePeriod:  DefaultGracePeriodHours * time.Hour,
	}
}

// WithWorkingHours returns a copy of the policy with the working day replaced.
// Used when a session carries its own expected working hours.
func (p SessionPolicy) WithWorkingHours(hours float64) SessionPolicy {
	if hours <= 0 {
		return p
	}
	p.WorkingHours = time.Duration(hours * float64(time.Hour))
	return p
}

// ExpectedClockOut is the instant the session is expected to end.
func (p SessionPolicy) ExpectedClockOut(clockIn time.Time) time.Time {
	return clockIn.Add(p.WorkingHours)
}

// GracePeriodEnd is the instant after which an open session gets auto-terminated.
func (p SessionPolicy) GracePeriodEnd(clockIn time.Time) time.Time {
	return p.ExpectedClockOut(clockIn).Add(p.GracePeriod)
}

// WithinGracePeriod reports whether now falls inside the grace window:
// strictly after the expected clock-out, up to and including the grace end.
func (p SessionPolicy) WithinGracePeriod(clockIn, now time.Time) bool {
	return now.After(p.ExpectedClockOut(clockIn)) && !now.After(p.GracePeriodEnd(clockIn))
}

// GracePeriodEnded reports whether now is past the grace window.
func (p SessionPolicy) GracePeriodEnded(clockIn, now time.Time) bool {
	return now.After(p.GracePeriodEnd(clockIn))
}

// DurationMinutes converts an elapsed span in seconds to whole minutes,
// rounding to nearest.
func DurationMinutes(elapsedSeconds int64) int {
	return int(math.Round(float64(elapsedSeconds) / 60.0))
}

// MinutesBetween is the whole-minute span between two instants.
func MinutesBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Minutes()))
}
