// internal/game/clock.go
//
// Turn countdown arithmetic. There is no synchronized server clock: each
// observer computes the remaining time from the shared turn-start timestamp
// against its own wall clock, so countdowns are only as aligned as device
// clocks are. Kept as a pure function so it can be tested without delays.

package game

import "time"

// Remaining reports how much of a turn is left at now, clamped at zero.
func Remaining(roundSeconds int, startedAt, now time.Time) time.Duration {
	left := time.Duration(roundSeconds)*time.Second - now.Sub(startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// TurnRemaining applies Remaining to the session's own turn state. Outside
// the playing phase there is no countdown and the result is zero.
func (s *Session) TurnRemaining(now time.Time) time.Duration {
	if s.Phase != PhasePlaying || s.TurnStartedAt == nil {
		return 0
	}
	return Remaining(s.RoundSeconds, *s.TurnStartedAt, now)
}
