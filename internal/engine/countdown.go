package engine

import "time"

// Countdown is the bid window deadline. It has no timer of its own:
// expiry is evaluated lazily against the caller's clock.
type Countdown struct {
	endsAt time.Time
	set    bool
}

// NewCountdown returns a countdown ending window after now.
func NewCountdown(now time.Time, window time.Duration) Countdown {
	return Countdown{endsAt: now.Add(window), set: true}
}

// EndsAt returns the deadline and whether one is set.
func (c Countdown) EndsAt() (time.Time, bool) {
	return c.endsAt, c.set
}

// Remaining returns max(0, deadline - now), or 0 when unset.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if !c.set {
		return 0
	}
	if d := c.endsAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether a set deadline has been reached. Bids are only
// accepted strictly before the deadline.
func (c Countdown) Expired(now time.Time) bool {
	return c.set && !now.Before(c.endsAt)
}

// Extend pushes the deadline back by delta. An unset countdown starts
// from now.
func (c Countdown) Extend(now time.Time, delta time.Duration) Countdown {
	base := now
	if c.set {
		base = c.endsAt
	}
	return Countdown{endsAt: base.Add(delta), set: true}
}

// Clear returns an unset countdown.
func (c Countdown) Clear() Countdown {
	return Countdown{}
}
