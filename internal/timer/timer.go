// Package timer provides the elapsed-time gate shared by every control loop.
// Time is always passed in; nothing here reads the wall clock.
package timer

import "time"

// Interval fires at most once per Period.
type Interval struct {
	Period time.Duration

	last  time.Time
	fired bool
}

// New creates an Interval with the given period.
func New(period time.Duration) *Interval {
	return &Interval{Period: period}
}

// Due reports whether the period has elapsed since the last firing and, if so,
// records now as the new firing time. An Interval that has never fired is due
// immediately. A non-positive Period disables the Interval.
func (i *Interval) Due(now time.Time) bool {
	if i.Period <= 0 {
		return false
	}
	if i.fired && now.Sub(i.last) < i.Period {
		return false
	}
	i.last = now
	i.fired = true
	return true
}

// Reset marks the Interval as having fired at now.
func (i *Interval) Reset(now time.Time) {
	i.last = now
	i.fired = true
}

// Clear forgets the last firing so the next Due call fires.
func (i *Interval) Clear() {
	i.last = time.Time{}
	i.fired = false
}

// Last returns the time of the last firing and whether there was one.
func (i *Interval) Last() (time.Time, bool) {
	return i.last, i.fired
}
