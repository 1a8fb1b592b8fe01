// Package clock keeps network-synchronised wall time and converts it into a
// servo pointer position on a twelve-hour dial.
package clock

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// Synced is a wall clock corrected by an NTP offset measured once at startup.
type Synced struct {
	offset time.Duration
	now    func() time.Time
}

// Query performs one NTP exchange. Replaced in tests.
type Query func(server string) (time.Duration, error)

// NTPQuery asks server for the local clock offset.
func NTPQuery(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, fmt.Errorf("ntp query %s: %w", server, err)
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("ntp response from %s: %w", server, err)
	}
	return resp.ClockOffset, nil
}

// Sync measures the offset once. There is no retry: a failure here is a
// startup fault.
func Sync(server string, query Query, now func() time.Time) (*Synced, error) {
	offset, err := query(server)
	if err != nil {
		return nil, err
	}
	return &Synced{offset: offset, now: now}, nil
}

// Now returns corrected UTC time.
func (s *Synced) Now() time.Time {
	return s.now().Add(s.offset).UTC()
}

// Offset returns the measured correction.
func (s *Synced) Offset() time.Duration {
	return s.offset
}
