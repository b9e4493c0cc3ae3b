package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Clock is a time of day in minutes since midnight.
type Clock int

const minutesPerDay = 24 * 60

var (
	ErrClockFormat = errors.New("time must be HH:MM")
	ErrEmptySlot   = errors.New("slot end must be after slot start")
)

// ParseClock accepts exactly "HH:MM" on a 24-hour clock.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, errors.Wrapf(ErrClockFormat, "%q", s)
	}
	h, ok1 := twoDigits(s[0], s[1])
	m, ok2 := twoDigits(s[3], s[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, errors.Wrapf(ErrClockFormat, "%q", s)
	}
	return Clock(h*60 + m), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

func (c Clock) String() string {
	c = ((c % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Slot is the half-open interval [Start, End) within one day.
type Slot struct {
	Start Clock
	End   Clock
}

func ParseSlot(start, end string) (Slot, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Slot{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Slot{}, err
	}
	if e <= s {
		return Slot{}, errors.Wrapf(ErrEmptySlot, "%s-%s", start, end)
	}
	return Slot{Start: s, End: e}, nil
}

// Overlaps reports whether the two slots share any minute. Back-to-back
// slots (one ends when the other starts) do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}
