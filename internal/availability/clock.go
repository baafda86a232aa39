package availability

import (
	"fmt"
	"time"
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

const Midnight Clock = 0

// ParseClock accepts only zero-padded 24h "HH:mm" values.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: want HH:mm", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid time %q: want HH:mm", s)
		}
	}

	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ClockOf returns the wall-clock time of t in its own location, dropping
// seconds. ok is false when t is not on a whole minute.
func ClockOf(t time.Time) (c Clock, ok bool) {
	return Clock(t.Hour()*60 + t.Minute()), t.Second() == 0 && t.Nanosecond() == 0
}

// Window is a half-open range of the day in which slots may start and end.
type Window struct {
	Open  Clock
	Close Clock
}

func (w Window) Len() int {
	if w.Close < w.Open {
		return 0
	}
	return int(w.Close - w.Open)
}
