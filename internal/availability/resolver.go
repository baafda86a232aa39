// Package availability turns a provider's weekly hours and date exceptions
// into bookable slot start times. It performs no I/O.
package availability

import (
	"errors"
	"slotbook/pkg/model"
	"time"
)

var (
	ErrIncompleteHours = errors.New("custom hours need both open and close when the weekday has no open hours")
	ErrInvertedHours   = errors.New("close must not be before open")
)

// FindException returns the exception whose calendar date matches date.
func FindException(p *model.Provider, date time.Time) (*model.AvailabilityException, bool) {
	for i := range p.AvailabilityExceptions {
		if SameDay(p.AvailabilityExceptions[i].Date, date) {
			return &p.AvailabilityExceptions[i], true
		}
	}
	return nil, false
}

// ResolveWindow returns the open window for date's calendar day. ok is false
// when the provider is closed that day or its hours cannot be interpreted.
func ResolveWindow(p *model.Provider, date time.Time) (Window, bool) {
	weekly, hasWeekly := p.HoursFor(model.WeekdayOf(date.Weekday()))

	exc, hasException := FindException(p, date)
	if !hasException {
		if !hasWeekly || weekly.IsClosed {
			return Window{}, false
		}
		return window(weekly.Open, weekly.Close)
	}

	if !exc.IsAvailable {
		return Window{}, false
	}

	if exc.CustomHours == nil || (exc.CustomHours.Open == "" && exc.CustomHours.Close == "") {
		if !hasWeekly || weekly.IsClosed {
			return Window{}, false
		}
		return window(weekly.Open, weekly.Close)
	}

	w, err := CustomWindow(p, date, *exc.CustomHours)
	return w, err == nil
}

// CustomWindow merges an exception's custom hours with the weekly hours of
// date's weekday: a missing open or close is taken from the weekday. A closed
// or missing weekday fills nothing.
func CustomWindow(p *model.Provider, date time.Time, ch model.CustomHours) (Window, error) {
	open, closing := ch.Open, ch.Close
	if weekly, ok := p.HoursFor(model.WeekdayOf(date.Weekday())); ok && !weekly.IsClosed {
		if open == "" {
			open = weekly.Open
		}
		if closing == "" {
			closing = weekly.Close
		}
	}
	if open == "" || closing == "" {
		return Window{}, ErrIncompleteHours
	}

	o, err := ParseClock(open)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseClock(closing)
	if err != nil {
		return Window{}, err
	}
	if c < o {
		return Window{}, ErrInvertedHours
	}
	return Window{Open: o, Close: c}, nil
}

func window(open, closing string) (Window, bool) {
	o, err := ParseClock(open)
	if err != nil {
		return Window{}, false
	}
	c, err := ParseClock(closing)
	if err != nil {
		return Window{}, false
	}
	if c < o {
		return Window{}, false
	}
	return Window{Open: o, Close: c}, true
}

// Starts lists slot starts of length duration minutes, stepping by duration
// from w.Open. A slot is only emitted if it ends by w.Close.
func Starts(w Window, duration int) []Clock {
	if duration <= 0 || duration > w.Len() {
		return nil
	}
	d := Clock(duration)
	starts := make([]Clock, 0, w.Len()/duration)
	for s := w.Open; s+d <= w.Close; s += d {
		starts = append(starts, s)
	}
	return starts
}

// ResolveSlots returns the "HH:mm" slot starts for a service of duration
// minutes on date's calendar day. The result is empty, never nil, when the
// provider is closed or no slot fits.
func ResolveSlots(p *model.Provider, date time.Time, duration int) []string {
	w, ok := ResolveWindow(p, date)
	if !ok {
		return []string{}
	}
	starts := Starts(w, duration)
	slots := make([]string, len(starts))
	for i, s := range starts {
		slots[i] = s.String()
	}
	return slots
}

func Contains(slots []string, hhmm string) bool {
	for _, s := range slots {
		if s == hhmm {
			return true
		}
	}
	return false
}
