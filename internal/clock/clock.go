// Package clock provides an injectable time source and calendar-day helpers.
// All calendar dates are normalized to midnight UTC so that stored dates
// compare by day regardless of the server's local zone.
package clock

import (
	"sync"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Clock is a source of the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall clock.
func System() Clock { return systemClock{} }

// Fixed is a manually controlled clock.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// StartOfDay returns midnight UTC of t's calendar day (in t's own location).
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day of c.
func Today(c Clock) datatypes.Date {
	return datatypes.Date(StartOfDay(c.Now()))
}

// ToDate converts t to a calendar date.
func ToDate(t time.Time) datatypes.Date {
	return datatypes.Date(StartOfDay(t))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// FormatDate renders d as YYYY-MM-DD; nil renders as an empty string.
func FormatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(DateLayout)
}

// Before reports whether calendar day a is strictly before calendar day b.
func Before(a, b datatypes.Date) bool {
	return StartOfDay(time.Time(a)).Before(StartOfDay(time.Time(b)))
}
