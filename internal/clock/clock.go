// Package clock implements the wall-clock time model used by the
// reservation engine. Times on the wire are "HH:MM" strings where the
// hour may exceed 23: "25:00" means 01:00 on the day after the
// reference date. Parsing converts that notation into a Time value
// carrying an explicit day offset so the rest of the engine never
// compares raw strings.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTime is returned when a time string is not HH:MM with
// integer components.
var ErrMalformedTime = errors.New("malformed time")

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// Time is a wall-clock time relative to a reference calendar date.
// Day is the offset in days from that date (0 = same day, 1 = next day).
type Time struct {
	Day    int
	Hour   int
	Minute int
}

// Parse converts an HH:MM string into a Time. Hours from 24 upward
// denote the following day: "25:30" becomes Day 1, 01:30. Hours beyond
// 47 are rejected; a booking never spans more than one midnight.
func Parse(s string) (Time, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	if hour < 0 || hour > 47 || minute < 0 || minute > 59 {
		return Time{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return Time{Day: hour / 24, Hour: hour % 24, Minute: minute}, nil
}

// String serializes back to the wire notation. Next-day times use the
// extended hour form, so Parse(t.String()) always round-trips.
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Day*24+t.Hour, t.Minute)
}

// AbsMinutes returns minutes since midnight of the reference date,
// day offset included. Two Times on the same date compare through this.
func (t Time) AbsMinutes() int {
	return t.Day*minutesPerDay + t.Hour*minutesPerHour + t.Minute
}

// AddMinutes returns the time m minutes later.
func (t Time) AddMinutes(m int) Time {
	return FromAbsMinutes(t.AbsMinutes() + m)
}

// NextDay returns the same wall-clock time one day later.
func (t Time) NextDay() Time {
	return Time{Day: t.Day + 1, Hour: t.Hour, Minute: t.Minute}
}

// Before reports whether t is strictly earlier than other.
func (t Time) Before(other Time) bool {
	return t.AbsMinutes() < other.AbsMinutes()
}

// FromAbsMinutes builds a Time from minutes since midnight of the
// reference date.
func FromAbsMinutes(m int) Time {
	return Time{
		Day:    m / minutesPerDay,
		Hour:   (m % minutesPerDay) / minutesPerHour,
		Minute: m % minutesPerHour,
	}
}

// Duration returns the booking length in minutes. An end at or before
// the start is taken to mean the following day, so 23:00-01:00 is two
// hours rather than a negative interval.
func Duration(start, end Time) int {
	if end.AbsMinutes() <= start.AbsMinutes() {
		end = end.NextDay()
	}
	return end.AbsMinutes() - start.AbsMinutes()
}
