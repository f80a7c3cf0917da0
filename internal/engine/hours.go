package engine

import (
	"utaroom/internal/clock"
)

// Business window: opens 11:00, closes 01:00 the next day. Expressed in
// minutes since midnight of the reference date; times before opening
// are shifted a day forward so every instant of a business day maps
// into [660, 1500).
const (
	openMinutes  = 11 * 60 // 11:00
	closeMinutes = 25 * 60 // 01:00 next day
)

// normalizedMinutes maps a clock time onto the business-day axis. A
// plain "01:00" lands on 1500 (closing), the same instant as "25:00".
// Closed-band times (01:00-11:00 exclusive) map beyond closing and fail
// every window check downstream.
func normalizedMinutes(t clock.Time) int {
	m := t.AbsMinutes()
	if m < openMinutes {
		m += 24 * 60
	}
	return m
}

// IsWithinBusinessHours reports whether the interval lies inside the
// half-open window [11:00, 01:00). A start exactly at closing or an end
// exactly at opening is rejected: both describe a zero-length stay at
// the boundary.
func IsWithinBusinessHours(start, end clock.Time) bool {
	s := normalizedMinutes(start)
	e := normalizedMinutes(end)
	return s >= openMinutes && s < closeMinutes &&
		e > openMinutes && e <= closeMinutes &&
		e > s
}
