package model

import (
	"time"

	"utaroom/internal/clock"
)

// Reservation statuses.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Room is immutable reference data for a karaoke room. Capacity drives
// the room-suggestion buckets; the two rates feed the pricing tiers.
type Room struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Capacity   int     `json:"capacity"`
	HourlyRate float64 `json:"hourly_rate"`
	PeakRate   float64 `json:"peak_rate"`
}

// Reservation is a stored booking. Start and end times keep the wire
// notation (extended hours permitted on the end) so round-trips through
// storage never lose the next-day encoding.
type Reservation struct {
	ID           int64     `json:"id"`
	RoomID       int64     `json:"room_id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	PartySize    int       `json:"party_size"`
	Language     string    `json:"language,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	TotalCost    float64   `json:"total_cost"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Interval parses the stored times into comparable clock values.
func (r *Reservation) Interval() (clock.Time, clock.Time, error) {
	start, err := clock.Parse(r.StartTime)
	if err != nil {
		return clock.Time{}, clock.Time{}, err
	}
	end, err := clock.Parse(r.EndTime)
	if err != nil {
		return clock.Time{}, clock.Time{}, err
	}
	return start, end, nil
}

// Duration returns the booking length in minutes, crossing midnight
// where the stored times call for it.
func (r *Reservation) Duration() (int, error) {
	start, end, err := r.Interval()
	if err != nil {
		return 0, err
	}
	return clock.Duration(start, end), nil
}

// IsActive reports whether the reservation participates in conflict
// checks and the visible grid.
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}
