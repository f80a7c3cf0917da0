package engine

import (
	"fmt"
	"math"

	"utaroom/internal/clock"
	"utaroom/internal/model"
)

// TaxRate is applied once to the summed segment costs.
const TaxRate = 0.055

// Tier labels, also used on the wire in price breakdowns.
const (
	TierEarlyBird = "Early Bird"
	TierPrimeTime = "Prime Time"
	TierLateNight = "Late Night"
)

// tier is a clock-hour range on the normalized business-day axis with
// the room rate field it charges.
type tier struct {
	label string
	from  int // normalized minutes, inclusive
	to    int // normalized minutes, exclusive
	peak  bool
}

var tiers = []tier{
	{label: TierEarlyBird, from: 11 * 60, to: 18 * 60, peak: false},
	{label: TierPrimeTime, from: 18 * 60, to: 21 * 60, peak: true},
	{label: TierLateNight, from: 21 * 60, to: 25 * 60, peak: true},
}

// Segment is one priced slice of a booking. Hours are fractional for
// bookings that start or end mid-hour; Cost is rounded for display but
// totals accumulate unrounded.
type Segment struct {
	Tier  string  `json:"tier"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
	Rate  float64 `json:"rate"`
	Cost  float64 `json:"cost"`
}

// Quote is the result of pricing a booking.
type Quote struct {
	Subtotal float64   `json:"subtotal"`
	Total    float64   `json:"total"` // tax-inclusive
	Segments []Segment `json:"segments"`
}

// Price partitions [start, end) at tier boundaries, charges each slice
// at its tier rate, and applies tax to the unrounded sum. Instants in
// the closed band signal ErrClosedHours; validation should have caught
// them before pricing is reached.
func Price(start, end clock.Time, room *model.Room) (*Quote, error) {
	s := normalizedMinutes(start)
	e := normalizedMinutes(end)
	if e <= s {
		return nil, fmt.Errorf("%w: %s-%s", ErrClosedHours, start, end)
	}

	quote := &Quote{}
	cur := s
	for cur < e {
		t, ok := tierAt(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrClosedHours, clock.FromAbsMinutes(cur))
		}
		segEnd := t.to
		if e < segEnd {
			segEnd = e
		}
		rate := room.HourlyRate
		if t.peak {
			rate = room.PeakRate
		}
		hours := float64(segEnd-cur) / 60
		cost := rate * hours
		quote.Subtotal += cost
		quote.Segments = append(quote.Segments, Segment{
			Tier:  t.label,
			Start: clock.FromAbsMinutes(cur).String(),
			End:   clock.FromAbsMinutes(segEnd).String(),
			Hours: hours,
			Rate:  rate,
			Cost:  round2(cost),
		})
		cur = segEnd
	}

	quote.Total = round2(quote.Subtotal * (1 + TaxRate))
	return quote, nil
}

func tierAt(minutes int) (tier, bool) {
	for _, t := range tiers {
		if minutes >= t.from && minutes < t.to {
			return t, true
		}
	}
	return tier{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
