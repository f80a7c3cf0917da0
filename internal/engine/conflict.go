package engine

import (
	"utaroom/internal/clock"
	"utaroom/internal/model"
)

// HasConflict decides whether the candidate interval overlaps any
// active reservation in existing. Intervals are half-open [start, end)
// on the normalized business-day axis: two bookings conflict iff
// candStart < exEnd && candEnd > exStart. Skipped entirely:
//   - the reservation being edited (excludeID, 0 to exclude none),
//   - cancelled reservations,
//   - reservations parked in the idle ledger for that date.
func HasConflict(candStart, candEnd clock.Time, existing []model.Reservation, excludeID int64, parked map[int64]bool) (bool, error) {
	cs := normalizedMinutes(candStart)
	ce := normalizedMinutes(candEnd)

	for i := range existing {
		r := &existing[i]
		if r.ID == excludeID || !r.IsActive() || parked[r.ID] {
			continue
		}
		start, end, err := r.Interval()
		if err != nil {
			return false, err
		}
		es := normalizedMinutes(start)
		ee := normalizedMinutes(end)
		if cs < ee && ce > es {
			return true, nil
		}
	}
	return false, nil
}

// parkedSet turns the idle ledger's id list into a lookup set.
func parkedSet(ids []int64) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
