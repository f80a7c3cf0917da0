package engine

import (
	"context"
	"fmt"
	"sort"

	"utaroom/internal/clock"
	"utaroom/internal/model"
)

const (
	slotMinutes    = 30
	maxSuggestions = 5
)

// Capacity buckets for room suggestions: small fits parties up to 4,
// medium 5-8, large anything above.
func capacityBucket(n int) int {
	switch {
	case n <= 4:
		return 0
	case n <= 8:
		return 1
	default:
		return 2
	}
}

// PriceEstimate prices a window for a room without persisting
// anything. Served from the non-transactional read path.
func (s *Service) PriceEstimate(ctx context.Context, roomID int64, startStr, endStr string) (*Quote, error) {
	start, end, err := parseWindow(startStr, endStr)
	if err != nil {
		return nil, err
	}
	room, err := getRoom(ctx, s.store, roomID)
	if err != nil {
		return nil, err
	}
	return Price(start, end, room)
}

// CheckAvailability reports whether the room still has at least one
// free 30-minute slot on the date.
func (s *Service) CheckAvailability(ctx context.Context, roomID int64, date string) (bool, error) {
	free, err := s.freeSlots(ctx, roomID, date)
	if err != nil {
		return false, err
	}
	return len(free) > 0, nil
}

// SuggestRooms returns room ids suited to the party size: rooms in the
// matching capacity bucket first, then larger buckets as fallback.
// Rooms too small for the party are never suggested.
func (s *Service) SuggestRooms(ctx context.Context, partySize int) ([]int64, error) {
	if partySize < 1 {
		return nil, &ValidationError{Fields: []string{"party_size"}}
	}
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	want := capacityBucket(partySize)
	candidates := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Capacity >= partySize {
			candidates = append(candidates, room)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		bi := bucketDistance(capacityBucket(candidates[i].Capacity), want)
		bj := bucketDistance(capacityBucket(candidates[j].Capacity), want)
		if bi != bj {
			return bi < bj
		}
		return candidates[i].Capacity < candidates[j].Capacity
	})

	ids := make([]int64, len(candidates))
	for i, room := range candidates {
		ids[i] = room.ID
	}
	return ids, nil
}

func bucketDistance(got, want int) int {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d
}

// SuggestAlternativeTimes returns up to five free 30-minute slot
// starts within business hours, nearest to the desired start first.
func (s *Service) SuggestAlternativeTimes(ctx context.Context, roomID int64, date, desiredStart string) ([]string, error) {
	desired, err := clock.Parse(desiredStart)
	if err != nil {
		return nil, err
	}
	free, err := s.freeSlots(ctx, roomID, date)
	if err != nil {
		return nil, err
	}

	want := normalizedMinutes(desired)
	sort.SliceStable(free, func(i, j int) bool {
		return absInt(free[i]-want) < absInt(free[j]-want)
	})
	if len(free) > maxSuggestions {
		free = free[:maxSuggestions]
	}

	out := make([]string, len(free))
	for i, m := range free {
		out[i] = clock.FromAbsMinutes(m).String()
	}
	return out, nil
}

// freeSlots returns the normalized start minutes of every 30-minute
// slot inside the business window not covered by an active,
// non-parked reservation.
func (s *Service) freeSlots(ctx context.Context, roomID int64, date string) ([]int, error) {
	existing, err := s.store.ListReservations(ctx, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	idle, err := s.store.ListIdleReservationIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list idle: %w", err)
	}
	parked := parkedSet(idle)

	var free []int
	for m := openMinutes; m+slotMinutes <= closeMinutes; m += slotMinutes {
		start := clock.FromAbsMinutes(m)
		end := clock.FromAbsMinutes(m + slotMinutes)
		conflict, err := HasConflict(start, end, existing, 0, parked)
		if err != nil {
			return nil, err
		}
		if !conflict {
			free = append(free, m)
		}
	}
	return free, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
