package engine

import (
	"context"
	"fmt"

	"utaroom/internal/model"
)

// RoomSchedule is one room's column in the daily grid.
type RoomSchedule struct {
	Room         model.Room          `json:"room"`
	Reservations []model.Reservation `json:"reservations"`
}

// DailyGrid is the schedule for one date: active reservations per room
// plus the parked reservations held off the grid.
type DailyGrid struct {
	Date  string              `json:"date"`
	Rooms []RoomSchedule      `json:"rooms"`
	Idle  []model.Reservation `json:"idle_reservations"`
}

// Schedule assembles the daily grid. It is a read: eventual
// consistency is fine here, only conflict-guarded writes need the
// transaction boundary.
func (s *Service) Schedule(ctx context.Context, date string) (*DailyGrid, error) {
	if !validDate(date) {
		return nil, &ValidationError{Fields: []string{"date"}}
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	reservations, err := s.store.ListReservations(ctx, 0, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	idleIDs, err := s.store.ListIdleReservationIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list idle: %w", err)
	}
	parked := parkedSet(idleIDs)

	grid := &DailyGrid{Date: date}
	byRoom := make(map[int64][]model.Reservation)
	for _, r := range reservations {
		if parked[r.ID] {
			grid.Idle = append(grid.Idle, r)
			continue
		}
		byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
	}
	for _, room := range rooms {
		grid.Rooms = append(grid.Rooms, RoomSchedule{
			Room:         room,
			Reservations: byRoom[room.ID],
		})
	}
	return grid, nil
}

// ListRooms exposes the room reference data.
func (s *Service) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.store.ListRooms(ctx)
}
