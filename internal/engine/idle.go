package engine

import (
	"context"
	"fmt"

	"utaroom/internal/events"
	"utaroom/internal/store"
)

// Park moves a reservation into the idle ledger for a date. While
// parked it is excluded from the grid and from conflict checks, but
// its stored time and room are untouched. Parking twice is a no-op.
func (s *Service) Park(ctx context.Context, id int64, date string) error {
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getReservation(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.InsertIdleMembership(ctx, id, date); err != nil {
			return fmt.Errorf("insert idle membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("reservation_id", id).Str("date", date).Msg("reservation parked")
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.ReservationParked, Date: date})
	}
	return nil
}

// Unpark removes the idle membership, restoring the reservation to the
// active grid with its stored time and room intact.
func (s *Service) Unpark(ctx context.Context, id int64, date string) error {
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		removed, err := tx.DeleteIdleMembership(ctx, id, date)
		if err != nil {
			return fmt.Errorf("delete idle membership: %w", err)
		}
		if !removed {
			return fmt.Errorf("reservation %d on %s: %w", id, date, ErrNotParked)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("reservation_id", id).Str("date", date).Msg("reservation unparked")
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.ReservationUnparked, Date: date})
	}
	return nil
}

// IsParked reports whether the reservation sits in the idle ledger for
// the date.
func (s *Service) IsParked(ctx context.Context, id int64, date string) (bool, error) {
	ids, err := s.store.ListIdleReservationIDs(ctx, date)
	if err != nil {
		return false, fmt.Errorf("list idle: %w", err)
	}
	for _, parked := range ids {
		if parked == id {
			return true, nil
		}
	}
	return false, nil
}
