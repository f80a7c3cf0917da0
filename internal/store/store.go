// Package store defines the narrow persistence interface the booking
// engine depends on, plus the SQLite implementation. The engine never
// touches SQL directly; mutations run inside a transaction the engine
// scopes via WithTx so a conflict check and the write it guards are
// indivisible.
package store

import (
	"context"

	"utaroom/internal/model"
)

// Reader is the read surface shared by the store and its transactions.
type Reader interface {
	GetRoom(ctx context.Context, id int64) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	// ListReservations returns active reservations for a date, narrowed
	// to one room when roomID > 0.
	ListReservations(ctx context.Context, roomID int64, date string) ([]model.Reservation, error)
	ListIdleReservationIDs(ctx context.Context, date string) ([]int64, error)
}

// Writer is the mutation surface, only reachable inside a transaction.
type Writer interface {
	InsertReservation(ctx context.Context, r *model.Reservation) (int64, error)
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id int64) error
	// InsertIdleMembership is idempotent: parking an already parked
	// reservation is a no-op.
	InsertIdleMembership(ctx context.Context, reservationID int64, date string) error
	// DeleteIdleMembership reports whether a row was actually removed.
	DeleteIdleMembership(ctx context.Context, reservationID int64, date string) (bool, error)
}

// Tx is the per-transaction view of the store.
type Tx interface {
	Reader
	Writer
}

// Store is what the engine is constructed with. Reads outside WithTx
// may observe slightly stale state; anything that depends on a conflict
// check must go through WithTx.
type Store interface {
	Reader
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
