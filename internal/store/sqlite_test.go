package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utaroom/internal/model"
)

// A file-backed database per test: the connection pool would hand each
// connection its own ":memory:" database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleReservation(roomID int64, date, start, end string) *model.Reservation {
	now := time.Now()
	return &model.Reservation{
		RoomID:       roomID,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		ContactName:  "Aya Tanaka",
		ContactPhone: "+81-90-0000-0000",
		ContactEmail: "aya@example.com",
		PartySize:    3,
		Language:     "ja",
		Status:       model.StatusActive,
		TotalCost:    305.95,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func insert(t *testing.T, db *DB, r *model.Reservation) int64 {
	t.Helper()
	var id int64
	err := db.WithTx(context.Background(), func(tx Tx) error {
		var err error
		id, err = tx.InsertReservation(context.Background(), r)
		return err
	})
	require.NoError(t, err)
	return id
}

func TestNewDB_SeedsDefaultRooms(t *testing.T) {
	db := newTestDB(t)

	rooms, err := db.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 3)

	assert.Equal(t, "Room 1", rooms[0].Name)
	assert.Equal(t, 4, rooms[0].Capacity)
	assert.InDelta(t, 35.0, rooms[0].HourlyRate, 1e-9)
	assert.InDelta(t, 45.0, rooms[0].PeakRate, 1e-9)
	assert.Equal(t, 12, rooms[2].Capacity)
	assert.InDelta(t, 50.0, rooms[2].PeakRate, 1e-9)
}

func TestGetRoom_Missing(t *testing.T) {
	db := newTestDB(t)

	room, err := db.GetRoom(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestReservationRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id := insert(t, db, sampleReservation(1, "2026-09-01", "18:00", "20:00"))
	require.NotZero(t, id)

	got, err := db.GetReservation(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "18:00", got.StartTime)
	assert.Equal(t, "20:00", got.EndTime)
	assert.Equal(t, "Aya Tanaka", got.ContactName)
	assert.Equal(t, "ja", got.Language)
	assert.InDelta(t, 305.95, got.TotalCost, 1e-9)

	got.ContactName = "Kenji Sato"
	got.StartTime = "19:00"
	got.EndTime = "21:00"
	err = db.WithTx(ctx, func(tx Tx) error {
		return tx.UpdateReservation(ctx, got)
	})
	require.NoError(t, err)

	again, err := db.GetReservation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Kenji Sato", again.ContactName)
	assert.Equal(t, "19:00", again.StartTime)

	err = db.WithTx(ctx, func(tx Tx) error {
		return tx.DeleteReservation(ctx, id)
	})
	require.NoError(t, err)

	gone, err := db.GetReservation(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestGetReservation_Missing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetReservation(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListReservations_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	insert(t, db, sampleReservation(1, "2026-09-01", "18:00", "20:00"))
	insert(t, db, sampleReservation(2, "2026-09-01", "12:00", "14:00"))
	insert(t, db, sampleReservation(1, "2026-09-02", "18:00", "20:00"))

	cancelled := sampleReservation(1, "2026-09-01", "21:00", "22:00")
	cancelled.Status = model.StatusCancelled
	insert(t, db, cancelled)

	all, err := db.ListReservations(ctx, 0, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, all, 2, "other dates and cancelled bookings are excluded")
	assert.Equal(t, "12:00", all[0].StartTime, "ordered by start time")

	roomOne, err := db.ListReservations(ctx, 1, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, roomOne, 1)
	assert.Equal(t, int64(1), roomOne[0].RoomID)
}

func TestIdleMembership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id := insert(t, db, sampleReservation(1, "2026-09-01", "18:00", "20:00"))

	err := db.WithTx(ctx, func(tx Tx) error {
		if err := tx.InsertIdleMembership(ctx, id, "2026-09-01"); err != nil {
			return err
		}
		// Parking twice is a no-op, not an error.
		return tx.InsertIdleMembership(ctx, id, "2026-09-01")
	})
	require.NoError(t, err)

	ids, err := db.ListIdleReservationIDs(ctx, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, ids)

	otherDate, err := db.ListIdleReservationIDs(ctx, "2026-09-02")
	require.NoError(t, err)
	assert.Empty(t, otherDate)

	err = db.WithTx(ctx, func(tx Tx) error {
		removed, err := tx.DeleteIdleMembership(ctx, id, "2026-09-01")
		if err != nil {
			return err
		}
		assert.True(t, removed)

		removed, err = tx.DeleteIdleMembership(ctx, id, "2026-09-01")
		if err != nil {
			return err
		}
		assert.False(t, removed, "second delete finds nothing")
		return nil
	})
	require.NoError(t, err)
}

func TestDeleteReservation_CascadesIdleRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id := insert(t, db, sampleReservation(1, "2026-09-01", "18:00", "20:00"))
	err := db.WithTx(ctx, func(tx Tx) error {
		return tx.InsertIdleMembership(ctx, id, "2026-09-01")
	})
	require.NoError(t, err)

	err = db.WithTx(ctx, func(tx Tx) error {
		return tx.DeleteReservation(ctx, id)
	})
	require.NoError(t, err)

	ids, err := db.ListIdleReservationIDs(ctx, "2026-09-01")
	require.NoError(t, err)
	assert.Empty(t, ids, "ledger rows go with their reservation")
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.InsertReservation(ctx, sampleReservation(1, "2026-09-01", "18:00", "20:00")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := db.ListReservations(ctx, 0, "2026-09-01")
	require.NoError(t, err)
	assert.Empty(t, all, "failed transaction leaves no trace")
}

func TestWithTx_ReadsSeeWritesInTx(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx Tx) error {
		id, err := tx.InsertReservation(ctx, sampleReservation(1, "2026-09-01", "18:00", "20:00"))
		if err != nil {
			return err
		}
		got, err := tx.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		require.NotNil(t, got, "uncommitted write is visible inside its own transaction")
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateReservation_Missing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r := sampleReservation(1, "2026-09-01", "18:00", "20:00")
	r.ID = 999
	err := db.WithTx(ctx, func(tx Tx) error {
		return tx.UpdateReservation(ctx, r)
	})
	assert.Error(t, err)
}
