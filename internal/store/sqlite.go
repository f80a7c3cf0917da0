package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"utaroom/internal/model"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same query
// methods serve reads inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements Reader and Writer over a dbtx.
type queries struct {
	db dbtx
}

// DB is the SQLite-backed store.
type DB struct {
	queries
	sqldb *sql.DB
}

// NewDB opens the database at path, enables foreign keys, runs
// migrations and seeds the default rooms.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	s := &DB{queries: queries{db: db}, sqldb: db}
	if err := s.ensureDefaultRooms(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			capacity INTEGER NOT NULL,
			hourly_rate REAL NOT NULL,
			peak_rate REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			contact_name TEXT NOT NULL,
			contact_phone TEXT NOT NULL,
			contact_email TEXT NOT NULL,
			party_size INTEGER NOT NULL,
			language TEXT,
			notes TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			total_cost REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (room_id) REFERENCES rooms(id)
		)`,

		// Idle memberships cascade away with their reservation so no
		// ledger row can outlive it.
		`CREATE TABLE IF NOT EXISTS idle_reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reservation_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (reservation_id, date),
			FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_room_date ON reservations(room_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_idle_date ON idle_reservations(date)`,
	}

	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// ensureDefaultRooms seeds the room fixtures on first start.
func (d *DB) ensureDefaultRooms(ctx context.Context) error {
	var count int
	if err := d.sqldb.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count); err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []model.Room{
		{Name: "Room 1", Capacity: 4, HourlyRate: 35, PeakRate: 45},
		{Name: "Room 2", Capacity: 8, HourlyRate: 35, PeakRate: 45},
		{Name: "Room 3", Capacity: 12, HourlyRate: 40, PeakRate: 50},
	}
	for _, room := range defaults {
		_, err := d.sqldb.ExecContext(ctx,
			"INSERT INTO rooms (name, capacity, hourly_rate, peak_rate) VALUES (?, ?, ?, ?)",
			room.Name, room.Capacity, room.HourlyRate, room.PeakRate,
		)
		if err != nil {
			return fmt.Errorf("seed room %s: %w", room.Name, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (d *DB) Close() error { return d.sqldb.Close() }

// PingContext checks liveness for readiness probes.
func (d *DB) PingContext(ctx context.Context) error { return d.sqldb.PingContext(ctx) }

// Path-level backup support needs the raw handle.
func (d *DB) SQL() *sql.DB { return d.sqldb }

// WithTx runs fn inside a transaction, rolling back on error. The
// conflict check and the write it guards always share one transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := d.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- Reader ---

func (q queries) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	var room model.Room
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, capacity, hourly_rate, peak_rate FROM rooms WHERE id = ?",
		id,
	).Scan(&room.ID, &room.Name, &room.Capacity, &room.HourlyRate, &room.PeakRate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (q queries) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, capacity, hourly_rate, peak_rate FROM rooms ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.HourlyRate, &room.PeakRate); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

const reservationColumns = `id, room_id, date, start_time, end_time,
	contact_name, contact_phone, contact_email, party_size,
	language, notes, status, total_cost, created_at, updated_at`

func (q queries) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id,
	)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (q queries) ListReservations(ctx context.Context, roomID int64, date string) ([]model.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE date = ? AND status = 'active'`
	args := []any{date}
	if roomID > 0 {
		query += " AND room_id = ?"
		args = append(args, roomID)
	}
	query += " ORDER BY start_time"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}

func (q queries) ListIdleReservationIDs(ctx context.Context, date string) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT reservation_id FROM idle_reservations WHERE date = ?", date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Writer ---

func (q queries) InsertReservation(ctx context.Context, r *model.Reservation) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		INSERT INTO reservations (
			room_id, date, start_time, end_time,
			contact_name, contact_phone, contact_email, party_size,
			language, notes, status, total_cost, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RoomID, r.Date, r.StartTime, r.EndTime,
		r.ContactName, r.ContactPhone, r.ContactEmail, r.PartySize,
		nullable(r.Language), nullable(r.Notes), r.Status, r.TotalCost,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (q queries) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	result, err := q.db.ExecContext(ctx, `
		UPDATE reservations SET
			room_id = ?, date = ?, start_time = ?, end_time = ?,
			contact_name = ?, contact_phone = ?, contact_email = ?, party_size = ?,
			language = ?, notes = ?, status = ?, total_cost = ?, updated_at = ?
		WHERE id = ?`,
		r.RoomID, r.Date, r.StartTime, r.EndTime,
		r.ContactName, r.ContactPhone, r.ContactEmail, r.PartySize,
		nullable(r.Language), nullable(r.Notes), r.Status, r.TotalCost,
		r.UpdatedAt, r.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q queries) DeleteReservation(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (q queries) InsertIdleMembership(ctx context.Context, reservationID int64, date string) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO idle_reservations (reservation_id, date) VALUES (?, ?)",
		reservationID, date,
	)
	return err
}

func (q queries) DeleteIdleMembership(ctx context.Context, reservationID int64, date string) (bool, error) {
	result, err := q.db.ExecContext(ctx,
		"DELETE FROM idle_reservations WHERE reservation_id = ? AND date = ?",
		reservationID, date,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanReservation(row scannable) (*model.Reservation, error) {
	var r model.Reservation
	var language, notes sql.NullString
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(
		&r.ID, &r.RoomID, &r.Date, &r.StartTime, &r.EndTime,
		&r.ContactName, &r.ContactPhone, &r.ContactEmail, &r.PartySize,
		&language, &notes, &r.Status, &r.TotalCost, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if language.Valid {
		r.Language = language.String
	}
	if notes.Valid {
		r.Notes = notes.String
	}
	if createdAt.Valid {
		r.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		r.UpdatedAt = updatedAt.Time
	}
	return &r, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
