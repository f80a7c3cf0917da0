// Package engine implements the reservation scheduling and pricing
// rules: business-hours validation, overlap detection, tier pricing
// and the idle ledger, orchestrated by Service over a transactional
// store.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"utaroom/internal/clock"
	"utaroom/internal/events"
	"utaroom/internal/model"
	"utaroom/internal/store"
)

// Service orchestrates booking mutations. Every mutation runs as one
// store transaction so the conflict check and the write it guards are
// indivisible; two concurrent requests for the same slot end up with
// one stored reservation and one conflict error.
type Service struct {
	store  store.Store
	bus    *events.EventBus
	logger *zerolog.Logger
}

// NewService wires the engine to its collaborators. bus may be nil
// when no subscribers are interested.
func NewService(st store.Store, bus *events.EventBus, logger *zerolog.Logger) *Service {
	return &Service{store: st, bus: bus, logger: logger}
}

// CreateRequest carries a new booking. Times use the wire notation;
// the end may use extended hours to land on the next day.
type CreateRequest struct {
	RoomID       int64  `json:"room_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
	PartySize    int    `json:"party_size"`
	Language     string `json:"language"`
	Notes        string `json:"notes"`
}

func (req *CreateRequest) validate() error {
	var fields []string
	if req.ContactName == "" {
		fields = append(fields, "contact_name")
	}
	if req.ContactPhone == "" {
		fields = append(fields, "contact_phone")
	}
	if req.ContactEmail == "" {
		fields = append(fields, "contact_email")
	}
	if req.PartySize < 1 {
		fields = append(fields, "party_size")
	}
	if req.RoomID <= 0 {
		fields = append(fields, "room_id")
	}
	if !validDate(req.Date) {
		fields = append(fields, "date")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// parseWindow normalizes both wire times and checks the business
// window. MalformedTime passes through from the clock package.
func parseWindow(startStr, endStr string) (clock.Time, clock.Time, error) {
	start, err := clock.Parse(startStr)
	if err != nil {
		return clock.Time{}, clock.Time{}, err
	}
	end, err := clock.Parse(endStr)
	if err != nil {
		return clock.Time{}, clock.Time{}, err
	}
	if !IsWithinBusinessHours(start, end) {
		return clock.Time{}, clock.Time{}, fmt.Errorf("%w: %s-%s", ErrOutOfHours, startStr, endStr)
	}
	return start, end, nil
}

// CreateBooking validates, checks conflicts, prices and persists a new
// reservation in a single transaction.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*model.Reservation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	var created *model.Reservation
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		room, err := getRoom(ctx, tx, req.RoomID)
		if err != nil {
			return err
		}
		if err := s.ensureFree(ctx, tx, req.RoomID, req.Date, start, end, 0); err != nil {
			return err
		}
		quote, err := Price(start, end, room)
		if err != nil {
			return err
		}

		now := time.Now()
		r := &model.Reservation{
			RoomID:       req.RoomID,
			Date:         req.Date,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
			ContactEmail: req.ContactEmail,
			PartySize:    req.PartySize,
			Language:     req.Language,
			Notes:        req.Notes,
			Status:       model.StatusActive,
			TotalCost:    quote.Total,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		id, err := tx.InsertReservation(ctx, r)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		r.ID = id
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("reservation_id", created.ID).
		Int64("room_id", created.RoomID).
		Str("date", created.Date).
		Float64("total", created.TotalCost).
		Msg("reservation created")
	s.publish(events.ReservationCreated, created)
	return created, nil
}

// MoveRequest changes where or when an existing booking takes place.
// Nil fields keep the stored value. When only StartTime is given the
// booking keeps its duration and slides to the new start.
type MoveRequest struct {
	RoomID    *int64  `json:"room_id"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// RescheduleBooking moves a booking to a new room, date or time,
// re-running the hours and conflict checks (excluding the booking
// itself) and repricing when room or time changed. On any failure the
// original booking is left untouched.
func (s *Service) RescheduleBooking(ctx context.Context, id int64, req MoveRequest) (*model.Reservation, error) {
	var moved *model.Reservation
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		r, err := getReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.applyTimeChange(ctx, tx, r, req, &moved)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("reservation_id", moved.ID).
		Int64("room_id", moved.RoomID).
		Str("start", moved.StartTime).
		Msg("reservation moved")
	s.publish(events.ReservationMoved, moved)
	return moved, nil
}

// EditRequest updates arbitrary reservation fields. Time or room
// changes go through the full validation path; everything else updates
// as-is.
type EditRequest struct {
	MoveRequest
	ContactName  *string `json:"contact_name"`
	ContactPhone *string `json:"contact_phone"`
	ContactEmail *string `json:"contact_email"`
	PartySize    *int    `json:"party_size"`
	Language     *string `json:"language"`
	Notes        *string `json:"notes"`
	Status       *string `json:"status"`
}

func (req *EditRequest) touchesSchedule() bool {
	return req.RoomID != nil || req.Date != nil || req.StartTime != nil || req.EndTime != nil
}

// EditBooking applies a field update. Contact fields are validated for
// emptiness; schedule fields re-run hours, conflict and price checks.
func (s *Service) EditBooking(ctx context.Context, id int64, req EditRequest) (*model.Reservation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var updated *model.Reservation
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		r, err := getReservation(ctx, tx, id)
		if err != nil {
			return err
		}

		applyString(&r.ContactName, req.ContactName)
		applyString(&r.ContactPhone, req.ContactPhone)
		applyString(&r.ContactEmail, req.ContactEmail)
		applyString(&r.Language, req.Language)
		applyString(&r.Notes, req.Notes)
		applyString(&r.Status, req.Status)
		if req.PartySize != nil {
			r.PartySize = *req.PartySize
		}

		if req.touchesSchedule() {
			return s.applyTimeChange(ctx, tx, r, req.MoveRequest, &updated)
		}

		r.UpdatedAt = time.Now()
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.ReservationUpdated, updated)
	return updated, nil
}

func (req *EditRequest) validate() error {
	var fields []string
	if req.ContactName != nil && *req.ContactName == "" {
		fields = append(fields, "contact_name")
	}
	if req.ContactPhone != nil && *req.ContactPhone == "" {
		fields = append(fields, "contact_phone")
	}
	if req.ContactEmail != nil && *req.ContactEmail == "" {
		fields = append(fields, "contact_email")
	}
	if req.PartySize != nil && *req.PartySize < 1 {
		fields = append(fields, "party_size")
	}
	if req.Date != nil && !validDate(*req.Date) {
		fields = append(fields, "date")
	}
	if req.Status != nil && *req.Status != model.StatusActive && *req.Status != model.StatusCancelled {
		fields = append(fields, "status")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// applyTimeChange computes the target window, re-validates it, checks
// conflicts excluding the booking itself and reprices when the room or
// times changed. Runs inside the caller's transaction.
func (s *Service) applyTimeChange(ctx context.Context, tx store.Tx, r *model.Reservation, req MoveRequest, out **model.Reservation) error {
	newRoomID := r.RoomID
	if req.RoomID != nil {
		newRoomID = *req.RoomID
	}
	newDate := r.Date
	if req.Date != nil {
		if !validDate(*req.Date) {
			return &ValidationError{Fields: []string{"date"}}
		}
		newDate = *req.Date
	}

	newStartStr := r.StartTime
	if req.StartTime != nil {
		newStartStr = *req.StartTime
	}
	newStart, err := clock.Parse(newStartStr)
	if err != nil {
		return err
	}

	var newEnd clock.Time
	var newEndStr string
	if req.EndTime != nil {
		newEnd, err = clock.Parse(*req.EndTime)
		if err != nil {
			return err
		}
		newEndStr = *req.EndTime
	} else {
		// Duration-preserving move: the booking keeps its stored
		// length and slides to the new start.
		duration, err := r.Duration()
		if err != nil {
			return err
		}
		newEnd = newStart.AddMinutes(duration)
		newEndStr = newEnd.String()
	}

	if !IsWithinBusinessHours(newStart, newEnd) {
		return fmt.Errorf("%w: %s-%s", ErrOutOfHours, newStartStr, newEndStr)
	}
	if err := s.ensureFree(ctx, tx, newRoomID, newDate, newStart, newEnd, r.ID); err != nil {
		return err
	}

	timeChanged := newStartStr != r.StartTime || newEndStr != r.EndTime || newDate != r.Date
	roomChanged := newRoomID != r.RoomID
	if timeChanged || roomChanged {
		room, err := getRoom(ctx, tx, newRoomID)
		if err != nil {
			return err
		}
		quote, err := Price(newStart, newEnd, room)
		if err != nil {
			return err
		}
		r.TotalCost = quote.Total
	}

	r.RoomID = newRoomID
	r.Date = newDate
	r.StartTime = newStartStr
	r.EndTime = newEndStr
	r.UpdatedAt = time.Now()
	if err := tx.UpdateReservation(ctx, r); err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	*out = r
	return nil
}

// CancelBooking deletes the reservation; idle memberships cascade away
// with it so no ledger row outlives its reservation.
func (s *Service) CancelBooking(ctx context.Context, id int64) error {
	var cancelled *model.Reservation
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		r, err := getReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteReservation(ctx, id); err != nil {
			return fmt.Errorf("delete reservation: %w", err)
		}
		cancelled = r
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("reservation_id", id).Msg("reservation cancelled")
	s.publish(events.ReservationCancelled, cancelled)
	return nil
}

// GetBooking returns a stored reservation.
func (s *Service) GetBooking(ctx context.Context, id int64) (*model.Reservation, error) {
	return getReservation(ctx, s.store, id)
}

// ensureFree loads the active bookings and idle ledger for the room
// and date and rejects the window on overlap.
func (s *Service) ensureFree(ctx context.Context, tx store.Tx, roomID int64, date string, start, end clock.Time, excludeID int64) error {
	existing, err := tx.ListReservations(ctx, roomID, date)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}
	idle, err := tx.ListIdleReservationIDs(ctx, date)
	if err != nil {
		return fmt.Errorf("list idle: %w", err)
	}
	conflict, err := HasConflict(start, end, existing, excludeID, parkedSet(idle))
	if err != nil {
		return err
	}
	if conflict {
		return fmt.Errorf("room %d on %s: %w", roomID, date, ErrRoomUnavailable)
	}
	return nil
}

func (s *Service) publish(eventType string, r *model.Reservation) {
	if s.bus == nil || r == nil {
		return
	}
	s.bus.Publish(events.Event{Type: eventType, Date: r.Date, RoomID: r.RoomID, Payload: r})
}

func getRoom(ctx context.Context, r store.Reader, id int64) (*model.Room, error) {
	room, err := r.GetRoom(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", id, ErrNotFound)
	}
	return room, nil
}

func getReservation(ctx context.Context, r store.Reader, id int64) (*model.Reservation, error) {
	res, err := r.GetReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return res, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
