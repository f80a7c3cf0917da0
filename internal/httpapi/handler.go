// Package httpapi exposes the booking engine over a JSON HTTP API.
// All business rules live in the engine; handlers only parse, call and
// translate errors to status codes.
package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"utaroom/internal/cache"
	"utaroom/internal/clock"
	"utaroom/internal/engine"
	"utaroom/internal/metrics"
	"utaroom/internal/report"
)

// Handler carries the API dependencies.
type Handler struct {
	svc      *engine.Service
	schedule *cache.ScheduleCache
	logger   *zerolog.Logger
}

func NewHandler(svc *engine.Service, schedule *cache.ScheduleCache, logger *zerolog.Logger) *Handler {
	return &Handler{svc: svc, schedule: schedule, logger: logger}
}

// CreateReservation handles POST /v1/reservations.
func (h *Handler) CreateReservation(c echo.Context) error {
	var req engine.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.CreateBooking(c.Request().Context(), req)
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// GetReservation handles GET /v1/reservations/:id.
func (h *Handler) GetReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// EditReservation handles PATCH /v1/reservations/:id.
func (h *Handler) EditReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req engine.EditRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.EditBooking(c.Request().Context(), id, req)
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// MoveReservation handles POST /v1/reservations/:id/move.
func (h *Handler) MoveReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req engine.MoveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.RescheduleBooking(c.Request().Context(), id, req)
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// CancelReservation handles DELETE /v1/reservations/:id.
func (h *Handler) CancelReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.CancelBooking(c.Request().Context(), id); err != nil {
		return h.translate(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ParkReservation handles POST /v1/reservations/:id/park.
func (h *Handler) ParkReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	date := c.QueryParam("date")
	if err := h.svc.Park(c.Request().Context(), id, date); err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"parked": true})
}

// UnparkReservation handles POST /v1/reservations/:id/unpark.
func (h *Handler) UnparkReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	date := c.QueryParam("date")
	if err := h.svc.Unpark(c.Request().Context(), id, date); err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"parked": false})
}

// Schedule handles GET /v1/schedule?date=. Served through the Redis
// cache when configured; mutations invalidate the date.
func (h *Handler) Schedule(c echo.Context) error {
	date := c.QueryParam("date")

	var cached engine.DailyGrid
	if h.schedule.Get(c.Request().Context(), date, &cached) {
		return c.JSON(http.StatusOK, &cached)
	}

	grid, err := h.svc.Schedule(c.Request().Context(), date)
	if err != nil {
		return h.translate(c, err)
	}
	h.schedule.Set(c.Request().Context(), date, grid)
	return c.JSON(http.StatusOK, grid)
}

// Availability handles GET /v1/availability?room_id=&date=.
func (h *Handler) Availability(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.QueryParam("room_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room_id")
	}
	available, err := h.svc.CheckAvailability(c.Request().Context(), roomID, c.QueryParam("date"))
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"available": available})
}

// PriceEstimate handles GET /v1/price?room_id=&start=&end=.
func (h *Handler) PriceEstimate(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.QueryParam("room_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room_id")
	}
	quote, err := h.svc.PriceEstimate(c.Request().Context(), roomID, c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// ListRooms handles GET /v1/rooms.
func (h *Handler) ListRooms(c echo.Context) error {
	rooms, err := h.svc.ListRooms(c.Request().Context())
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"rooms": rooms})
}

// SuggestRooms handles GET /v1/rooms/suggest?party_size=.
func (h *Handler) SuggestRooms(c echo.Context) error {
	partySize, err := strconv.Atoi(c.QueryParam("party_size"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid party_size")
	}
	ids, err := h.svc.SuggestRooms(c.Request().Context(), partySize)
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"room_ids": ids})
}

// SuggestSlots handles GET /v1/slots?room_id=&date=&from=.
func (h *Handler) SuggestSlots(c echo.Context) error {
	roomID, err := strconv.ParseInt(c.QueryParam("room_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room_id")
	}
	slots, err := h.svc.SuggestAlternativeTimes(c.Request().Context(), roomID, c.QueryParam("date"), c.QueryParam("from"))
	if err != nil {
		return h.translate(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"slots": slots})
}

// DailyReport handles GET /v1/reports/daily?date= and streams an xlsx
// workbook.
func (h *Handler) DailyReport(c echo.Context) error {
	date := c.QueryParam("date")
	grid, err := h.svc.Schedule(c.Request().Context(), date)
	if err != nil {
		return h.translate(c, err)
	}

	w := report.NewExcelizeWriter()
	defer w.Close()
	if err := report.WriteDailyWorkbook(w, grid); err != nil {
		h.logger.Error().Err(err).Msg("build daily report")
		return echo.NewHTTPError(http.StatusInternalServerError, "report failed")
	}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		h.logger.Error().Err(err).Msg("save daily report")
		return echo.NewHTTPError(http.StatusInternalServerError, "report failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="reservations_`+date+`.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// translate maps engine errors onto HTTP responses. Conflict bodies
// carry a `conflict` flag so the grid UI can tell occupancy apart from
// other failures.
func (h *Handler) translate(c echo.Context, err error) error {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, clock.ErrMalformedTime):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, engine.ErrOutOfHours):
		return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, engine.ErrRoomUnavailable):
		metrics.IncConflictRejected()
		return c.JSON(http.StatusConflict, map[string]any{
			"error":    "time slot already occupied",
			"conflict": true,
		})
	case errors.Is(err, engine.ErrNotParked):
		return c.JSON(http.StatusConflict, map[string]any{"error": err.Error()})
	case errors.Is(err, engine.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("internal error")
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}
