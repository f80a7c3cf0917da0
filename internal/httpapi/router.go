package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires every API route onto the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler, readyz echo.HandlerFunc) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/readyz", readyz)

	v1 := e.Group("/v1")
	v1.POST("/reservations", h.CreateReservation)
	v1.GET("/reservations/:id", h.GetReservation)
	v1.PATCH("/reservations/:id", h.EditReservation)
	v1.POST("/reservations/:id/move", h.MoveReservation)
	v1.DELETE("/reservations/:id", h.CancelReservation)
	v1.POST("/reservations/:id/park", h.ParkReservation)
	v1.POST("/reservations/:id/unpark", h.UnparkReservation)

	v1.GET("/schedule", h.Schedule)
	v1.GET("/availability", h.Availability)
	v1.GET("/price", h.PriceEstimate)
	v1.GET("/rooms", h.ListRooms)
	v1.GET("/rooms/suggest", h.SuggestRooms)
	v1.GET("/slots", h.SuggestSlots)
	v1.GET("/reports/daily", h.DailyReport)
}
