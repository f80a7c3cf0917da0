package report

import (
	"fmt"

	"utaroom/internal/engine"
)

var reservationColumns = []string{
	"ID", "Start", "End", "Contact", "Phone", "Email",
	"Party Size", "Language", "Notes", "Total ($)",
}

// WriteDailyWorkbook renders a daily grid into a workbook: one sheet
// per room plus an Idle sheet for parked reservations.
func WriteDailyWorkbook(w ExcelWriter, grid *engine.DailyGrid) error {
	for _, rs := range grid.Rooms {
		sheet := fmt.Sprintf("%s (%s)", rs.Room.Name, grid.Date)
		if err := w.AddSheet(sheet); err != nil {
			return err
		}
		if err := w.WriteHeader(reservationColumns); err != nil {
			return err
		}
		for _, r := range rs.Reservations {
			row := []any{
				r.ID, r.StartTime, r.EndTime, r.ContactName, r.ContactPhone,
				r.ContactEmail, r.PartySize, r.Language, r.Notes, r.TotalCost,
			}
			if err := w.WriteRow(row); err != nil {
				return err
			}
		}
	}

	if len(grid.Idle) > 0 {
		if err := w.AddSheet("Idle"); err != nil {
			return err
		}
		if err := w.WriteHeader(reservationColumns); err != nil {
			return err
		}
		for _, r := range grid.Idle {
			row := []any{
				r.ID, r.StartTime, r.EndTime, r.ContactName, r.ContactPhone,
				r.ContactEmail, r.PartySize, r.Language, r.Notes, r.TotalCost,
			}
			if err := w.WriteRow(row); err != nil {
				return err
			}
		}
	}
	return nil
}
