package report

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utaroom/internal/engine"
	"utaroom/internal/model"
)

type fakeWriter struct {
	sheets  []string
	headers [][]string
	rows    map[string][][]any
	current string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{rows: make(map[string][][]any)}
}

func (f *fakeWriter) AddSheet(name string) error {
	f.sheets = append(f.sheets, name)
	f.current = name
	return nil
}

func (f *fakeWriter) WriteHeader(columns []string) error {
	f.headers = append(f.headers, columns)
	return nil
}

func (f *fakeWriter) WriteRow(row []any) error {
	f.rows[f.current] = append(f.rows[f.current], row)
	return nil
}

func (f *fakeWriter) Save(io.Writer) error { return nil }
func (f *fakeWriter) Close() error         { return nil }

func sampleGrid() *engine.DailyGrid {
	return &engine.DailyGrid{
		Date: "2026-09-01",
		Rooms: []engine.RoomSchedule{
			{
				Room: model.Room{ID: 1, Name: "Room 1", Capacity: 4},
				Reservations: []model.Reservation{
					{ID: 1, StartTime: "18:00", EndTime: "20:00", ContactName: "Aya Tanaka", TotalCost: 94.95},
				},
			},
			{Room: model.Room{ID: 2, Name: "Room 2", Capacity: 8}},
		},
		Idle: []model.Reservation{
			{ID: 2, StartTime: "12:00", EndTime: "14:00", ContactName: "Kenji Sato"},
		},
	}
}

func TestWriteDailyWorkbook(t *testing.T) {
	w := newFakeWriter()
	require.NoError(t, WriteDailyWorkbook(w, sampleGrid()))

	assert.Equal(t, []string{"Room 1 (2026-09-01)", "Room 2 (2026-09-01)", "Idle"}, w.sheets)
	require.Len(t, w.headers, 3, "every sheet carries the header row")

	rows := w.rows["Room 1 (2026-09-01)"]
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0][0])
	assert.Equal(t, "Aya Tanaka", rows[0][3])

	assert.Empty(t, w.rows["Room 2 (2026-09-01)"], "empty room still gets a sheet")

	idle := w.rows["Idle"]
	require.Len(t, idle, 1)
	assert.Equal(t, "Kenji Sato", idle[0][3])
}

func TestWriteDailyWorkbook_NoIdleSheetWhenEmpty(t *testing.T) {
	grid := sampleGrid()
	grid.Idle = nil

	w := newFakeWriter()
	require.NoError(t, WriteDailyWorkbook(w, grid))
	assert.NotContains(t, w.sheets, "Idle")
}

func TestExcelizeWriter_RequiresSheet(t *testing.T) {
	w := NewExcelizeWriter()
	defer w.Close()

	assert.Error(t, w.WriteHeader([]string{"A"}))
	assert.Error(t, w.WriteRow([]any{"a"}))

	require.NoError(t, w.AddSheet("Sheet with a very long name that exceeds the cap"))
	assert.NoError(t, w.WriteHeader([]string{"A"}))
}
