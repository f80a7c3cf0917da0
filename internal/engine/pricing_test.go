package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utaroom/internal/clock"
	"utaroom/internal/model"
)

var standardRoom = &model.Room{ID: 1, Name: "Room 1", Capacity: 4, HourlyRate: 35, PeakRate: 45}

func TestPrice_TwoTierEvening(t *testing.T) {
	quote, err := Price(mustParse(t, "11:00"), mustParse(t, "19:00"), standardRoom)
	require.NoError(t, err)

	require.Len(t, quote.Segments, 2)

	early := quote.Segments[0]
	assert.Equal(t, TierEarlyBird, early.Tier)
	assert.Equal(t, "11:00", early.Start)
	assert.Equal(t, "18:00", early.End)
	assert.InDelta(t, 7.0, early.Hours, 1e-9)
	assert.InDelta(t, 245.0, early.Cost, 1e-9)

	prime := quote.Segments[1]
	assert.Equal(t, TierPrimeTime, prime.Tier)
	assert.Equal(t, "18:00", prime.Start)
	assert.Equal(t, "19:00", prime.End)
	assert.InDelta(t, 1.0, prime.Hours, 1e-9)
	assert.InDelta(t, 45.0, prime.Cost, 1e-9)

	assert.InDelta(t, 290.0, quote.Subtotal, 1e-9)
	assert.InDelta(t, 305.95, quote.Total, 1e-9)
}

func TestPrice_CrossesMidnight(t *testing.T) {
	quote, err := Price(mustParse(t, "20:00"), mustParse(t, "25:00"), standardRoom)
	require.NoError(t, err)

	require.Len(t, quote.Segments, 2)
	assert.Equal(t, TierPrimeTime, quote.Segments[0].Tier)
	assert.InDelta(t, 1.0, quote.Segments[0].Hours, 1e-9)
	assert.Equal(t, TierLateNight, quote.Segments[1].Tier)
	assert.InDelta(t, 4.0, quote.Segments[1].Hours, 1e-9)
	assert.Equal(t, "25:00", quote.Segments[1].End)
}

func TestPrice_FractionalHours(t *testing.T) {
	// Mid-hour boundaries produce fractional segments, not rounded-up
	// integer hours.
	quote, err := Price(mustParse(t, "17:30"), mustParse(t, "18:15"), standardRoom)
	require.NoError(t, err)

	require.Len(t, quote.Segments, 2)
	assert.InDelta(t, 0.5, quote.Segments[0].Hours, 1e-9)
	assert.InDelta(t, 17.5, quote.Segments[0].Cost, 1e-9)
	assert.InDelta(t, 0.25, quote.Segments[1].Hours, 1e-9)
	assert.InDelta(t, 11.25, quote.Segments[1].Cost, 1e-9)
	assert.InDelta(t, round2(28.75*1.055), quote.Total, 1e-9)
}

func TestPrice_SegmentsSumToDuration(t *testing.T) {
	windows := [][2]string{
		{"11:00", "19:00"},
		{"17:30", "18:15"},
		{"20:00", "25:00"},
		{"23:45", "01:00"},
		{"11:05", "24:55"},
	}
	for _, w := range windows {
		start := mustParse(t, w[0])
		end := mustParse(t, w[1])
		quote, err := Price(start, end, standardRoom)
		require.NoError(t, err, "%s-%s", w[0], w[1])

		var hours float64
		for _, seg := range quote.Segments {
			hours += seg.Hours
		}
		assert.InDelta(t, float64(clock.Duration(start, end))/60, hours, 1e-9, "%s-%s", w[0], w[1])
	}
}

func TestPrice_Idempotent(t *testing.T) {
	first, err := Price(mustParse(t, "12:15"), mustParse(t, "22:40"), standardRoom)
	require.NoError(t, err)
	second, err := Price(mustParse(t, "12:15"), mustParse(t, "22:40"), standardRoom)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPrice_ClosedBand(t *testing.T) {
	// Validation rejects these before pricing; the engine still
	// refuses to price past closing.
	_, err := Price(mustParse(t, "25:00"), mustParse(t, "26:00"), standardRoom)
	assert.ErrorIs(t, err, ErrClosedHours)

	_, err = Price(mustParse(t, "03:00"), mustParse(t, "05:00"), standardRoom)
	assert.ErrorIs(t, err, ErrClosedHours)
}

func TestPrice_PeakRateUsedAfterSix(t *testing.T) {
	room := &model.Room{ID: 3, Name: "Room 3", Capacity: 12, HourlyRate: 40, PeakRate: 50}
	quote, err := Price(mustParse(t, "18:00"), mustParse(t, "21:00"), room)
	require.NoError(t, err)
	require.Len(t, quote.Segments, 1)
	assert.InDelta(t, 50.0, quote.Segments[0].Rate, 1e-9)
	assert.InDelta(t, 150.0, quote.Subtotal, 1e-9)
}
