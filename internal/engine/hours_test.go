package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utaroom/internal/clock"
)

func mustParse(t *testing.T, s string) clock.Time {
	t.Helper()
	parsed, err := clock.Parse(s)
	require.NoError(t, err)
	return parsed
}

func TestIsWithinBusinessHours(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		end    string
		within bool
	}{
		{"opening hour", "11:00", "12:00", true},
		{"full day", "11:00", "25:00", true},
		{"evening into next day extended", "23:00", "25:00", true},
		{"evening into next day plain", "23:00", "01:00", true},
		{"ends exactly at close", "21:00", "01:00", true},
		{"last half hour", "24:30", "25:00", true},
		{"starts before open", "10:30", "12:00", false},
		{"starts exactly at close", "25:00", "26:00", false},
		{"ends exactly at open", "11:00", "11:00", false},
		{"ends past close", "23:00", "02:00", false},
		{"ends past close extended", "20:00", "26:00", false},
		{"entirely in closed band", "03:00", "05:00", false},
		{"zero length mid-day", "14:00", "14:00", false},
		{"backwards within window", "15:00", "13:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := mustParse(t, tt.start)
			end := mustParse(t, tt.end)
			assert.Equal(t, tt.within, IsWithinBusinessHours(start, end))
		})
	}
}
