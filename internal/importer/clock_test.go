package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tvaudience/internal/errors"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"00:00", 0},
		{"01:30", time.Hour + 30*time.Minute},
		{"7:05", 7*time.Hour + 5*time.Minute},
		{"23:59", 23*time.Hour + 59*time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "24:00", "12:60", "12", "ab:cd", "12:00:00", "-1:00"} {
		t.Run("bad "+bad, func(t *testing.T) {
			_, err := ParseClock(bad)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}

func TestParseElapsed(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{name: "text", input: "00:12:34", want: 12*time.Minute + 34*time.Second},
		{name: "over a day", input: "26:00:01", want: 26*time.Hour + time.Second},
		{name: "day fraction", input: 0.5, want: 12 * time.Hour},
		{name: "zero", input: int64(0), want: time.Duration(0)},
		{name: "duration", input: time.Minute, want: time.Minute},
		{name: "missing", input: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseElapsed(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []any{"12:34", "00:61:00", "aa:bb:cc", 1.5, int64(-1)} {
		_, err := ParseElapsed(bad)
		require.Error(t, err, "%v", bad)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
	}
}

func TestShiftSlot(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "regular slot",
			in:   time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC),
		},
		{
			name: "last half hour rolls into next day",
			in:   time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 0, 30, 0, 0, time.UTC),
		},
		{
			name: "sentinel",
			in:   time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "year end sentinel",
			in:   time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShiftSlot(tt.in))
		})
	}
}
