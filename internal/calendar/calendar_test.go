package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tvaudience/internal/errors"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{name: "iso", input: "2023-07-04"},
		{name: "iso with time", input: "2023-07-04 00:00:00"},
		{name: "iso with T", input: "2023-07-04T13:45:00"},
		{name: "rfc3339", input: "2023-07-04T00:00:00Z"},
		{name: "slashes", input: "2023/07/04"},
		{name: "polish", input: "04.07.2023"},
		{name: "excel mm-dd-yy", input: "07-04-23"},
		{name: "us long", input: "7/4/2023"},
		{name: "us short", input: "7/4/23"},
		{name: "excel serial", input: "45111"},
		{name: "padded", input: "  2023-07-04 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseDate_Errors(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2023-13-45", "0", "-5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDate(input)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}

func TestCalendarFields(t *testing.T) {
	tuesday := time.Date(2023, 7, 4, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, 1, DayOfWeek(tuesday))
	assert.Equal(t, 0, DayOfWeek(time.Date(2023, 7, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, DayOfWeek(time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, Quarter(tuesday))
	assert.Equal(t, 1, Quarter(time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 4, Quarter(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 185, tuesday.YearDay())
	assert.Equal(t, "2023-07-04", Key(tuesday))
}

func TestDateOf(t *testing.T) {
	warsaw := time.FixedZone("CET", 3600)
	late := time.Date(2024, 3, 10, 23, 30, 0, 0, warsaw)

	got := DateOf(late)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)
}
