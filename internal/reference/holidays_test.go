package reference

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tvaudience/internal/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewHolidays(t *testing.T) {
	h := NewHolidays(date(2023, 11, 11), date(2023, 1, 1), date(2023, 1, 1))

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []time.Time{date(2023, 1, 1), date(2023, 11, 11)}, h.Dates())
	assert.True(t, h.IsHoliday(date(2023, 11, 11)))
	assert.True(t, h.IsHoliday(time.Date(2023, 11, 11, 21, 30, 0, 0, time.UTC)), "time of day is ignored")
	assert.False(t, h.IsHoliday(date(2023, 11, 12)))
	assert.Equal(t, HolidayMarker, h.Value(date(2023, 1, 1)))
	assert.Equal(t, 0, h.Value(date(2023, 1, 2)))
}

func TestReadHolidays(t *testing.T) {
	data := "\ufeffname,date_of_holiday,type\n" +
		"New Year,2023-01-01,public\n" +
		"Independence,11.11.2023,public\n" +
		"blank,,public\n"

	h, err := ReadHolidays(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(2023, 1, 1), date(2023, 11, 11)}, h.Dates())
}

func TestReadHolidays_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantType apperrors.ErrorType
	}{
		{name: "empty", data: "", wantType: apperrors.ErrTypeConsistency},
		{name: "missing column", data: "date,name\n2023-01-01,x\n", wantType: apperrors.ErrTypeLookup},
		{name: "malformed date", data: "date_of_holiday\nsoon\n", wantType: apperrors.ErrTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHolidays(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), err.Error())
		})
	}
}

func TestLoadHolidays(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holidays.csv")
	require.NoError(t, os.WriteFile(path, []byte("date_of_holiday\n2024-05-03\n"), 0644))

	h, err := LoadHolidays(path)
	require.NoError(t, err)
	assert.True(t, h.IsHoliday(date(2024, 5, 3)))

	_, err = LoadHolidays(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
}

func TestPolishHolidays(t *testing.T) {
	t.Run("2024", func(t *testing.T) {
		hs := PolishHolidays(2024)
		require.Len(t, hs, 13)

		byName := make(map[string]time.Time)
		for i, h := range hs {
			byName[h.Name] = h.Date
			if i > 0 {
				assert.False(t, h.Date.Before(hs[i-1].Date), "holidays are sorted")
			}
		}
		assert.Equal(t, date(2024, 3, 31), byName["Easter Sunday"])
		assert.Equal(t, date(2024, 4, 1), byName["Easter Monday"])
		assert.Equal(t, date(2024, 5, 19), byName["Pentecost"])
		assert.Equal(t, date(2024, 5, 30), byName["Corpus Christi"])
		_, hasEve := byName["Christmas Eve"]
		assert.False(t, hasEve)
	})

	t.Run("2025 adds Christmas Eve", func(t *testing.T) {
		hs := PolishHolidays(2025)
		require.Len(t, hs, 14)

		dates := make([]time.Time, len(hs))
		for i, hol := range hs {
			dates[i] = hol.Date
		}
		h := NewHolidays(dates...)
		assert.True(t, h.IsHoliday(date(2025, 12, 24)))
		assert.True(t, h.IsHoliday(date(2025, 4, 20)), "Easter Sunday 2025")
		assert.True(t, h.IsHoliday(date(2025, 6, 19)), "Corpus Christi 2025")
	})
}
