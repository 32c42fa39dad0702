// Package calendar holds the date parsing and calendar-field arithmetic shared
// by the importer, the reference tables and the feature builder.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "tvaudience/internal/errors"
)

// dateLayouts are tried in order. ISO first, then the Polish day-first form,
// then the month-first forms spreadsheet number formats render dates with.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02.01.2006",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
}

// Excel serial date bounds (1900-01-01 .. 9999-12-31)
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseDate parses a calendar date as it appears in spreadsheet exports and
// reference files. Time-of-day components are discarded; the result is
// midnight UTC of the parsed wall date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.NewParsingError("empty date", nil)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, apperrors.NewParsingError(fmt.Sprintf("malformed date %q", s), err)
		}
		return DateOf(t), nil
	}
	return time.Time{}, apperrors.NewParsingError(fmt.Sprintf("malformed date %q", s), nil).
		WithContext("value", s)
}

// DateOf truncates t to its wall-clock calendar date, as a naive (UTC) value
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayOfWeek returns the weekday with Monday as 0 and Sunday as 6
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Quarter returns the calendar quarter (1..4) of t
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// Key returns the lookup key of t's calendar date
func Key(t time.Time) string {
	return t.Format("2006-01-02")
}
