package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"tvaudience/internal/calendar"
	apperrors "tvaudience/internal/errors"
)

const (
	// HolidayColumn is the column of the reference file holding the dates
	HolidayColumn = "date_of_holiday"
	// HolidayMarker is the value the table carries for a holiday date
	HolidayMarker = 100
)

// Holidays is the set of explicit holiday dates. A date that is not present
// is not a holiday; nothing is computed from rules at lookup time.
type Holidays struct {
	dates map[string]time.Time
}

// NewHolidays builds a holiday table from explicit dates
func NewHolidays(dates ...time.Time) *Holidays {
	h := &Holidays{dates: make(map[string]time.Time, len(dates))}
	for _, d := range dates {
		d = calendar.DateOf(d)
		h.dates[calendar.Key(d)] = d
	}
	return h
}

// LoadHolidays reads the holiday reference file. Only the date_of_holiday
// column is consumed; other columns are metadata.
func LoadHolidays(path string) (*Holidays, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("failed to open holiday file", err).WithContext("path", path)
	}
	defer file.Close()

	h, err := ReadHolidays(file)
	if err != nil {
		return nil, fmt.Errorf("holiday file %s: %w", path, err)
	}
	return h, nil
}

// ReadHolidays parses holiday reference CSV data
func ReadHolidays(r io.Reader) (*Holidays, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.NewConsistencyError("holiday file is empty")
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read holiday header", err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == HolidayColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, apperrors.NewLookupError(fmt.Sprintf("holiday file has no %q column", HolidayColumn))
	}

	var dates []time.Time
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read holiday row", err).WithContext("line", line)
		}
		if col >= len(record) || strings.TrimSpace(record[col]) == "" {
			continue
		}
		d, err := calendar.ParseDate(record[col])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		dates = append(dates, d)
	}
	return NewHolidays(dates...), nil
}

// Value returns HolidayMarker for a holiday date and 0 otherwise
func (h *Holidays) Value(date time.Time) int {
	if h.IsHoliday(date) {
		return HolidayMarker
	}
	return 0
}

// IsHoliday reports whether the calendar date of t is a holiday
func (h *Holidays) IsHoliday(t time.Time) bool {
	_, ok := h.dates[calendar.Key(t)]
	return ok
}

// Len returns the number of distinct holiday dates
func (h *Holidays) Len() int {
	return len(h.dates)
}

// Dates returns the holiday dates in ascending order
func (h *Holidays) Dates() []time.Time {
	out := make([]time.Time, 0, len(h.dates))
	for _, d := range h.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
