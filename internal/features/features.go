// Package features derives calendar and holiday features from time-indexed
// frames. Every function returns a new frame and the names of the features
// it added; inputs are never modified.
package features

import (
	"time"

	"tvaudience/internal/calendar"
	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/frame"
	"tvaudience/internal/reference"
)

// Feature column names
const (
	Hour      = "hour"
	DayOfWeek = "dayofweek"
	Month     = "month"
	Quarter   = "quarter"
	Year      = "year"
	DayOfYear = "dayofyear"
	Holiday   = "holiday"

	ModelDay       = "day"
	ModelDayOfWeek = "day_of_week"
	ModelDayOfYear = "day_of_year"
	ModelDate      = "date"
)

// DefaultYearBase is subtracted from the year by CreateFeatures
const DefaultYearBase = 2020

// Options selects optional date features
type Options struct {
	Hour bool
}

// DateFeatures adds the hour (optional), day of week (Monday = 0), month,
// quarter, year, day of year and holiday columns. Holiday is 1 when the
// row's Date is in the holiday table and 0 otherwise. The index and row
// count are preserved.
func DateFeatures(f *frame.Frame, holidays *reference.Holidays, opts Options) (*frame.Frame, []string, error) {
	ix := f.Index()
	if !ix.IsTime() {
		return nil, nil, apperrors.NewConsistencyError("date features require a timestamp index")
	}
	dates, err := f.Column("Date")
	if err != nil {
		return nil, nil, err
	}
	if holidays == nil {
		holidays = reference.NewHolidays()
	}

	out := f.Clone()
	columns := []feature{
		{DayOfWeek, calendar.DayOfWeek},
		{Month, func(t time.Time) int { return int(t.Month()) }},
		{Quarter, calendar.Quarter},
		{Year, func(t time.Time) int { return t.Year() }},
		{DayOfYear, func(t time.Time) int { return t.YearDay() }},
	}
	if opts.Hour {
		columns = append([]feature{{Hour, func(t time.Time) int { return t.Hour() }}}, columns...)
	}

	for _, c := range columns {
		if err := out.SetColumn(c.name, fromIndex(ix.Times, c.fn)); err != nil {
			return nil, nil, err
		}
	}

	flags := make([]any, len(dates))
	for i, d := range dates {
		flags[i] = int64(0)
		if t, ok := d.(time.Time); ok && holidays.Value(t) > 0 {
			flags[i] = int64(1)
		}
	}
	if err := out.SetColumn(Holiday, flags); err != nil {
		return nil, nil, err
	}

	names := []string{DayOfWeek, Month, Quarter, Year, DayOfYear, Holiday}
	if opts.Hour {
		names = append(names, Hour)
	}
	return out, names, nil
}

// CreateFeatures adds the model feature set: month, day, day of week, day of
// year, hour, quarter, year relative to yearBase and the index date.
func CreateFeatures(f *frame.Frame, yearBase int) (*frame.Frame, []string, error) {
	ix := f.Index()
	if !ix.IsTime() {
		return nil, nil, apperrors.NewConsistencyError("model features require a timestamp index")
	}

	out := f.Clone()
	columns := []feature{
		{Month, func(t time.Time) int { return int(t.Month()) }},
		{ModelDay, func(t time.Time) int { return t.Day() }},
		{ModelDayOfWeek, calendar.DayOfWeek},
		{ModelDayOfYear, func(t time.Time) int { return t.YearDay() }},
		{Hour, func(t time.Time) int { return t.Hour() }},
		{Quarter, calendar.Quarter},
		{Year, func(t time.Time) int { return t.Year() - yearBase }},
	}

	names := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		if err := out.SetColumn(c.name, fromIndex(ix.Times, c.fn)); err != nil {
			return nil, nil, err
		}
		names = append(names, c.name)
	}

	days := make([]any, len(ix.Times))
	for i, t := range ix.Times {
		days[i] = calendar.DateOf(t)
	}
	if err := out.SetColumn(ModelDate, days); err != nil {
		return nil, nil, err
	}
	names = append(names, ModelDate)

	return out, names, nil
}

// feature computes one integer column from the index timestamps
type feature struct {
	name string
	fn   func(time.Time) int
}

func fromIndex(times []time.Time, fn func(time.Time) int) []any {
	values := make([]any, len(times))
	for i, t := range times {
		values[i] = int64(fn(t))
	}
	return values
}
