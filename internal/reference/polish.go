package reference

import (
	"sort"
	"time"

	"github.com/soniakeys/meeus/v3/easter"
)

// Holiday is a named public holiday
type Holiday struct {
	Date time.Time
	Name string
}

// christmasEveFrom is the first year Christmas Eve is a statutory day off
const christmasEveFrom = 2025

// PolishHolidays returns the statutory public holidays in Poland for a year,
// in date order. Movable feasts are derived from the Gregorian Easter date.
func PolishHolidays(year int) []Holiday {
	day := func(m time.Month, d int) time.Time {
		return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
	}

	em, ed := easter.Gregorian(year)
	sunday := day(time.Month(em), ed)

	holidays := []Holiday{
		{Date: day(time.January, 1), Name: "New Year's Day"},
		{Date: day(time.January, 6), Name: "Epiphany"},
		{Date: sunday, Name: "Easter Sunday"},
		{Date: sunday.AddDate(0, 0, 1), Name: "Easter Monday"},
		{Date: day(time.May, 1), Name: "Labour Day"},
		{Date: day(time.May, 3), Name: "Constitution Day"},
		{Date: sunday.AddDate(0, 0, 49), Name: "Pentecost"},
		{Date: sunday.AddDate(0, 0, 60), Name: "Corpus Christi"},
		{Date: day(time.August, 15), Name: "Assumption Day"},
		{Date: day(time.November, 1), Name: "All Saints' Day"},
		{Date: day(time.November, 11), Name: "Independence Day"},
		{Date: day(time.December, 25), Name: "Christmas Day"},
		{Date: day(time.December, 26), Name: "Second Day of Christmas"},
	}
	if year >= christmasEveFrom {
		holidays = append(holidays, Holiday{Date: day(time.December, 24), Name: "Christmas Eve"})
	}

	sort.SliceStable(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays
}
