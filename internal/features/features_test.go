package features

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/frame"
	"tvaudience/internal/reference"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailyFrame builds a frame indexed by stamps with Date set to each
// stamp's calendar date
func dailyFrame(t *testing.T, stamps ...time.Time) *frame.Frame {
	t.Helper()
	rows := make([][]any, len(stamps))
	for i, s := range stamps {
		y, m, d := s.Date()
		rows[i] = []any{day(y, m, d), int64(100 + i), s}
	}
	f, err := frame.New([]string{"Date", "AMR", "TimeStamp"}, rows)
	require.NoError(t, err)
	require.NoError(t, f.SetTimeIndex("TimeStamp"))
	return f
}

func column(t *testing.T, f *frame.Frame, name string) []any {
	t.Helper()
	values, err := f.Column(name)
	require.NoError(t, err)
	return values
}

func TestDateFeatures(t *testing.T) {
	f := dailyFrame(t,
		time.Date(2023, 7, 4, 23, 0, 0, 0, time.UTC),
		time.Date(2023, 7, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 7, 5, 1, 0, 0, 0, time.UTC),
	)
	holidays := reference.NewHolidays(day(2023, 7, 4))

	out, names, err := DateFeatures(f, holidays, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"dayofweek", "month", "quarter", "year", "dayofyear", "holiday"}, names)
	assert.Equal(t, []string{"Date", "AMR", "dayofweek", "month", "quarter", "year", "dayofyear", "holiday"}, out.Columns())
	assert.Equal(t, f.Index(), out.Index(), "index is preserved")
	assert.Equal(t, f.Len(), out.Len())

	assert.Equal(t, []any{int64(1), int64(2), int64(2)}, column(t, out, "dayofweek"))
	assert.Equal(t, []any{int64(7), int64(7), int64(7)}, column(t, out, "month"))
	assert.Equal(t, []any{int64(3), int64(3), int64(3)}, column(t, out, "quarter"))
	assert.Equal(t, []any{int64(2023), int64(2023), int64(2023)}, column(t, out, "year"))
	assert.Equal(t, []any{int64(185), int64(186), int64(186)}, column(t, out, "dayofyear"))
	assert.Equal(t, []any{int64(1), int64(0), int64(0)}, column(t, out, "holiday"))

	assert.Equal(t, []string{"Date", "AMR"}, f.Columns(), "input frame is untouched")
}

func TestDateFeaturesWithHour(t *testing.T) {
	f := dailyFrame(t,
		time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC),
	)

	out, names, err := DateFeatures(f, nil, Options{Hour: true})
	require.NoError(t, err)

	assert.Equal(t, "hour", names[len(names)-1])
	assert.Equal(t, []string{"Date", "AMR", "hour", "dayofweek", "month", "quarter", "year", "dayofyear", "holiday"}, out.Columns())
	assert.Equal(t, []any{int64(22), int64(23)}, column(t, out, "hour"))
	assert.Equal(t, []any{int64(6), int64(6)}, column(t, out, "dayofweek"))
	assert.Equal(t, []any{int64(365), int64(365)}, column(t, out, "dayofyear"))
	assert.Equal(t, []any{int64(0), int64(0)}, column(t, out, "holiday"))
}

func TestDateFeaturesNamesAreNotShared(t *testing.T) {
	f := dailyFrame(t, time.Date(2023, 7, 4, 2, 0, 0, 0, time.UTC))

	_, withHour, err := DateFeatures(f, nil, Options{Hour: true})
	require.NoError(t, err)
	_, plain, err := DateFeatures(f, nil, Options{})
	require.NoError(t, err)

	assert.Len(t, withHour, 7)
	assert.Len(t, plain, 6)
	assert.NotContains(t, plain, "hour")
}

func TestDateFeaturesHolidayJoin(t *testing.T) {
	// Many rows per holiday date, plus a row with no date.
	f := dailyFrame(t,
		time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 3, 2, 0, 0, 0, time.UTC),
	)
	require.NoError(t, f.SetColumn("Date", []any{day(2024, 5, 1), day(2024, 5, 1), day(2024, 5, 2), nil}))
	holidays := reference.NewHolidays(day(2024, 5, 1), day(2024, 5, 3))

	out, _, err := DateFeatures(f, holidays, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, out.Len())
	assert.Equal(t, []any{int64(1), int64(1), int64(0), int64(0)}, column(t, out, "holiday"))
	amr := column(t, out, "AMR")
	assert.Equal(t, []any{int64(100), int64(101), int64(102), int64(103)}, amr, "rows keep their order")
}

func TestDateFeaturesLocalized(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	f := dailyFrame(t, time.Date(2023, 7, 4, 0, 30, 0, 0, warsaw))
	out, _, err := DateFeatures(f, nil, Options{Hour: true})
	require.NoError(t, err)

	assert.Equal(t, []any{int64(0)}, column(t, out, "hour"), "features use the local wall clock")
	assert.Equal(t, []any{int64(1)}, column(t, out, "dayofweek"))
}

func TestDateFeaturesErrors(t *testing.T) {
	positional, err := frame.New([]string{"Date"}, [][]any{{day(2023, 7, 4)}})
	require.NoError(t, err)
	_, _, err = DateFeatures(positional, nil, Options{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConsistency))

	noDate, err := frame.New([]string{"TimeStamp"}, [][]any{{time.Date(2023, 7, 4, 2, 0, 0, 0, time.UTC)}})
	require.NoError(t, err)
	require.NoError(t, noDate.SetTimeIndex("TimeStamp"))
	_, _, err = DateFeatures(noDate, nil, Options{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLookup))
}

func TestCreateFeatures(t *testing.T) {
	f := dailyFrame(t,
		time.Date(2023, 7, 4, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 5, 0, 0, 0, time.UTC),
	)

	out, names, err := CreateFeatures(f, DefaultYearBase)
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "day", "day_of_week", "day_of_year", "hour", "quarter", "year", "date"}, names)
	assert.Equal(t, []any{int64(7), int64(2)}, column(t, out, "month"))
	assert.Equal(t, []any{int64(4), int64(29)}, column(t, out, "day"))
	assert.Equal(t, []any{int64(1), int64(3)}, column(t, out, "day_of_week"))
	assert.Equal(t, []any{int64(185), int64(60)}, column(t, out, "day_of_year"))
	assert.Equal(t, []any{int64(23), int64(5)}, column(t, out, "hour"))
	assert.Equal(t, []any{int64(3), int64(1)}, column(t, out, "quarter"))
	assert.Equal(t, []any{int64(3), int64(4)}, column(t, out, "year"))
	assert.Equal(t, []any{day(2023, 7, 4), day(2024, 2, 29)}, column(t, out, "date"))

	assert.Equal(t, []string{"Date", "AMR"}, f.Columns(), "input frame is untouched")

	_, _, err = CreateFeatures(out, 2000)
	require.NoError(t, err)
}

func TestCreateFeaturesRequiresTimeIndex(t *testing.T) {
	positional, err := frame.New([]string{"AMR"}, [][]any{{int64(1)}})
	require.NoError(t, err)
	_, _, err = CreateFeatures(positional, DefaultYearBase)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConsistency))
}
