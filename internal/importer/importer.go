package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tvaudience/internal/calendar"
	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/frame"
	"tvaudience/internal/reference"
)

// Column names of the normalized tables
const (
	ColDate      = "Date"
	ColDayPart   = "DayPart"
	ColChannel   = "Channel"
	ColTimeStamp = "TimeStamp"
	ColATS       = "ATS"
	ColRCH       = "RCH"
	ColSHR       = "SHR"
)

// Vendor header renames per table
var (
	monthlyRenames = map[string]string{
		`Date\Variable`: ColDate,
		"SHR %":         ColSHR,
	}
	dailyRenames = map[string]string{
		`Day Part\Variable`:           ColDayPart,
		"RCH [Not cons. - TH: 0min.]": ColRCH,
		"SHR %":                       ColSHR,
	}
	progRenames = map[string]string{
		"SHR %": ColSHR,
	}
)

// Metadata fields kept per table
var (
	monthlyMeta = []string{"Target", "Day Part group", "Activity", "Platform"}
	dailyMeta   = []string{"Target", "Activity", "Platform"}
	progMeta    = []string{"Activity", "Platform"}
)

// Files names the workbook of each table
type Files struct {
	Monthly string
	Daily   string
	Prog    string
}

// Options controls daily timestamp construction
type Options struct {
	// Location is the zone wall-clock timestamps are localized into
	Location *time.Location
	// Frequency is the spacing the naive daily index must have
	Frequency time.Duration
}

// Importer turns vendor workbooks into normalized frames
type Importer struct {
	files  Files
	slots  *reference.HourSlots
	opts   Options
	logger *slog.Logger
}

// New creates an importer. slots resolves daily daypart labels.
func New(files Files, slots *reference.HourSlots, opts Options, logger *slog.Logger) *Importer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Frequency == 0 {
		opts.Frequency = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		files:  files,
		slots:  slots,
		opts:   opts,
		logger: logger.With("component", "importer"),
	}
}

// Monthly imports the monthly table: Date parsed to a calendar date and ATS
// converted to a duration, indexed by row position
func (im *Importer) Monthly(ctx context.Context) (*frame.Frame, error) {
	f, err := im.load(ctx, "monthly", im.files.Monthly, monthlyRenames, monthlyMeta)
	if err != nil {
		return nil, err
	}

	if err := f.Apply(ColDate, parseDateCell); err != nil {
		return nil, im.fail("monthly", im.files.Monthly, err)
	}
	if f.Has(ColATS) {
		if err := f.Apply(ColATS, ParseElapsed); err != nil {
			return nil, im.fail("monthly", im.files.Monthly, err)
		}
	}

	im.logger.InfoContext(ctx, "Imported monthly table", slog.Int("rows", f.Len()))
	return f, nil
}

// Daily imports the daily table indexed by broadcast timestamp. Each
// DayPart label is resolved to the preceding slot and combined with Date;
// the result is shifted forward by one hour, or by one hour and one minute
// for the 23:59 sentinel. With localize set the wall clock is interpreted
// in the configured zone; otherwise the naive index must be uniformly
// spaced at the configured frequency.
func (im *Importer) Daily(ctx context.Context, localize bool) (*frame.Frame, error) {
	f, err := im.load(ctx, "daily", im.files.Daily, dailyRenames, dailyMeta)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{ColDate, ColDayPart, ColChannel} {
		if !f.Has(col) {
			return nil, im.fail("daily", im.files.Daily,
				apperrors.NewLookupError(fmt.Sprintf("column %q not found", col)))
		}
	}

	if err := f.Categorize(ColChannel); err != nil {
		return nil, im.fail("daily", im.files.Daily, err)
	}

	stamps := make([]any, f.Len())
	for i := 0; i < f.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ts, err := im.timestamp(f, i, localize)
		if err != nil {
			return nil, im.fail("daily", im.files.Daily, fmt.Errorf("row %d: %w", i, err))
		}
		stamps[i] = ts
	}
	if err := f.SetColumn(ColTimeStamp, stamps); err != nil {
		return nil, im.fail("daily", im.files.Daily, err)
	}
	if err := f.SetTimeIndex(ColTimeStamp); err != nil {
		return nil, im.fail("daily", im.files.Daily, err)
	}
	if !localize {
		if err := f.AssertFrequency(im.opts.Frequency); err != nil {
			return nil, im.fail("daily", im.files.Daily, err)
		}
	}

	if err := f.Apply(ColDate, parseDateCell); err != nil {
		return nil, im.fail("daily", im.files.Daily, err)
	}

	im.logger.InfoContext(ctx, "Imported daily table",
		slog.Int("rows", f.Len()),
		slog.Bool("localized", localize),
		slog.Any("channels", f.Categories(ColChannel)))
	return f, nil
}

// Prog imports the programme table, renaming the share column only
func (im *Importer) Prog(ctx context.Context) (*frame.Frame, error) {
	f, err := im.load(ctx, "prog", im.files.Prog, progRenames, progMeta)
	if err != nil {
		return nil, err
	}
	im.logger.InfoContext(ctx, "Imported programme table", slog.Int("rows", f.Len()))
	return f, nil
}

func (im *Importer) load(ctx context.Context, table, path string, renames map[string]string, meta []string) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	im.logger.DebugContext(ctx, "Reading workbook", slog.String("table", table), slog.String("file", path))
	sheet, err := ReadWorkbook(path)
	if err != nil {
		return nil, err
	}
	f, err := sheet.Frame(meta...)
	if err != nil {
		return nil, im.fail(table, path, err)
	}
	if err := f.Rename(renames); err != nil {
		return nil, im.fail(table, path, err)
	}

	im.logger.InfoContext(ctx, "Workbook metadata",
		slog.String("table", table),
		slog.Any("meta", f.Meta),
		slog.Int("columns", len(f.Columns())))
	return f, nil
}

// timestamp builds the index value of row i
func (im *Importer) timestamp(f *frame.Frame, i int, localize bool) (time.Time, error) {
	label, _ := f.Value(i, ColDayPart)
	clock, err := im.slots.Resolve(frame.FormatValue(label))
	if err != nil {
		return time.Time{}, err
	}
	tod, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	raw, _ := f.Value(i, ColDate)
	date, err := calendar.ParseDate(frame.FormatValue(raw))
	if err != nil {
		return time.Time{}, err
	}

	ts := ShiftSlot(date.Add(tod))
	if localize {
		ts = time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, im.opts.Location)
	}
	return ts, nil
}

// ShiftSlot moves a slot start to its broadcast timestamp: one hour later,
// or one hour and one minute later when the clock reads 23:59
func ShiftSlot(t time.Time) time.Time {
	if t.Hour() == 23 && t.Minute() == 59 {
		return t.Add(time.Hour + time.Minute)
	}
	return t.Add(time.Hour)
}

func parseDateCell(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if t, ok := v.(time.Time); ok {
		return calendar.DateOf(t), nil
	}
	return calendar.ParseDate(frame.FormatValue(v))
}

// fail attaches the table and file to err when it is an AppError
func (im *Importer) fail(table, path string, err error) error {
	if appErr, ok := err.(*apperrors.AppError); ok {
		appErr.WithContext("table", table).WithContext("file", path)
		return appErr
	}
	return fmt.Errorf("%s import (%s): %w", table, path, err)
}
