package frame

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// TimestampLayout is the layout naive timestamps are rendered with
	TimestampLayout = "2006-01-02 15:04:05"
	// ZonedTimestampLayout is the layout localized timestamps are rendered with
	ZonedTimestampLayout = "2006-01-02 15:04:05-07:00"
	// DateLayout is the layout calendar dates are rendered with
	DateLayout = "2006-01-02"
)

// FormatValue renders a cell for flat-file output
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return formatBool(val)
	case time.Time:
		if isDate(val) {
			return val.Format(DateLayout)
		}
		return FormatTimestamp(val)
	case time.Duration:
		return FormatDuration(val)
	case Category:
		return val.Label
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// FormatTimestamp renders a timestamp, with its UTC offset when localized
func FormatTimestamp(t time.Time) string {
	if t.Location() == time.UTC {
		return t.Format(TimestampLayout)
	}
	return t.Format(ZonedTimestampLayout)
}

// FormatDuration renders an elapsed time as HH:MM:SS; hours are not wrapped
// at 24.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, (total/60)%60, total%60)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func isDate(t time.Time) bool {
	return t.Location() == time.UTC &&
		t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
