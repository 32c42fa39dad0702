package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/frame"
)

// ParseClock parses an "HH:MM" time of day into the offset from midnight
func ParseClock(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, apperrors.NewParsingError(fmt.Sprintf("malformed clock time %q", s), nil)
	}
	h, err := parseField(parts[0], 23)
	if err != nil {
		return 0, apperrors.NewParsingError(fmt.Sprintf("malformed clock time %q", s), err)
	}
	m, err := parseField(parts[1], 59)
	if err != nil {
		return 0, apperrors.NewParsingError(fmt.Sprintf("malformed clock time %q", s), err)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// ParseElapsed parses an "HH:MM:SS" elapsed time. Numeric cells are read as
// a fraction of a day, the way spreadsheets store time values.
func ParseElapsed(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case time.Duration:
		return val, nil
	case float64:
		return fractionOfDay(val)
	case int64:
		return fractionOfDay(float64(val))
	}

	s := strings.TrimSpace(frame.FormatValue(v))
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("malformed elapsed time %q", s), nil)
	}
	h, err := parseField(parts[0], -1)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("malformed elapsed time %q", s), err)
	}
	m, err := parseField(parts[1], 59)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("malformed elapsed time %q", s), err)
	}
	sec, err := parseField(parts[2], 59)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("malformed elapsed time %q", s), err)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}

func fractionOfDay(f float64) (time.Duration, error) {
	if f < 0 || f >= 1 {
		return 0, apperrors.NewParsingError(fmt.Sprintf("elapsed time %v is not a fraction of a day", f), nil)
	}
	return (time.Duration(f*float64(24*time.Hour)) + time.Second/2).Truncate(time.Second), nil
}

// parseField parses a non-negative decimal field; max < 0 means unbounded
func parseField(s string, max int) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, fmt.Errorf("field %q is not a number", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if max >= 0 && n > max {
		return 0, fmt.Errorf("field %d out of range 0..%d", n, max)
	}
	return n, nil
}
