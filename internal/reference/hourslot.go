package reference

import (
	"fmt"
	"strings"
	"time"

	apperrors "tvaudience/internal/errors"
)

const (
	// SentinelLabel is the vendor label closing the broadcast day
	SentinelLabel = "25:00"
	// SentinelClock is the clock time the sentinel label resolves to
	SentinelClock = "23:59"

	firstSlot = 2 * time.Hour
	lastSlot  = 24 * time.Hour
)

// HourSlots maps a daypart label to the label one slot earlier
type HourSlots struct {
	step   time.Duration
	prev   map[string]string
	labels []string
}

// NewHourSlots builds the hour-slot table for labels "02:00" through "24:00"
// spaced step apart, plus the "25:00" sentinel. step must evenly divide an
// hour and be a whole number of minutes.
func NewHourSlots(step time.Duration) (*HourSlots, error) {
	if step < time.Minute || step%time.Minute != 0 || time.Hour%step != 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("invalid hour-slot step %s", step), nil)
	}

	h := &HourSlots{
		step: step,
		prev: make(map[string]string),
	}
	for at := firstSlot; at <= lastSlot; at += step {
		label := formatLabel(at)
		h.prev[label] = formatLabel(at - step)
		h.labels = append(h.labels, label)
	}
	h.prev[SentinelLabel] = SentinelClock
	h.labels = append(h.labels, SentinelLabel)
	return h, nil
}

// Resolve returns the label preceding a daypart label. Labels are matched
// exactly after trimming surrounding whitespace.
func (h *HourSlots) Resolve(label string) (string, error) {
	label = strings.TrimSpace(label)
	prev, ok := h.prev[label]
	if !ok {
		return "", apperrors.NewLookupError(fmt.Sprintf("unknown daypart label %q", label)).
			WithContext("label", label)
	}
	return prev, nil
}

// Labels returns the daypart labels in slot order, sentinel last
func (h *HourSlots) Labels() []string {
	return append([]string(nil), h.labels...)
}

// Step returns the spacing between consecutive labels
func (h *HourSlots) Step() time.Duration {
	return h.step
}

// Len returns the number of labels including the sentinel
func (h *HourSlots) Len() int {
	return len(h.labels)
}

func formatLabel(d time.Duration) string {
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
