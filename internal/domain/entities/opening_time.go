package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in a day; valid minute offsets are 0..MinutesPerDay-1
const MinutesPerDay = 24 * 60

// OpeningTime is one recurring weekly interval, optionally bounded by a calendar validity window.
// Day follows time.Weekday numbering (0 = Sunday).
type OpeningTime struct {
	ID          string     `json:"id" db:"id"`
	Day         int        `json:"day" db:"day"`
	OpenMinute  int        `json:"open_minute" db:"-"`
	CloseMinute int        `json:"close_minute" db:"-"`
	ValidFrom   *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidTo     *time.Time `json:"valid_to,omitempty" db:"valid_to"`
	Published   bool       `json:"published" db:"published"`
}

// CrossesMidnight reports whether the interval closes on the following day
func (o OpeningTime) CrossesMidnight() bool {
	return o.CloseMinute < o.OpenMinute
}

// ParseClock converts an "HH:mm" string into minutes since midnight
func ParseClock(value string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid clock value %q: expected HH:mm", value)
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid clock value %q: hour out of range", value)
	}

	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock value %q: minute out of range", value)
	}

	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:mm"
func FormatClock(minute int) string {
	minute = ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
