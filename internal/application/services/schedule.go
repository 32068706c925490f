package services

import (
	"time"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/entities"
)

// IsActiveOpeningTime reports whether an entry is published and its validity window
// contains the calendar date of now. Nil bounds are open-ended.
func IsActiveOpeningTime(entry entities.OpeningTime, now time.Time) bool {
	if !entry.Published {
		return false
	}

	today := calendarDay(now)
	if entry.ValidFrom != nil && calendarDay(*entry.ValidFrom) > today {
		return false
	}
	if entry.ValidTo != nil && calendarDay(*entry.ValidTo) < today {
		return false
	}
	return true
}

// ActiveOpeningTimes returns the entries that pass IsActiveOpeningTime, preserving order
func ActiveOpeningTimes(entries []entities.OpeningTime, now time.Time) []entities.OpeningTime {
	active := make([]entities.OpeningTime, 0, len(entries))
	for _, entry := range entries {
		if IsActiveOpeningTime(entry, now) {
			active = append(active, entry)
		}
	}
	return active
}

// IsOpenNow reports whether any active entry covers now. Bounds are inclusive. An entry
// whose close minute is before its open minute runs past midnight into the next weekday.
func IsOpenNow(entries []entities.OpeningTime, now time.Time) bool {
	weekday := int(now.Weekday())
	minute := now.Hour()*60 + now.Minute()

	for _, entry := range entries {
		if !IsActiveOpeningTime(entry, now) {
			continue
		}
		if covers(entry, weekday, minute) {
			return true
		}
	}
	return false
}

func covers(entry entities.OpeningTime, weekday, minute int) bool {
	if !entry.CrossesMidnight() {
		return entry.Day == weekday && entry.OpenMinute <= minute && minute <= entry.CloseMinute
	}

	if entry.Day == weekday && minute >= entry.OpenMinute {
		return true
	}
	return (entry.Day+1)%7 == weekday && minute <= entry.CloseMinute
}

// calendarDay encodes the date of t in its own location as yyyymmdd
func calendarDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
