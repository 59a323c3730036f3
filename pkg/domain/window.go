package domain

import (
	"fmt"
	"time"
)

// BuildWindow computes the search window for a plan request. The date is a
// calendar date (YYYY-MM-DD); custom timeframes pass their explicit bounds
// through, the rest expand around the date:
//
//	day     - midnight to 23:59:59 of the date
//	weekend - the Saturday on or after the date through Sunday night
//	week    - the Monday on or before the date through Sunday night
func BuildWindow(date, timeframe, rangeStart, rangeEnd string) (time.Time, time.Time, error) {
	if timeframe == TimeframeCustom {
		start, err := time.Parse(time.RFC3339, rangeStart)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing rangeStart: %w", err)
		}
		end, err := time.Parse(time.RFC3339, rangeEnd)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing rangeEnd: %w", err)
		}
		if !start.Before(end) {
			return time.Time{}, time.Time{}, ErrInvalidWindow
		}
		return start, end, nil
	}

	base, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing date: %w", err)
	}

	dayStart := base
	dayEnd := base.Add(24*time.Hour - time.Second)

	switch timeframe {
	case TimeframeDay, "":
		return dayStart, dayEnd, nil
	case TimeframeWeekend:
		daysToSat := (time.Saturday - base.Weekday() + 7) % 7
		sat := base.AddDate(0, 0, int(daysToSat))
		sunEnd := sat.AddDate(0, 0, 1).Add(24*time.Hour - time.Second)
		return sat, sunEnd, nil
	case TimeframeWeek:
		// Monday of the week containing the date.
		daysFromMon := (base.Weekday() - time.Monday + 7) % 7
		mon := base.AddDate(0, 0, -int(daysFromMon))
		sunEnd := mon.AddDate(0, 0, 6).Add(24*time.Hour - time.Second)
		return mon, sunEnd, nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown timeframe %q", ErrInvalidWindow, timeframe)
}
