package analytics

import "time"

// PeriodWindow is a pair of equal-length comparison windows anchored to the
// marketplace timezone. PreviousEnd-PreviousStart always equals
// CurrentEnd-CurrentStart.
type PeriodWindow struct {
	CurrentStart  time.Time `json:"currentStart"`
	CurrentEnd    time.Time `json:"currentEnd"`
	PreviousStart time.Time `json:"previousStart"`
	PreviousEnd   time.Time `json:"previousEnd"`
}

// Duration is the length of each comparison window.
func (w PeriodWindow) Duration() time.Duration {
	return w.CurrentEnd.Sub(w.CurrentStart)
}

// Periods recognized by the dashboard, in lookback days.
var periodDays = map[string]int{
	"1d":  1,
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// PeriodDays resolves a period label to its lookback in days.
func PeriodDays(period string) (int, bool) {
	days, ok := periodDays[period]
	return days, ok
}

// LoadLocation resolves a timezone name, defaulting to UTC when the name is
// empty or unknown rather than failing the request.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TodayWindow computes the partial-day window for "today" in the given
// timezone alongside the same slice of yesterday.
//
// The current window runs from local midnight to now minus the safety
// buffer (the marketplace rejects boundaries too close to now), with a one
// minute floor just after midnight. The previous window starts at the prior
// calendar date's midnight, resolved through the location so offset
// transitions land on the real local midnight, and spans exactly the same
// duration as the current window.
func TodayWindow(now time.Time, loc *time.Location, safetyBuffer time.Duration) PeriodWindow {
	local := now.In(loc)
	year, month, day := local.Date()

	currentStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
	currentEnd := now.Add(-safetyBuffer)
	if floor := currentStart.Add(time.Minute); currentEnd.Before(floor) {
		currentEnd = floor
	}

	previousStart := time.Date(year, month, day-1, 0, 0, 0, 0, loc)
	previousEnd := previousStart.Add(currentEnd.Sub(currentStart))

	return PeriodWindow{
		CurrentStart:  currentStart,
		CurrentEnd:    currentEnd,
		PreviousStart: previousStart,
		PreviousEnd:   previousEnd,
	}
}

// RollingWindow is the plain lookback used for multi-day periods: the last
// N days against the N days before them. Callers fetch the double-length
// range once and split by CurrentStart instead of fetching twice.
func RollingWindow(now time.Time, days int) PeriodWindow {
	span := time.Duration(days) * 24 * time.Hour
	currentStart := now.Add(-span)
	return PeriodWindow{
		CurrentStart:  currentStart,
		CurrentEnd:    now,
		PreviousStart: currentStart.Add(-span),
		PreviousEnd:   currentStart,
	}
}
