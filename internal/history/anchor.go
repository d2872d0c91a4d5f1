package history

import (
	"time"

	"github.com/lox/wayraweather/internal/outlook"
)

const (
	FirstYear = 2001
	LastYear  = 2024
)

var (
	archiveStart = time.Date(FirstYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	archiveEnd   = time.Date(LastYear, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// AnchorDate places target's month and day in year. 29 February falls back
// to the 28th when year is not a leap year.
func AnchorDate(target time.Time, year int) time.Time {
	month, day := target.Month(), target.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Window returns anchor ± the outlook radius clipped to the archive range.
// ok is false when the window lies entirely outside the archive.
func Window(anchor time.Time) (start, end time.Time, ok bool) {
	start = anchor.AddDate(0, 0, -outlook.WindowRadius)
	end = anchor.AddDate(0, 0, outlook.WindowRadius)
	if end.Before(archiveStart) || start.After(archiveEnd) {
		return time.Time{}, time.Time{}, false
	}
	if start.Before(archiveStart) {
		start = archiveStart
	}
	if end.After(archiveEnd) {
		end = archiveEnd
	}
	return start, end, true
}
