package pricing

import (
	"math"
	"time"
)

// DaysToExpiry returns the whole calendar days left until expiry, floored at
// zero. Each argument's own calendar date is taken, so the result depends
// neither on wall-clock time nor on the two values carrying different
// locations (DATE columns scan as UTC while "now" is the store's timezone).
// An already expired product counts as 0 days left.
func DaysToExpiry(expiry, today time.Time) int {
	diff := midnightUTC(expiry).Sub(midnightUTC(today))
	days := int(math.Ceil(diff.Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
