package pricing

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysToExpiry(t *testing.T) {
	today := date(2024, 6, 10)

	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"same day", date(2024, 6, 10), 0},
		{"tomorrow", date(2024, 6, 11), 1},
		{"five days out", date(2024, 6, 15), 5},
		{"yesterday clamps to zero", date(2024, 6, 9), 0},
		{"long past clamps to zero", date(2024, 1, 1), 0},
		{"month boundary", date(2024, 7, 1), 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysToExpiry(tt.expiry, today); got != tt.want {
				t.Errorf("DaysToExpiry(%v, %v) = %d, want %d", tt.expiry, today, got, tt.want)
			}
		})
	}
}

func TestDaysToExpiryMixedLocations(t *testing.T) {
	// Expiry dates scan from DATE columns as UTC midnight while "today"
	// carries the store's timezone; only the calendar dates may matter.
	jerusalem := time.FixedZone("IST", 3*60*60)
	expiry := date(2024, 6, 10) // UTC midnight
	today := time.Date(2024, 6, 10, 8, 30, 0, 0, jerusalem)

	if got := DaysToExpiry(expiry, today); got != 0 {
		t.Errorf("same calendar day across locations: got %d, want 0", got)
	}
}

func TestDaysToExpiryIgnoresTimeOfDay(t *testing.T) {
	expiry := time.Date(2024, 6, 12, 3, 15, 0, 0, time.UTC)

	morning := time.Date(2024, 6, 10, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)

	if got := DaysToExpiry(expiry, morning); got != 2 {
		t.Errorf("morning: got %d, want 2", got)
	}
	if got := DaysToExpiry(expiry, evening); got != 2 {
		t.Errorf("evening: got %d, want 2", got)
	}
}
