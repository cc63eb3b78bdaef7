package rules

import "time"

type Rule struct {
	ID              int64
	Category        string
	DaysToExpiry    int
	DiscountPercent int
	CreatedAt       time.Time
}
