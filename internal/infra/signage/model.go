package signage

import (
	"encoding/json"
	"time"
)

// DisplayItem is one product as the signage screens render it.
type DisplayItem struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	NameEn          string `json:"nameEn"`
	Category        string `json:"category"`
	OriginalPrice   string `json:"originalPrice"`
	DiscountedPrice string `json:"discountedPrice"`
	DiscountPercent int    `json:"discountPercent"`
	Unit            string `json:"unit"`
	ExpiryDate      string `json:"expiryDate"`
	DaysToExpiry    int    `json:"daysToExpiry"`
	UrgencyLevel    string `json:"urgencyLevel"`
	UrgencyText     string `json:"urgencyText"`
	HasDiscount     bool   `json:"hasDiscount"`
}

// Result is what a push attempt reports. Push failures never surface as
// errors: prices are already committed when the push happens.
type Result struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Status  int           `json:"status,omitempty"`
	Preview []DisplayItem `json:"preview,omitempty"`
}

// Event is one audit row of the signage integration.
type Event struct {
	ID             int64           `json:"id"`
	EventType      string          `json:"event_type"`
	Payload        json.RawMessage `json:"payload"`
	ResponseStatus int             `json:"response_status"`
	ResponseBody   string          `json:"response_body"`
	CreatedAt      time.Time       `json:"created_at"`
}
