package history

import "time"

// Entry is one immutable price transition. Entries are only ever appended by
// the pricing engine and removed by product-delete cascade.
type Entry struct {
	ID          int64
	ProductID   int64
	OldPrice    float64
	NewPrice    float64
	OldDiscount int
	NewDiscount int
	Reason      string
	CreatedAt   time.Time
}

// NamedEntry joins an entry with its product's display names for the global
// history feed.
type NamedEntry struct {
	Entry
	NameHe string
	NameEn string
}
