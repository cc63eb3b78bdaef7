package categories

import "time"

// Category drives rule seeding. NameEn is the durable join key used by
// products and pricing_rules; NameHe is what shoppers see.
type Category struct {
	ID        int64
	NameEn    string
	NameHe    string
	Icon      *string
	Active    bool
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeleteResult reports whether a delete removed the row or only deactivated
// it because products still reference the category code.
type DeleteResult struct {
	Deactivated  bool
	ProductCount int
}
