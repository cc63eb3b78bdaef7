package products

import "time"

type Product struct {
	ID              int64
	NameHe          string
	NameEn          string
	Category        string
	CategoryHe      string
	BasePrice       float64
	CurrentPrice    float64
	DiscountPercent int
	Quantity        int
	Unit            string
	ExpiryDate      time.Time
	CatalogNumber   *string
	BatchNumber     *string
	ImageURL        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary feeds the dashboard: stock-wide counts plus per-category breakdown.
type Summary struct {
	TotalProducts      int
	DiscountedProducts int
	ExpiringProducts   int
	TotalSavings       float64
	Categories         []CategoryBreakdown
}

type CategoryBreakdown struct {
	Category         string
	CategoryHe       string
	Count            int
	AvgDiscount      float64
	PotentialSavings float64
}

// CatalogSummary aggregates the batches sharing one catalog number.
type CatalogSummary struct {
	CatalogNumber      string
	NameHe             string
	NameEn             string
	Category           string
	CategoryHe         string
	BasePrice          float64
	BatchCount         int
	TotalQuantity      int
	MinCurrentPrice    float64
	MaxDiscountPercent int
	EarliestExpiry     time.Time
	Batches            []Product
}
