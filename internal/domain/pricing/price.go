package pricing

import (
	"math"

	"github.com/guymor/wasteless/internal/apperr"
)

// DiscountedPrice applies a percent discount to a base price and rounds
// half-up at the cent.
func DiscountedPrice(basePrice float64, discountPercent int) (float64, error) {
	if basePrice <= 0 {
		return 0, apperr.Validation("base price must be positive, got %.2f", basePrice)
	}
	if discountPercent < 0 || discountPercent > 100 {
		return 0, apperr.Validation("discount percent out of range: %d", discountPercent)
	}
	price := math.Round(basePrice*(1-float64(discountPercent)/100)*100) / 100
	if price < 0 {
		return 0, apperr.Validation("discounted price went negative: %.2f", price)
	}
	return price, nil
}
