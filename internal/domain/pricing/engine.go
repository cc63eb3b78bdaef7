package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/guymor/wasteless/internal/domain/products"
)

type ProductStore interface {
	ListAll(ctx context.Context) ([]products.Product, error)
	UpdatePricing(ctx context.Context, id int64, currentPrice float64, discountPercent int) error
}

type HistoryStore interface {
	Append(ctx context.Context, productID int64, oldPrice, newPrice float64, oldDiscount, newDiscount int, reason string) error
}

// Quote carries the derived price fields for a single product, computed
// before persistence on create/edit.
type Quote struct {
	CurrentPrice    float64
	DiscountPercent int
	DaysToExpiry    int
}

// Change is one product touched by a bulk recompute, annotated with its prior
// state for reporting.
type Change struct {
	Product      products.Product
	OldPrice     float64
	OldDiscount  int
	DaysToExpiry int
}

// Engine derives discounted prices from expiry dates. All write paths go
// through it so current_price and discount_percent stay consistent.
type Engine struct {
	products ProductStore
	resolver *Resolver
	history  HistoryStore
	now      func() time.Time
	log      *slog.Logger

	mu sync.Mutex // serializes bulk recomputes
}

func NewEngine(store ProductStore, rules RuleStore, history HistoryStore, now func() time.Time, log *slog.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		products: store,
		resolver: NewResolver(rules),
		history:  history,
		now:      now,
		log:      log,
	}
}

// Quote computes current price, discount and days-to-expiry for the given
// inputs without touching any store row. The caller persists the result.
func (e *Engine) Quote(ctx context.Context, basePrice float64, category string, expiryDate time.Time) (Quote, error) {
	days := DaysToExpiry(expiryDate, e.now())
	pct, err := e.resolver.Resolve(ctx, category, days)
	if err != nil {
		return Quote{}, err
	}
	price, err := DiscountedPrice(basePrice, pct)
	if err != nil {
		return Quote{}, err
	}
	return Quote{CurrentPrice: price, DiscountPercent: pct, DaysToExpiry: days}, nil
}

// RecomputeAll re-evaluates every product and persists price/discount where
// they differ from the stored values, appending one history entry per changed
// product. Unchanged products are left untouched. On a store error mid-loop
// the already-committed changes are returned alongside the error; committed
// writes stay committed.
func (e *Engine) RecomputeAll(ctx context.Context) ([]Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	today := e.now()
	list, err := e.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var changes []Change
	for _, p := range list {
		days := DaysToExpiry(p.ExpiryDate, today)
		pct, err := e.resolver.Resolve(ctx, p.Category, days)
		if err != nil {
			return changes, err
		}
		price, err := DiscountedPrice(p.BasePrice, pct)
		if err != nil {
			return changes, err
		}
		if pct == p.DiscountPercent && price == p.CurrentPrice {
			continue
		}

		if err := e.products.UpdatePricing(ctx, p.ID, price, pct); err != nil {
			return changes, err
		}
		reason := fmt.Sprintf("Auto-update: %d days to expiry", days)
		if err := e.history.Append(ctx, p.ID, p.CurrentPrice, price, p.DiscountPercent, pct, reason); err != nil {
			return changes, err
		}

		updated := p
		updated.CurrentPrice = price
		updated.DiscountPercent = pct
		changes = append(changes, Change{
			Product:      updated,
			OldPrice:     p.CurrentPrice,
			OldDiscount:  p.DiscountPercent,
			DaysToExpiry: days,
		})
		e.log.Debug("price updated",
			"product_id", p.ID,
			"days_to_expiry", days,
			"old_price", p.CurrentPrice,
			"new_price", price,
		)
	}
	return changes, nil
}
