package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/guymor/wasteless/internal/domain/products"
)

type fakeProductStore struct {
	items   []products.Product
	updates int
	failOn  int64 // UpdatePricing fails for this product id
	listErr error // ListAll fails outright
}

func (f *fakeProductStore) ListAll(_ context.Context) ([]products.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]products.Product, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeProductStore) UpdatePricing(_ context.Context, id int64, price float64, pct int) error {
	if f.failOn == id {
		return fmt.Errorf("update product %d: disk full", id)
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].CurrentPrice = price
			f.items[i].DiscountPercent = pct
			f.updates++
			return nil
		}
	}
	return fmt.Errorf("product %d not found", id)
}

type historyEntry struct {
	productID          int64
	oldPrice, newPrice float64
	oldPct, newPct     int
	reason             string
}

type fakeHistoryStore struct {
	entries []historyEntry
}

func (f *fakeHistoryStore) Append(_ context.Context, productID int64, oldPrice, newPrice float64, oldPct, newPct int, reason string) error {
	f.entries = append(f.entries, historyEntry{productID, oldPrice, newPrice, oldPct, newPct, reason})
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seededProduct(id int64, category string, base float64, expiry time.Time) products.Product {
	return products.Product{
		ID:           id,
		NameEn:       fmt.Sprintf("product-%d", id),
		Category:     category,
		BasePrice:    base,
		CurrentPrice: base,
		ExpiryDate:   expiry,
	}
}

func newTestEngine(store *fakeProductStore, hist *fakeHistoryStore, today time.Time) *Engine {
	rules := &fakeRuleStore{rules: map[string][]Rule{
		"vegetables": seededLadder,
		"fruits":     seededLadder,
	}}
	return NewEngine(store, rules, hist, fixedNow(today), discard())
}

func TestQuote(t *testing.T) {
	today := date(2024, 6, 10)
	e := newTestEngine(&fakeProductStore{}, &fakeHistoryStore{}, today)

	q, err := e.Quote(context.Background(), 12.90, "vegetables", date(2024, 6, 12))
	if err != nil {
		t.Fatal(err)
	}
	if q.DaysToExpiry != 2 || q.DiscountPercent != 30 || q.CurrentPrice != 9.03 {
		t.Errorf("Quote = %+v, want {9.03 30 2}", q)
	}
}

func TestQuoteRejectsNegativeBase(t *testing.T) {
	e := newTestEngine(&fakeProductStore{}, &fakeHistoryStore{}, date(2024, 6, 10))

	if _, err := e.Quote(context.Background(), -1, "vegetables", date(2024, 6, 12)); err == nil {
		t.Fatal("want validation error for negative base price")
	}
}

func TestRecomputeAllUpdatesAndRecordsHistory(t *testing.T) {
	today := date(2024, 6, 10)
	store := &fakeProductStore{items: []products.Product{
		seededProduct(1, "vegetables", 12.90, date(2024, 6, 12)), // 2 days -> 30%
		seededProduct(2, "fruits", 19.90, date(2024, 6, 10)),     // today -> 70%
		seededProduct(3, "fruits", 11.90, date(2024, 6, 20)),     // far out -> unchanged
	}}
	hist := &fakeHistoryStore{}
	e := newTestEngine(store, hist, today)

	changes, err := e.RecomputeAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}

	first := changes[0]
	if first.Product.ID != 1 || first.Product.CurrentPrice != 9.03 || first.Product.DiscountPercent != 30 {
		t.Errorf("change[0] = %+v", first)
	}
	if first.OldPrice != 12.90 || first.OldDiscount != 0 || first.DaysToExpiry != 2 {
		t.Errorf("change[0] prior state = old_price %v old_discount %d days %d",
			first.OldPrice, first.OldDiscount, first.DaysToExpiry)
	}

	second := changes[1]
	if second.Product.CurrentPrice != 5.97 || second.Product.DiscountPercent != 70 {
		t.Errorf("change[1] = %+v", second)
	}

	if len(hist.entries) != 2 {
		t.Fatalf("got %d history entries, want 2", len(hist.entries))
	}
	if hist.entries[0].reason != "Auto-update: 2 days to expiry" {
		t.Errorf("reason = %q", hist.entries[0].reason)
	}
	if hist.entries[1].reason != "Auto-update: 0 days to expiry" {
		t.Errorf("reason = %q", hist.entries[1].reason)
	}
	if hist.entries[0].oldPrice != 12.90 || hist.entries[0].newPrice != 9.03 {
		t.Errorf("history prices = %+v", hist.entries[0])
	}

	// The far-out product must be untouched: no row update, no history noise.
	if store.items[2].CurrentPrice != 11.90 || store.items[2].DiscountPercent != 0 {
		t.Errorf("unchanged product was touched: %+v", store.items[2])
	}
}

func TestRecomputeAllSecondRunIsEmpty(t *testing.T) {
	today := date(2024, 6, 10)
	store := &fakeProductStore{items: []products.Product{
		seededProduct(1, "vegetables", 12.90, date(2024, 6, 12)),
		seededProduct(2, "fruits", 19.90, date(2024, 6, 10)),
	}}
	hist := &fakeHistoryStore{}
	e := newTestEngine(store, hist, today)

	if _, err := e.RecomputeAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	changes, err := e.RecomputeAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Errorf("second run changed %d products, want 0", len(changes))
	}
	if len(hist.entries) != 2 {
		t.Errorf("second run appended history: %d entries", len(hist.entries))
	}
}

func TestRecomputeAllAbortsOnStoreError(t *testing.T) {
	today := date(2024, 6, 10)
	store := &fakeProductStore{
		items: []products.Product{
			seededProduct(1, "vegetables", 12.90, date(2024, 6, 12)),
			seededProduct(2, "fruits", 19.90, date(2024, 6, 10)),
		},
		failOn: 2,
	}
	hist := &fakeHistoryStore{}
	e := newTestEngine(store, hist, today)

	changes, err := e.RecomputeAll(context.Background())
	if err == nil {
		t.Fatal("want error from failing store")
	}
	// The first product's committed change is still reported; nothing from
	// the failed one.
	if len(changes) != 1 || changes[0].Product.ID != 1 {
		t.Errorf("changes = %+v", changes)
	}
	if len(hist.entries) != 1 {
		t.Errorf("history entries = %d, want 1", len(hist.entries))
	}
}

func TestRecomputeAllFruitExpiryTodayProperty(t *testing.T) {
	today := date(2024, 6, 10)
	base := 34.70
	store := &fakeProductStore{items: []products.Product{
		seededProduct(9, "fruits", base, today),
	}}
	e := newTestEngine(store, &fakeHistoryStore{}, today)

	changes, err := e.RecomputeAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 {
		t.Fatalf("got %d changes", len(changes))
	}
	want, _ := DiscountedPrice(base, 70)
	got := changes[0].Product
	if got.DiscountPercent != 70 || got.CurrentPrice != want {
		t.Errorf("got discount %d price %v, want 70 / %v", got.DiscountPercent, got.CurrentPrice, want)
	}
}

func TestRecomputeAllSerialized(t *testing.T) {
	today := date(2024, 6, 10)
	store := &blockingStore{
		fakeProductStore: fakeProductStore{items: []products.Product{
			seededProduct(1, "vegetables", 12.90, date(2024, 6, 12)),
		}},
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	rules := &fakeRuleStore{rules: map[string][]Rule{"vegetables": seededLadder}}
	e := NewEngine(store, rules, &fakeHistoryStore{}, fixedNow(today), discard())

	results := make(chan error, 2)
	go func() { _, err := e.RecomputeAll(context.Background()); results <- err }()
	<-store.entered // first run is inside ListAll

	go func() { _, err := e.RecomputeAll(context.Background()); results <- err }()

	select {
	case <-store.entered:
		t.Fatal("second run entered the store while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.release)
	if err := <-results; err != nil {
		t.Fatal(err)
	}
	if err := <-results; err != nil {
		t.Fatal(err)
	}
}

type blockingStore struct {
	fakeProductStore
	entered chan struct{}
	release chan struct{}
	blocked bool
}

func (b *blockingStore) ListAll(ctx context.Context) ([]products.Product, error) {
	b.entered <- struct{}{}
	if !b.blocked {
		b.blocked = true
		<-b.release
	}
	return b.fakeProductStore.ListAll(ctx)
}
