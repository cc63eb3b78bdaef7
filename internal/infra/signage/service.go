package signage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guymor/wasteless/internal/domain/pricing"
	"github.com/guymor/wasteless/internal/domain/products"
	"github.com/guymor/wasteless/internal/infra/metrics"
)

const displayLimit = 20

type ProductSource interface {
	ListDiscounted(ctx context.Context, limit int) ([]products.Product, error)
}

type EventLog interface {
	Append(ctx context.Context, eventType string, payload []byte, status int, body string) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Service pushes discounted products to the signage provider. It is a pure
// collaborator of the pricing scheduler: pushes happen after prices are
// committed and their failures never roll anything back.
type Service struct {
	baseURL string
	apiKey  string
	client  *http.Client
	source  ProductSource
	events  EventLog
	now     func() time.Time
	log     *slog.Logger
}

func NewService(baseURL, apiKey string, timeout time.Duration, source ProductSource, events EventLog, log *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		source:  source,
		events:  events,
		now:     time.Now,
		log:     log,
	}
}

func (s *Service) configured() bool {
	return s.baseURL != "" && !strings.Contains(s.baseURL, "{YOUR-ACCOUNT-KEY}")
}

// DisplayData builds the payload items: the discounted products, most urgent
// first, annotated for the screens.
func (s *Service) DisplayData(ctx context.Context) ([]DisplayItem, error) {
	list, err := s.source.ListDiscounted(ctx, displayLimit)
	if err != nil {
		return nil, err
	}
	items := make([]DisplayItem, 0, len(list))
	for _, p := range list {
		items = append(items, formatItem(p, s.now()))
	}
	return items, nil
}

func formatItem(p products.Product, now time.Time) DisplayItem {
	days := pricing.DaysToExpiry(p.ExpiryDate, now)

	level, text := "normal", ""
	switch {
	case days == 0:
		level, text = "critical", "יום אחרון!"
	case days == 1:
		level, text = "urgent", "מחר יום אחרון!"
	case days <= 3:
		level, text = "warning", fmt.Sprintf("עוד %d ימים", days)
	}

	return DisplayItem{
		ID:              p.ID,
		Name:            p.NameHe,
		NameEn:          p.NameEn,
		Category:        p.CategoryHe,
		OriginalPrice:   fmt.Sprintf("%.2f", p.BasePrice),
		DiscountedPrice: fmt.Sprintf("%.2f", p.CurrentPrice),
		DiscountPercent: p.DiscountPercent,
		Unit:            p.Unit,
		ExpiryDate:      p.ExpiryDate.Format("2006-01-02"),
		DaysToExpiry:    days,
		UrgencyLevel:    level,
		UrgencyText:     text,
		HasDiscount:     p.DiscountPercent > 0,
	}
}

type bulkPayload struct {
	UpdateID      string        `json:"updateId"`
	ProductUpdate []DisplayItem `json:"productUpdate"`
	Timestamp     string        `json:"timestamp"`
	TotalProducts int           `json:"totalProducts"`
}

// PushBulk sends the current display data to the provider and logs the
// attempt as an audit event. The returned Result is never accompanied by an
// error from the push itself, only from reading our own store.
func (s *Service) PushBulk(ctx context.Context) (Result, error) {
	items, err := s.DisplayData(ctx)
	if err != nil {
		return Result{}, err
	}

	payload := bulkPayload{
		UpdateID:      uuid.NewString(),
		ProductUpdate: items,
		Timestamp:     s.now().UTC().Format(time.RFC3339),
		TotalProducts: len(items),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}

	if !s.configured() {
		s.logEvent(ctx, "bulk-update", raw, 0, "signage provider not configured")
		metrics.ObservePush(false)
		return Result{
			Success: false,
			Message: "signage provider not configured; set signage.url",
			Preview: items,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(raw))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logEvent(ctx, "bulk-update", raw, 0, err.Error())
		metrics.ObservePush(false)
		return Result{Success: false, Message: fmt.Sprintf("push failed: %v", err), Preview: items}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	s.logEvent(ctx, "bulk-update", raw, resp.StatusCode, string(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObservePush(false)
		return Result{
			Success: false,
			Message: fmt.Sprintf("signage provider returned %d", resp.StatusCode),
			Status:  resp.StatusCode,
			Preview: items,
		}, nil
	}
	metrics.ObservePush(true)
	return Result{
		Success: true,
		Message: fmt.Sprintf("updated %d products on the displays", len(items)),
		Status:  resp.StatusCode,
		Preview: items,
	}, nil
}

// TestConnection probes the provider endpoint without sending product data.
func (s *Service) TestConnection(ctx context.Context) Result {
	if !s.configured() {
		return Result{Success: false, Message: "signage provider not configured; set signage.url"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("connection failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()
	return Result{Success: resp.StatusCode < 400, Message: "connected", Status: resp.StatusCode}
}

// Push adapts PushBulk to the scheduler's DisplaySync contract.
func (s *Service) Push(ctx context.Context) pricing.SyncResult {
	res, err := s.PushBulk(ctx)
	if err != nil {
		return pricing.SyncResult{Success: false, Message: err.Error()}
	}
	return pricing.SyncResult{Success: res.Success, Message: res.Message}
}

// RecentEvents exposes the push audit log.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	return s.events.Recent(ctx, limit)
}

func (s *Service) logEvent(ctx context.Context, eventType string, payload []byte, status int, body string) {
	if err := s.events.Append(ctx, eventType, payload, status, body); err != nil {
		s.log.Error("failed to record signage event", "err", err)
	}
}
