package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/arusso/matchbook/internal/collectors"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/markets"
)

const defaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2/events"

// Client talks to the Kalshi Trade API and flattens nested event markets to
// normalized records.
type Client struct {
	baseURL    string
	httpClient *http.Client
	nextCursor string
}

// Config provides optional overrides.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient builds a configured Kalshi API client.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string {
	return "kalshi"
}

// Fetch retrieves a single page of open events and advances the internal
// cursor. When the end is reached the cursor resets so the next poll starts
// over.
func (c *Client) Fetch(ctx context.Context, opts collectors.FetchOptions) ([]markets.Market, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	if pageSize > 200 {
		pageSize = 200 // API limit
	}

	resp, err := c.listEvents(ctx, pageSize, c.nextCursor)
	if err != nil {
		return nil, fmt.Errorf("list kalshi events: %w", err)
	}

	logging.Debugf("[kalshi] processing batch of %d events (cursor: %s)", len(resp.Events), c.nextCursor)
	var out []markets.Market
	for i := range resp.Events {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out = append(out, normalizeEvent(&resp.Events[i])...)
	}

	c.nextCursor = resp.Cursor
	if c.nextCursor == "" {
		logging.Infof("[kalshi] reached end of events, resetting cursor")
	}

	return out, nil
}

func (c *Client) listEvents(ctx context.Context, limit int, cursor string) (*eventsResponse, error) {
	u, _ := url.Parse(c.baseURL)
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("status", "open")
	q.Set("with_nested_markets", "true")
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	var out eventsResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, dst any) error {
	var attempt int
	for {
		attempt++
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if shouldRetry(attempt, 0) {
				sleep(attempt)
				continue
			}
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return json.NewDecoder(resp.Body).Decode(dst)
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()

		if shouldRetry(attempt, resp.StatusCode) {
			sleep(attempt)
			continue
		}
		return fmt.Errorf("kalshi API %s: %s", resp.Status, string(body))
	}
}

func normalizeEvent(ev *event) []markets.Market {
	category := markets.ParseCategory(ev.Category)

	var out []markets.Market
	for i := range ev.Markets {
		m := &ev.Markets[i]
		if m.Status != "active" {
			continue
		}
		out = append(out, normalizeMarket(ev, m, category))
	}
	return out
}

func normalizeMarket(ev *event, m *market, category *markets.Category) markets.Market {
	rec := markets.Market{
		ID:       m.Ticker,
		Platform: markets.PlatformKalshi,
		Question: question(ev, m),
		Category: category,
		Status:   markets.StatusOpen,
	}

	if m.CloseTime != "" {
		if ts, err := time.Parse(time.RFC3339, m.CloseTime); err == nil {
			utc := ts.UTC()
			rec.CloseTime = &utc
		}
	}

	rec.YesPrice = sidePrice(m.LastPrice, m.YesBid, m.YesAsk)
	rec.NoPrice = sidePrice(0, m.NoBid, m.NoAsk)

	if m.Liquidity > 0 {
		v := centsToFloat(m.Liquidity)
		rec.Liquidity = &v
	}

	return rec
}

// question prefers the market title (per-outcome phrasing) and falls back to
// the event title for single-market events.
func question(ev *event, m *market) string {
	if m.Title != "" {
		return m.Title
	}
	return ev.Title
}

// sidePrice picks last trade when present, else the bid/ask mid. All Kalshi
// prices arrive in cents; nil means the side has no quote at all.
func sidePrice(last, bid, ask int64) *float64 {
	if last > 0 {
		v := centsToFloat(last)
		return &v
	}
	if bid <= 0 && ask <= 0 {
		return nil
	}
	if bid > 0 && ask > 0 {
		v := centsToFloat(bid+ask) / 2
		return &v
	}
	v := centsToFloat(bid + ask)
	return &v
}

func centsToFloat(v int64) float64 {
	return float64(v) / 100.0
}

func shouldRetry(attempt int, status int) bool {
	if attempt >= 5 {
		return false
	}
	if status == 0 {
		return true
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	return false
}

func sleep(attempt int) {
	backoff := time.Duration(1<<uint(attempt-1)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	time.Sleep(backoff)
}

type eventsResponse struct {
	Events []event `json:"events"`
	Cursor string  `json:"cursor"`
}

type event struct {
	Ticker    string   `json:"event_ticker"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Category  string   `json:"category"`
	CloseTime string   `json:"close_time"`
	Markets   []market `json:"markets"`
}

type market struct {
	Ticker    string `json:"ticker"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	LastPrice int64  `json:"last_price"`
	YesBid    int64  `json:"yes_bid"`
	YesAsk    int64  `json:"yes_ask"`
	NoBid     int64  `json:"no_bid"`
	NoAsk     int64  `json:"no_ask"`
	Liquidity int64  `json:"liquidity"`
	CloseTime string `json:"close_time"`
}
