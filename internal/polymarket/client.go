package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arusso/matchbook/internal/collectors"
	"github.com/arusso/matchbook/internal/logging"
	"github.com/arusso/matchbook/internal/markets"
)

const defaultBaseURL = "https://gamma-api.polymarket.com/events"

// Client fetches Polymarket events from the Gamma API and flattens them to
// normalized market records.
type Client struct {
	baseURL    string
	httpClient *http.Client
	nextOffset int
}

// Config controls optional overrides for the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient builds a Polymarket client with sane defaults.
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
	return "polymarket"
}

// Fetch retrieves a single page of open events and advances the internal
// offset. When the end of results is reached the offset resets so the next
// poll starts over.
func (c *Client) Fetch(ctx context.Context, opts collectors.FetchOptions) ([]markets.Market, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	events, err := c.listEvents(ctx, pageSize, c.nextOffset)
	if err != nil {
		return nil, fmt.Errorf("polymarket list events: %w", err)
	}
	if len(events) == 0 {
		logging.Infof("[polymarket] reached end of events, resetting offset")
		c.nextOffset = 0
		return nil, nil
	}

	logging.Debugf("[polymarket] processing batch of %d events (offset: %d)", len(events), c.nextOffset)
	var out []markets.Market
	for _, ev := range events {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if ev.Closed {
			continue
		}
		out = append(out, normalizeEvent(&ev)...)
	}

	if len(events) < pageSize {
		logging.Infof("[polymarket] reached end of events, resetting offset")
		c.nextOffset = 0
	} else {
		c.nextOffset += pageSize
	}

	return out, nil
}

func (c *Client) listEvents(ctx context.Context, limit, offset int) ([]eventDetail, error) {
	u, _ := url.Parse(c.baseURL)
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("closed", "false")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var events []eventDetail
	if err := c.do(req, &events); err != nil {
		return nil, err
	}
	return events, nil
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
		return fmt.Errorf("polymarket API %s: %s", resp.Status, string(body))
	}
}

func normalizeEvent(ev *eventDetail) []markets.Market {
	category := markets.ParseCategory(ev.Category)

	var out []markets.Market
	for i := range ev.Markets {
		m := &ev.Markets[i]
		if m.Closed || !m.Active {
			continue
		}
		if strings.TrimSpace(m.Question) == "" {
			continue
		}
		out = append(out, normalizeMarket(m, category))
	}
	return out
}

func normalizeMarket(m *market, category *markets.Category) markets.Market {
	rec := markets.Market{
		ID:       m.ID,
		Platform: markets.PlatformPolymarket,
		Question: m.Question,
		Category: category,
		Status:   markets.StatusOpen,
	}

	if m.EndDate != "" {
		if ts, err := time.Parse(time.RFC3339, m.EndDate); err == nil {
			utc := ts.UTC()
			rec.CloseTime = &utc
		}
	}

	yes, no := parseOutcomePrices(m.OutcomePrices)
	if yes == nil && m.LastTradePrice > 0 {
		v := m.LastTradePrice
		yes = &v
	}
	rec.YesPrice = yes
	rec.NoPrice = no

	if m.LiquidityNum > 0 {
		v := m.LiquidityNum
		rec.Liquidity = &v
	}

	return rec
}

// parseOutcomePrices decodes the Gamma pseudo-JSON price array, e.g.
// "[\"0.45\", \"0.55\"]" -> yes 0.45, no 0.55.
func parseOutcomePrices(raw string) (*float64, *float64) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var prices []string
	if err := json.Unmarshal([]byte(raw), &prices); err != nil {
		return nil, nil
	}
	parse := func(idx int) *float64 {
		if idx >= len(prices) {
			return nil
		}
		f, err := strconv.ParseFloat(prices[idx], 64)
		if err != nil || f < 0 || f > 1 {
			return nil
		}
		return &f
	}
	return parse(0), parse(1)
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

type eventDetail struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Closed   bool     `json:"closed"`
	Category string   `json:"category"`
	EndDate  string   `json:"endDate"`
	Markets  []market `json:"markets"`
}

type market struct {
	ID             string  `json:"id"`
	Question       string  `json:"question"`
	OutcomePrices  string  `json:"outcomePrices"`
	LastTradePrice float64 `json:"lastTradePrice"`
	LiquidityNum   float64 `json:"liquidityNum"`
	EndDate        string  `json:"endDate"`
	Active         bool    `json:"active"`
	Closed         bool    `json:"closed"`
}
