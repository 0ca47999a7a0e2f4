package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/tradeenv/data"
	"github.com/rustyeddy/tradeenv/market"
)

const (
	// BaseURL is Binance's public spot REST endpoint
	BaseURL = "https://api.binance.com"

	// MaxLimit is the largest page the klines endpoint returns
	MaxLimit = 1000
)

// Client downloads klines from the Binance REST API. The API key is
// optional for market data.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
}

// NewClient creates a new Binance API client
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: BaseURL,
		apiKey:  apiKey,
		limit:   MaxLimit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ data.Provider = (*Client)(nil)

// Klines fetches every bar with an open time in [req.Start, req.End],
// paging through the API as needed.
func (c *Client) Klines(ctx context.Context, req data.Request) ([]market.Bar, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if !req.Interval.Valid() {
		return nil, fmt.Errorf("unknown interval %q", req.Interval)
	}
	if req.End.Before(req.Start) {
		return nil, fmt.Errorf("end %s is before start %s", req.End, req.Start)
	}

	start := req.Start.UnixMilli()
	end := req.End.UnixMilli()

	var bars []market.Bar
	for {
		page, err := c.page(ctx, req.Symbol, req.Interval, start, end)
		if err != nil {
			return nil, err
		}
		bars = append(bars, page...)

		if len(page) < c.limit {
			return bars, nil
		}
		start = page[len(page)-1].Time.UnixMilli() + 1
		if start > end {
			return bars, nil
		}
	}
}

func (c *Client) page(ctx context.Context, symbol string, interval market.Interval, start, end int64) ([]market.Bar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", string(interval))
	params.Set("startTime", strconv.FormatInt(start, 10))
	params.Set("endTime", strconv.FormatInt(end, 10))
	params.Set("limit", strconv.Itoa(c.limit))

	apiURL := fmt.Sprintf("%s/api/v3/klines?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	bars := make([]market.Bar, 0, len(rows))
	for i, row := range rows {
		b, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// parseKline keeps the open time and OHLCV columns of a kline row:
//
//	[openTime, open, high, low, close, volume, closeTime, ...]
func parseKline(row []json.RawMessage) (market.Bar, error) {
	if len(row) < 6 {
		return market.Bar{}, fmt.Errorf("want at least 6 columns, got %d", len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return market.Bar{}, fmt.Errorf("open time: %w", err)
	}

	var vals [5]float64
	for i := range vals {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return market.Bar{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("column %d: %w", i+1, err)
		}
		vals[i] = v
	}

	return market.Bar{
		Time:   time.UnixMilli(openTime).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
