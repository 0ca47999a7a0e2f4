package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rustyeddy/tradeenv/data"
	"github.com/rustyeddy/tradeenv/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string, limit int) *Client {
	return &Client{
		baseURL:    url,
		apiKey:     "test-key",
		limit:      limit,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func klineRow(t time.Time, open float64) string {
	return fmt.Sprintf(`[%d,"%g","%g","%g","%g","12.5",%d,"0",3,"0","0","0"]`,
		t.UnixMilli(), open, open+1, open-1, open+0.5, t.Add(24*time.Hour).UnixMilli()-1)
}

func TestNewClient(t *testing.T) {
	c := NewClient("k")
	assert.Equal(t, BaseURL, c.baseURL)
	assert.Equal(t, "k", c.apiKey)
	assert.Equal(t, MaxLimit, c.limit)
	assert.NotNil(t, c.httpClient)
}

func TestKlinesPaging(t *testing.T) {
	day0 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))
		q := r.URL.Query()
		assert.Equal(t, "BTCUSDT", q.Get("symbol"))
		assert.Equal(t, "1d", q.Get("interval"))
		assert.Equal(t, "2", q.Get("limit"))

		start, err := strconv.ParseInt(q.Get("startTime"), 10, 64)
		assert.NoError(t, err)
		end, err := strconv.ParseInt(q.Get("endTime"), 10, 64)
		assert.NoError(t, err)

		body := "["
		n := 0
		for d := 0; d < 5 && n < 2; d++ {
			ts := day0.AddDate(0, 0, d)
			if ts.UnixMilli() < start || ts.UnixMilli() > end {
				continue
			}
			if n > 0 {
				body += ","
			}
			body += klineRow(ts, float64(100+d))
			n++
		}
		body += "]"
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	c := testClient(server.URL, 2)
	bars, err := c.Klines(context.Background(), data.Request{
		Symbol:   "BTCUSDT",
		Interval: market.Interval1d,
		Start:    day0,
		End:      day0.AddDate(0, 0, 4),
	})
	require.NoError(t, err)
	require.Len(t, bars, 5)
	assert.Equal(t, 3, calls)

	for i, b := range bars {
		assert.True(t, b.Time.Equal(day0.AddDate(0, 0, i)))
		assert.Equal(t, float64(100+i), b.Open)
		assert.Equal(t, float64(101+i), b.High)
		assert.Equal(t, float64(99+i), b.Low)
		assert.Equal(t, 12.5, b.Volume)
	}
}

func TestKlinesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer server.Close()

	c := testClient(server.URL, MaxLimit)
	_, err := c.Klines(context.Background(), data.Request{
		Symbol:   "NOPE",
		Interval: market.Interval1d,
		Start:    time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Invalid symbol")
}

func TestKlinesValidation(t *testing.T) {
	c := NewClient("")
	ctx := context.Background()
	t0 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.Klines(ctx, data.Request{Interval: market.Interval1d, Start: t0, End: t0})
	assert.Error(t, err)

	_, err = c.Klines(ctx, data.Request{Symbol: "BTCUSDT", Interval: "9x", Start: t0, End: t0})
	assert.Error(t, err)

	_, err = c.Klines(ctx, data.Request{Symbol: "BTCUSDT", Interval: market.Interval1d, Start: t0, End: t0.AddDate(0, 0, -1)})
	assert.Error(t, err)
}

func TestParseKlineErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[1609459200000,"abc","1","1","1","1"]]`)
	}))
	defer server.Close()

	c := testClient(server.URL, MaxLimit)
	t0 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.Klines(context.Background(), data.Request{Symbol: "BTCUSDT", Interval: market.Interval1d, Start: t0, End: t0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kline 0")
}
