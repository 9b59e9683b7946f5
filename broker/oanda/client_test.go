package oanda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/broker"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Token: "test-token", AccountID: "001-001", Environment: "practice"})
	require.NoError(t, err)
	c.baseURL = srv.URL
	c.Backoff = time.Millisecond
	return c
}

func TestGetCandles(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/instruments/EUR_USD/candles", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "3", r.URL.Query().Get("count"))
		assert.Equal(t, "M5", r.URL.Query().Get("granularity"))

		json.NewEncoder(w).Encode(map[string]any{
			"instrument": "EUR_USD",
			"candles": []map[string]any{
				{"complete": true, "volume": 120, "time": "2024-03-01T09:00:00Z",
					"mid": map[string]string{"o": "1.1000", "h": "1.1010", "l": "1.0990", "c": "1.1005"}},
				{"complete": true, "volume": 98, "time": "2024-03-01T09:05:00Z",
					"mid": map[string]string{"o": "1.1005", "h": "1.1020", "l": "1.1000", "c": "1.1015"}},
				{"complete": false, "volume": 12, "time": "2024-03-01T09:10:00Z",
					"mid": map[string]string{"o": "1.1015", "h": "1.1016", "l": "1.1014", "c": "1.1015"}},
			},
		})
	}))

	candles, err := c.GetCandles(context.Background(), "EUR_USD", 3, "M5")
	require.NoError(t, err)

	// The still-forming candle is dropped.
	require.Len(t, candles, 2)
	assert.Equal(t, 1.1000, candles[0].Open)
	assert.Equal(t, 1.1015, candles[1].Close)
	assert.Equal(t, 120.0, candles[0].Volume)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), candles[0].Time)
}

func TestGetPrice(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/001-001/pricing", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"prices": []map[string]any{{
				"instrument": "EUR_USD",
				"time":       "2024-03-01T09:00:00Z",
				"bids":       []map[string]string{{"price": "1.10005"}},
				"asks":       []map[string]string{{"price": "1.10015"}},
			}},
		})
	}))

	q, err := c.GetPrice(context.Background(), "EUR_USD")
	require.NoError(t, err)
	assert.Equal(t, 1.10005, q.Bid)
	assert.Equal(t, 1.10015, q.Ask)
	assert.InDelta(t, 1.10010, q.Mid(), 1e-9)
}

func TestGetBalance(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/001-001/summary", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"account": map[string]string{"balance": "851.37"},
		})
	}))

	balance, err := c.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 851.37, balance)
}

func TestHasOpenPosition(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"positions": []map[string]string{{"instrument": "GBP_USD"}},
		})
	}))

	open, err := c.HasOpenPosition(context.Background(), "GBP_USD")
	require.NoError(t, err)
	assert.True(t, open)

	open, err = c.HasOpenPosition(context.Background(), "EUR_USD")
	require.NoError(t, err)
	assert.False(t, open)
}

func TestExecuteTrade(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/accounts/001-001/orders", r.URL.Path)

		var payload struct {
			Order map[string]any `json:"order"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "MARKET", payload.Order["type"])
		assert.Equal(t, "1700", payload.Order["units"])
		assert.Equal(t, map[string]any{"price": "1.09500"}, payload.Order["stopLossOnFill"])
		assert.Equal(t, map[string]any{"price": "1.11000"}, payload.Order["takeProfitOnFill"])

		json.NewEncoder(w).Encode(map[string]any{
			"orderFillTransaction": map[string]string{
				"id": "42", "instrument": "EUR_USD", "units": "1700",
				"price": "1.10002", "time": "2024-03-01T09:00:01Z",
			},
		})
	}))

	fill, err := c.ExecuteTrade(context.Background(), broker.OrderRequest{
		Instrument: "EUR_USD",
		Units:      1700,
		StopLoss:   1.0950,
		TakeProfit: 1.1100,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", fill.TradeID)
	assert.Equal(t, 1700.0, fill.Units)
	assert.Equal(t, 1.10002, fill.Price)
}

func TestExecuteTradeCancelled(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"orderCancelTransaction": map[string]string{"reason": "INSUFFICIENT_MARGIN"},
		})
	}))

	_, err := c.ExecuteTrade(context.Background(), broker.OrderRequest{Instrument: "EUR_USD", Units: 1700})
	assert.ErrorContains(t, err, "INSUFFICIENT_MARGIN")
}

func TestRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"account": map[string]string{"balance": "850.00"},
		})
	}))

	balance, err := c.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 850.0, balance)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesAreBounded(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	c.MaxRetries = 2

	_, err := c.GetBalance(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "giving up after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))

	_, err := c.GetBalance(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "http 401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestConfigBaseURL(t *testing.T) {
	t.Parallel()

	url, err := Config{Environment: "practice"}.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, PracticeURL, url)

	url, err = Config{Environment: "live"}.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, LiveURL, url)

	_, err = Config{Environment: "sandbox"}.BaseURL()
	assert.Error(t, err)
}
