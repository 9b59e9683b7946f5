package oanda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/broker"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// Client talks to the OANDA v3 REST API. Transient failures (network
// errors, 5xx, 429) are retried a bounded number of times with a flat
// backoff; anything else fails immediately.
type Client struct {
	cfg     Config
	baseURL string

	HTTP       *http.Client
	MaxRetries int
	Backoff    time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
	}, nil
}

var _ broker.Broker = (*Client)(nil)

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type candlesResponse struct {
	Instrument string `json:"instrument"`
	Candles    []struct {
		Complete bool       `json:"complete"`
		Volume   int        `json:"volume"`
		Time     string     `json:"time"`
		Mid      candleData `json:"mid"`
	} `json:"candles"`
}

// GetCandles fetches the most recent complete mid-price candles.
func (c *Client) GetCandles(ctx context.Context, instrument string, count int, granularity string) ([]market.Candle, error) {
	if instrument == "" {
		return nil, fmt.Errorf("oanda: instrument is required")
	}
	if count <= 0 || count > 5000 {
		return nil, fmt.Errorf("oanda: count must be in 1..5000, got %d", count)
	}
	if granularity == "" {
		granularity = "M5"
	}

	params := url.Values{}
	params.Set("price", "M")
	params.Set("granularity", granularity)
	params.Set("count", strconv.Itoa(count))

	var resp candlesResponse
	path := fmt.Sprintf("/v3/instruments/%s/candles", instrument)
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(resp.Candles))
	for _, ac := range resp.Candles {
		if !ac.Complete {
			continue
		}
		t, err := time.Parse(time.RFC3339, ac.Time)
		if err != nil {
			return nil, fmt.Errorf("oanda: parse candle time %q: %w", ac.Time, err)
		}
		mc, err := parseCandle(ac.Mid, t, float64(ac.Volume))
		if err != nil {
			return nil, err
		}
		candles = append(candles, mc)
	}
	return candles, nil
}

type pricingResponse struct {
	Prices []struct {
		Instrument string `json:"instrument"`
		Time       string `json:"time"`
		Bids       []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	} `json:"prices"`
}

func (c *Client) GetPrice(ctx context.Context, instrument string) (broker.Quote, error) {
	params := url.Values{}
	params.Set("instruments", instrument)

	var resp pricingResponse
	path := fmt.Sprintf("/v3/accounts/%s/pricing", c.cfg.AccountID)
	if err := c.get(ctx, path, params, &resp); err != nil {
		return broker.Quote{}, err
	}
	if len(resp.Prices) == 0 || len(resp.Prices[0].Bids) == 0 || len(resp.Prices[0].Asks) == 0 {
		return broker.Quote{}, fmt.Errorf("oanda: no pricing for %s", instrument)
	}

	p := resp.Prices[0]
	bid, err := strconv.ParseFloat(p.Bids[0].Price, 64)
	if err != nil {
		return broker.Quote{}, fmt.Errorf("oanda: bad bid %q: %w", p.Bids[0].Price, err)
	}
	ask, err := strconv.ParseFloat(p.Asks[0].Price, 64)
	if err != nil {
		return broker.Quote{}, fmt.Errorf("oanda: bad ask %q: %w", p.Asks[0].Price, err)
	}
	t, err := time.Parse(time.RFC3339, p.Time)
	if err != nil {
		t = time.Now().UTC()
	}
	return broker.Quote{Instrument: p.Instrument, Bid: bid, Ask: ask, Time: t}, nil
}

type summaryResponse struct {
	Account struct {
		Balance string `json:"balance"`
	} `json:"account"`
}

func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	var resp summaryResponse
	path := fmt.Sprintf("/v3/accounts/%s/summary", c.cfg.AccountID)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return 0, err
	}
	balance, err := strconv.ParseFloat(resp.Account.Balance, 64)
	if err != nil {
		return 0, fmt.Errorf("oanda: bad balance %q: %w", resp.Account.Balance, err)
	}
	return balance, nil
}

type openPositionsResponse struct {
	Positions []struct {
		Instrument string `json:"instrument"`
	} `json:"positions"`
}

func (c *Client) HasOpenPosition(ctx context.Context, instrument string) (bool, error) {
	var resp openPositionsResponse
	path := fmt.Sprintf("/v3/accounts/%s/openPositions", c.cfg.AccountID)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return false, err
	}
	for _, p := range resp.Positions {
		if p.Instrument == instrument {
			return true, nil
		}
	}
	return false, nil
}

type orderFillResponse struct {
	OrderFillTransaction *struct {
		ID         string `json:"id"`
		Instrument string `json:"instrument"`
		Units      string `json:"units"`
		Price      string `json:"price"`
		Time       string `json:"time"`
	} `json:"orderFillTransaction"`
	OrderCancelTransaction *struct {
		Reason string `json:"reason"`
	} `json:"orderCancelTransaction"`
}

// ExecuteTrade submits a market order with stop-loss and take-profit
// on fill. Units are truncated to whole units as OANDA requires.
func (c *Client) ExecuteTrade(ctx context.Context, req broker.OrderRequest) (broker.OrderFill, error) {
	if req.Instrument == "" {
		return broker.OrderFill{}, fmt.Errorf("oanda: instrument is required")
	}
	if req.Units == 0 {
		return broker.OrderFill{}, fmt.Errorf("oanda: zero units")
	}

	order := map[string]any{
		"type":         "MARKET",
		"instrument":   req.Instrument,
		"units":        strconv.FormatInt(int64(req.Units), 10),
		"timeInForce":  "FOK",
		"positionFill": "DEFAULT",
	}
	if req.StopLoss > 0 {
		order["stopLossOnFill"] = map[string]string{"price": fprice(req.StopLoss)}
	}
	if req.TakeProfit > 0 {
		order["takeProfitOnFill"] = map[string]string{"price": fprice(req.TakeProfit)}
	}
	if req.Tag != "" {
		order["clientExtensions"] = map[string]string{"tag": req.Tag}
	}

	var resp orderFillResponse
	path := fmt.Sprintf("/v3/accounts/%s/orders", c.cfg.AccountID)
	if err := c.post(ctx, path, map[string]any{"order": order}, &resp); err != nil {
		return broker.OrderFill{}, err
	}
	if resp.OrderCancelTransaction != nil {
		return broker.OrderFill{}, fmt.Errorf("oanda: order cancelled: %s", resp.OrderCancelTransaction.Reason)
	}
	if resp.OrderFillTransaction == nil {
		return broker.OrderFill{}, fmt.Errorf("oanda: order not filled")
	}

	fill := resp.OrderFillTransaction
	units, _ := strconv.ParseFloat(fill.Units, 64)
	price, _ := strconv.ParseFloat(fill.Price, 64)
	t, err := time.Parse(time.RFC3339, fill.Time)
	if err != nil {
		t = time.Now().UTC()
	}
	return broker.OrderFill{
		TradeID:    fill.ID,
		Instrument: fill.Instrument,
		Units:      units,
		Price:      price,
		Time:       t,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u.Path = path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Backoff * time.Duration(attempt)):
			}
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if retryable(resp.StatusCode) {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
			resp.Body.Close()
			lastErr = fmt.Errorf("oanda: http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
			resp.Body.Close()
			return fmt.Errorf("oanda: http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("oanda: decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("oanda: giving up after %d attempts: %w", retries+1, lastErr)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func parseCandle(d candleData, t time.Time, volume float64) (market.Candle, error) {
	var c market.Candle
	var err error
	if c.Open, err = strconv.ParseFloat(d.O, 64); err != nil {
		return c, fmt.Errorf("oanda: bad open %q: %w", d.O, err)
	}
	if c.High, err = strconv.ParseFloat(d.H, 64); err != nil {
		return c, fmt.Errorf("oanda: bad high %q: %w", d.H, err)
	}
	if c.Low, err = strconv.ParseFloat(d.L, 64); err != nil {
		return c, fmt.Errorf("oanda: bad low %q: %w", d.L, err)
	}
	if c.Close, err = strconv.ParseFloat(d.C, 64); err != nil {
		return c, fmt.Errorf("oanda: bad close %q: %w", d.C, err)
	}
	c.Time = t
	c.Volume = volume
	return c, nil
}

func fprice(x float64) string {
	return strconv.FormatFloat(x, 'f', 5, 64)
}
