package broker

import (
	"context"
	"time"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// Quote is a two-sided price snapshot for one instrument.
type Quote struct {
	Instrument string
	Bid        float64
	Ask        float64
	Time       time.Time
}

// Mid is the midpoint of the quote.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// OrderRequest is a market order with attached exit levels. Units are
// signed: positive buys, negative sells.
type OrderRequest struct {
	Instrument string
	Units      float64
	StopLoss   float64
	TakeProfit float64

	// Tag travels with the order for journaling; brokers that support
	// client extensions echo it back on the fill.
	Tag string
}

// OrderFill is the broker's confirmation of an executed order.
type OrderFill struct {
	TradeID    string
	Instrument string
	Units      float64
	Price      float64
	Time       time.Time
}

// Broker is the live-trading surface the driver loop needs. Every call
// crosses a network boundary, so everything takes a context and can
// fail transiently.
type Broker interface {
	GetCandles(ctx context.Context, instrument string, count int, granularity string) ([]market.Candle, error)
	GetPrice(ctx context.Context, instrument string) (Quote, error)
	GetBalance(ctx context.Context) (float64, error)
	HasOpenPosition(ctx context.Context, instrument string) (bool, error)
	ExecuteTrade(ctx context.Context, req OrderRequest) (OrderFill, error)
}
