package live

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/broker"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/pkg/id"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/risk"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
)

// Trader polls the broker on a fixed interval and routes signals into
// market orders. The broker holds the positions; the trader itself is
// stateless between cycles, so a restart picks up cleanly.
type Trader struct {
	Broker broker.Broker
	Gen    strategies.Generator

	Instrument   string
	RiskFraction float64
	Granularity  string
	CandleCount  int
	Interval     time.Duration

	Logf func(format string, args ...any)
}

func NewTrader(b broker.Broker, gen strategies.Generator, instrument string) *Trader {
	return &Trader{
		Broker:       b,
		Gen:          strategies.Guard{Gen: gen},
		Instrument:   instrument,
		RiskFraction: 0.01,
		Granularity:  "M5",
		CandleCount:  500,
		Interval:     5 * time.Minute,
		Logf:         log.Printf,
	}
}

// Run polls until the context is cancelled. A failed cycle is logged
// and the next tick proceeds; only cancellation ends the loop.
func (t *Trader) Run(ctx context.Context) error {
	if err := t.check(); err != nil {
		return err
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	t.logf("live: polling %s every %s", t.Instrument, t.Interval)

	for {
		if err := t.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logf("live: cycle failed, skipping: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle runs one poll: fetch history, evaluate, and place an order
// when there is a signal and no position is already open.
func (t *Trader) Cycle(ctx context.Context) error {
	cycle := id.New()

	candles, err := t.Broker.GetCandles(ctx, t.Instrument, t.CandleCount, t.Granularity)
	if err != nil {
		return fmt.Errorf("get candles: %w", err)
	}

	p := t.Gen.Evaluate(candles, t.Instrument)
	if p.Reason == strategies.ReasonError {
		return fmt.Errorf("evaluate: %s", p.Err)
	}
	if !p.Directional() {
		return nil
	}
	t.logf("live [%s]: %s signal (%s)", cycle, p.Action, p.Reason)

	open, err := t.Broker.HasOpenPosition(ctx, t.Instrument)
	if err != nil {
		return fmt.Errorf("check position: %w", err)
	}
	if open {
		t.logf("live [%s]: position already open on %s, holding", cycle, t.Instrument)
		return nil
	}

	balance, err := t.Broker.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	quote, err := t.Broker.GetPrice(ctx, t.Instrument)
	if err != nil {
		return fmt.Errorf("get price: %w", err)
	}
	entry := quote.Ask
	if p.Action == strategies.Sell {
		entry = quote.Bid
	}

	size := risk.Calculate(risk.Inputs{
		Balance:      balance,
		RiskFraction: t.RiskFraction,
		EntryPrice:   entry,
		StopPrice:    p.StopLoss,
		Instrument:   t.Instrument,
	})
	if size.Units == 0 {
		t.logf("live [%s]: degenerate stop distance, skipping", cycle)
		return nil
	}

	units := size.Units
	if p.Action == strategies.Sell {
		units = -units
	}

	fill, err := t.Broker.ExecuteTrade(ctx, broker.OrderRequest{
		Instrument: t.Instrument,
		Units:      units,
		StopLoss:   p.StopLoss,
		TakeProfit: p.TakeProfit,
		Tag:        cycle,
	})
	if err != nil {
		return fmt.Errorf("execute trade: %w", err)
	}

	t.logf("live [%s]: filled trade %s: %.0f units of %s at %.5f",
		cycle, fill.TradeID, fill.Units, fill.Instrument, fill.Price)
	return nil
}

func (t *Trader) check() error {
	if t.Broker == nil {
		return fmt.Errorf("live: Broker is required")
	}
	if t.Gen == nil {
		return fmt.Errorf("live: Gen is required")
	}
	if t.Instrument == "" {
		return fmt.Errorf("live: Instrument is required")
	}
	if t.Interval <= 0 {
		return fmt.Errorf("live: Interval must be positive")
	}
	return nil
}

func (t *Trader) logf(format string, args ...any) {
	if t.Logf != nil {
		t.Logf(format, args...)
	}
}
