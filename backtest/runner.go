package backtest

import (
	"fmt"
	"time"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/sim"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
)

// EquityPoint is one step of the equity curve, recorded when a trade
// closes. Drawdown is the distance below the running balance peak.
type EquityPoint struct {
	Time           time.Time
	TradeID        int64
	Balance        float64
	Drawdown       float64
	CumulativePips float64
}

// Result is one completed replay: the closed-trade list, the reduced
// metrics, and the equity curve, all keyed by a config-derived RunID.
type Result struct {
	RunID    string
	Strategy string
	Config   sim.Config

	Trades  []*sim.Trade
	Account sim.AccountState
	Metrics sim.Metrics
	Equity  []EquityPoint

	Start time.Time
	End   time.Time
}

// RunID derives a stable identifier from the run parameters. Replaying
// the same config over the same dataset produces the same ID, so sweep
// reruns land in the same place.
func RunID(cfg sim.Config) string {
	if cfg.TrailingEnabled {
		return fmt.Sprintf("%s-r%.4f-trail-s%.2f-d%.2f",
			cfg.Instrument, cfg.RiskFraction, cfg.TrailStart, cfg.TrailDistance)
	}
	return fmt.Sprintf("%s-r%.4f-fixed", cfg.Instrument, cfg.RiskFraction)
}

// Runner drives one full replay of a candle dataset through a
// simulator and reduces the outcome into a Result.
type Runner struct {
	Config   sim.Config
	Strategy strategies.Generator

	// Quiet drops the simulator's diagnostic lines. Sweeps set it so
	// dozens of parallel runs do not interleave log output.
	Quiet bool
	Logf  func(format string, args ...any)
}

func (r *Runner) Run(candles []market.Candle) (Result, error) {
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if len(candles) == 0 {
		return Result{}, fmt.Errorf("backtest: no candles")
	}

	s := sim.NewSimulator(r.Config, r.Strategy)
	if r.Quiet {
		s.Logf = nil
	} else if r.Logf != nil {
		s.Logf = r.Logf
	}

	ledger, err := s.Run(candles)
	if err != nil {
		return Result{}, err
	}

	trades := ledger.ClosedTrades()

	return Result{
		RunID:    RunID(r.Config),
		Strategy: r.Strategy.Name(),
		Config:   r.Config,
		Trades:   trades,
		Account:  ledger.Account,
		Metrics:  sim.ComputeMetrics(trades, r.Config.StartingBalance),
		Equity:   equityCurve(trades, r.Config.StartingBalance),
		Start:    candles[0].Time,
		End:      candles[len(candles)-1].Time,
	}, nil
}

// equityCurve walks the closed trades in closing order and records the
// balance, the drawdown from the running peak, and the cumulative pip
// total after each close.
func equityCurve(trades []*sim.Trade, startingBalance float64) []EquityPoint {
	points := make([]EquityPoint, 0, len(trades))

	balance := startingBalance
	peak := startingBalance
	var cumPips float64

	for _, t := range trades {
		balance += t.ProfitUSD
		if balance > peak {
			peak = balance
		}
		cumPips += t.ProfitPips

		points = append(points, EquityPoint{
			Time:           t.CloseTime,
			TradeID:        t.ID,
			Balance:        market.RoundCash(balance),
			Drawdown:       market.RoundCash(peak - balance),
			CumulativePips: market.RoundCash(cumPips),
		})
	}
	return points
}
