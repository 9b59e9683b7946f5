package sim

import (
	"errors"
	"fmt"
	"log"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/risk"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
)

// Config holds the knobs of a single simulation run.
type Config struct {
	Instrument      string  `json:"instrument" yaml:"instrument"`
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	RiskFraction    float64 `json:"risk_fraction" yaml:"risk_fraction"`
	WarmupBars      int     `json:"warmup_bars" yaml:"warmup_bars"`

	TrailingEnabled bool    `json:"trailing_enabled" yaml:"trailing_enabled"`
	TrailStart      float64 `json:"trail_start" yaml:"trail_start"`       // fraction of target distance that arms the trail
	TrailDistance   float64 `json:"trail_distance" yaml:"trail_distance"` // trail gap as a fraction of target distance

	PreventDuplicates bool `json:"prevent_duplicates" yaml:"prevent_duplicates"`
}

func DefaultConfig() Config {
	return Config{
		Instrument:        "EUR_USD",
		StartingBalance:   850,
		RiskFraction:      0.01,
		WarmupBars:        200,
		TrailingEnabled:   false,
		TrailStart:        0.7,
		TrailDistance:     0.25,
		PreventDuplicates: true,
	}
}

// Simulator replays an ordered bar sequence through a signal generator
// and a trade ledger. Bars are processed strictly in order; within a
// bar, open trades are updated before any new signal is considered, and
// entries fill at the NEXT bar's open so a signal can never act on
// price it has already seen.
type Simulator struct {
	cfg Config
	gen strategies.Generator

	// Logf receives diagnostic lines (skipped entries, evaluation
	// faults). Defaults to log.Printf; sweeps silence it.
	Logf func(format string, args ...any)
}

func NewSimulator(cfg Config, gen strategies.Generator) *Simulator {
	if cfg.WarmupBars <= 0 {
		cfg.WarmupBars = 200
	}
	return &Simulator{
		cfg:  cfg,
		gen:  strategies.Guard{Gen: gen},
		Logf: log.Printf,
	}
}

// Run executes one full replay and returns the ledger holding every
// closed trade and the final account state.
func (s *Simulator) Run(candles []market.Candle) (*Ledger, error) {
	if len(candles) == 0 {
		return nil, errors.New("sim: no candles")
	}
	if err := market.CheckOrdered(candles); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	ledger := NewLedger(s.cfg.StartingBalance, s.cfg.PreventDuplicates)

	for i, c := range candles {
		s.updateOpenTrades(ledger, c)

		// Warm-up: the generator needs a minimum history before its
		// output is meaningful.
		if i < s.cfg.WarmupBars {
			continue
		}

		p := s.gen.Evaluate(candles[:i+1], s.cfg.Instrument)
		if p.Reason == strategies.ReasonError {
			s.logf("signal evaluation fault at bar %d: %s", i, p.Err)
		}
		if !p.Directional() {
			continue
		}

		// Enter at the next bar's open; the current close is only ever
		// used when the dataset ends here.
		entry := c.Close
		if i+1 < len(candles) {
			entry = candles[i+1].Open
		}

		size := risk.Calculate(risk.Inputs{
			Balance:      ledger.Account.Balance,
			RiskFraction: s.cfg.RiskFraction,
			EntryPrice:   entry,
			StopPrice:    p.StopLoss,
			Instrument:   p.Instrument,
		})

		_, err := ledger.Open(p, entry, size.Units, c.Time)
		switch {
		case errors.Is(err, ErrZeroUnits):
			s.logf("skipping %s signal at bar %d: degenerate stop distance", p.Action, i)
		case errors.Is(err, ErrDuplicatePosition):
			// Blocked by the one-position policy; nothing to do.
		case err != nil:
			return nil, fmt.Errorf("sim: open trade at bar %d: %w", i, err)
		}
	}

	// Liquidate whatever is still open at the final close. Flagged
	// EndOfData so reports can separate it from triggered exits.
	last := candles[len(candles)-1]
	for _, t := range append([]*Trade(nil), ledger.OpenTrades()...) {
		if err := ledger.Close(t, last.Close, last.Time, CloseEndOfData); err != nil {
			return nil, fmt.Errorf("sim: end-of-data close: %w", err)
		}
	}

	return ledger, nil
}

// updateOpenTrades runs the per-bar update phase for every open trade:
// extend excursions, evaluate break-even and trailing, then evaluate
// exits against this bar's range.
func (s *Simulator) updateOpenTrades(ledger *Ledger, c market.Candle) {
	for _, t := range append([]*Trade(nil), ledger.OpenTrades()...) {
		s.updateExcursions(t, c)
		s.updateBreakEven(t, c)
		if s.cfg.TrailingEnabled {
			s.updateTrailing(t, c)
		}
		s.evaluateExit(ledger, t, c)
	}
}

func (s *Simulator) updateExcursions(t *Trade, c market.Candle) {
	if c.High > t.HighestPrice {
		t.HighestPrice = c.High
	}
	if c.Low < t.LowestPrice {
		t.LowestPrice = c.Low
	}
}

// updateBreakEven latches the break-even flag when the favorable move
// on this bar reaches the original risk distance (1R).
func (s *Simulator) updateBreakEven(t *Trade, c market.Candle) {
	if t.BreakEvenReached {
		return
	}
	riskDist := t.RiskDistance()
	if riskDist <= 0 {
		return
	}
	switch t.Side {
	case Long:
		if c.High-t.EntryPrice >= riskDist {
			t.BreakEvenReached = true
		}
	case Short:
		if t.EntryPrice-c.Low >= riskDist {
			t.BreakEvenReached = true
		}
	}
}

// updateTrailing arms the trailing stop once the trigger condition is
// met, replacing the fixed take-profit with an open-ended trailing
// target, and afterwards walks the stop behind the favorable extreme.
// The stop only ever tightens.
func (s *Simulator) updateTrailing(t *Trade, c market.Candle) {
	if !t.TrailingArmed {
		dist, ok := TrailTrigger(c, t, s.cfg.TrailStart, s.cfg.TrailDistance)
		if !ok {
			return
		}
		t.TrailingArmed = true
		t.Target = TrailingTarget(dist)
	}

	if newStop := market.RoundPrice(trailStopFor(t)); tightens(t, newStop) {
		t.StopLoss = newStop
	}
}

// evaluateExit checks this bar's range against the trade's levels. When
// both the take-profit and the stop are touched within one bar the
// resolution is always the stop-loss outcome; the intrabar path is
// unknown and we never assume the favorable one.
func (s *Simulator) evaluateExit(ledger *Ledger, t *Trade, c market.Candle) {
	hasTP := t.Target.Kind == TargetFixed

	var hitTP, hitSL bool
	if t.Side == Long {
		hitTP = hasTP && c.High >= t.Target.Price
		hitSL = c.Low <= t.StopLoss
	} else {
		hitTP = hasTP && c.Low <= t.Target.Price
		hitSL = c.High >= t.StopLoss
	}

	switch {
	case hitSL:
		reason := CloseStopLoss
		if t.TrailingArmed {
			reason = CloseTrailingStop
		}
		_ = ledger.Close(t, t.StopLoss, c.Time, reason)
	case hitTP:
		_ = ledger.Close(t, t.Target.Price, c.Time, CloseTakeProfit)
	}
}

func (s *Simulator) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}
