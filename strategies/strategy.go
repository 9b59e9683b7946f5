package strategies

import (
	"fmt"
	"strings"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// Action is the directional decision of a signal generator.
type Action string

const (
	Hold Action = "hold"
	Buy  Action = "buy"
	Sell Action = "sell"
)

// Reason is a typed outcome code attached to every proposal so callers
// can tell "no signal" apart from "evaluation fault" without exceptions.
type Reason string

const (
	ReasonInsufficientData Reason = "insufficient_data"
	ReasonInvalidData      Reason = "invalid_data"
	ReasonNoSignal         Reason = "no_signal"
	ReasonCrossoverBuy     Reason = "ema_crossover_buy"
	ReasonCrossoverSell    Reason = "ema_crossover_sell"
	ReasonError            Reason = "error"
)

// Diagnostics carries the indicator values behind a decision. Purely
// informational; the simulator never branches on these.
type Diagnostics struct {
	RSI      float64
	ATR      float64
	EMAFast  float64
	EMASlow  float64
	EMATrend float64
}

// Proposal is a trade proposal produced fresh per bar. Stop and target
// are meaningful only when Action is Buy or Sell.
type Proposal struct {
	Instrument string
	Action     Action
	StopLoss   float64
	TakeProfit float64
	Reason     Reason
	Err        string // set when Reason == ReasonError
	Diagnostics
}

func (p Proposal) Directional() bool {
	return p.Action == Buy || p.Action == Sell
}

// Generator produces trade proposals from bar history.
//
// Evaluate must be deterministic for identical input, must never mutate
// the window, and returns a Hold proposal (never an error) when the
// window is shorter than its required minimum.
type Generator interface {
	Name() string
	MinBars() int
	Evaluate(window []market.Candle, instrument string) Proposal
}

// Guard wraps a Generator so that any panic during evaluation degrades
// to a Hold proposal with an error reason instead of aborting the run.
type Guard struct {
	Gen Generator
}

func (g Guard) Name() string { return g.Gen.Name() }

func (g Guard) MinBars() int { return g.Gen.MinBars() }

func (g Guard) Evaluate(window []market.Candle, instrument string) (p Proposal) {
	defer func() {
		if r := recover(); r != nil {
			p = Proposal{
				Instrument: instrument,
				Action:     Hold,
				Reason:     ReasonError,
				Err:        fmt.Sprint(r),
			}
		}
	}()
	return g.Gen.Evaluate(window, instrument)
}

// ByName constructs a generator from its registry name.
func ByName(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "ema-cross", "emacross", "ema_cross_9_25":
		return NewEMACross(EMACrossDefaults()), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, ema-cross)", name)
	}
}

// Noop never signals. Useful as a baseline in tests and sweeps.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) MinBars() int { return 0 }

func (Noop) Evaluate(window []market.Candle, instrument string) Proposal {
	return Proposal{Instrument: instrument, Action: Hold, Reason: ReasonNoSignal}
}
