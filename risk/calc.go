package risk

import (
	"math"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

type Inputs struct {
	Balance      float64
	RiskFraction float64 // 0.01 = 1% of balance at risk
	EntryPrice   float64
	StopPrice    float64
	Instrument   string
}

type Result struct {
	Units      float64
	StopPips   float64
	RiskBudget float64
}

// Calculate converts an account risk budget into a position size given
// the stop distance and the instrument pip convention.
//
// A zero stop distance yields zero units rather than a division fault;
// callers must treat zero units as "do not open".
func Calculate(in Inputs) Result {
	meta := market.Meta(in.Instrument)

	riskBudget := in.Balance * in.RiskFraction
	stopPips := math.Abs(in.EntryPrice-in.StopPrice) * meta.PipMultiplier

	if stopPips == 0 {
		return Result{StopPips: 0, RiskBudget: riskBudget}
	}

	units := riskBudget / (stopPips * meta.PipSize)

	return Result{
		Units:      units,
		StopPips:   stopPips,
		RiskBudget: riskBudget,
	}
}
