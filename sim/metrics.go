package sim

import (
	"math"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// Metrics is a read-only reduction of a run's closed-trade list.
// Recomputed per run, never mutated incrementally.
type Metrics struct {
	TotalTrades int
	Wins        int
	Losses      int
	Breakeven   int // closed flat after rounding

	WinRate float64 // percent of total
	AvgWin  float64 // account currency
	AvgLoss float64 // account currency

	// ProfitFactor is gross wins over gross loss magnitude; +Inf when
	// there are wins and no losses, 0 when there is nothing to divide.
	ProfitFactor float64

	TotalProfitUSD  float64
	TotalProfitPips float64
	ReturnPct       float64 // on starting balance

	BreakEvenReached    int
	BreakEvenReachedPct float64

	TrailingArmed    int
	TrailingArmedPct float64
	TrailingWins     int
	TrailingLosses   int

	// AvgTargetCapturePct is the share of the original target distance
	// realized by trailing exits, averaged over those exits.
	AvgTargetCapturePct float64

	// AvgRewardToRisk is the realized profit measured in original risk
	// units (R multiples), averaged over all closed trades.
	AvgRewardToRisk float64

	MaxDrawdown float64 // account currency, from the equity curve
}

// ComputeMetrics reduces closed trades (in closing order) into a
// snapshot. Every percentage is taken against the total closed count;
// empty inputs produce zeros, never a division fault.
func ComputeMetrics(trades []*Trade, startingBalance float64) Metrics {
	m := Metrics{TotalTrades: len(trades)}

	var grossWin, grossLoss float64
	var captureSum float64
	var captureN int
	var rrSum float64
	var rrN int

	balance := startingBalance
	peak := startingBalance

	for _, t := range trades {
		m.TotalProfitUSD += t.ProfitUSD
		m.TotalProfitPips += t.ProfitPips

		switch {
		case t.ProfitUSD > 0:
			m.Wins++
			grossWin += t.ProfitUSD
		case t.ProfitUSD < 0:
			m.Losses++
			grossLoss += -t.ProfitUSD
		default:
			m.Breakeven++
		}

		if t.BreakEvenReached {
			m.BreakEvenReached++
		}
		if t.TrailingArmed {
			m.TrailingArmed++
			if t.Win {
				m.TrailingWins++
			} else {
				m.TrailingLosses++
			}
		}

		if t.CloseReason == CloseTrailingStop {
			if dist := t.TargetDistance(); dist > 0 {
				captureSum += t.Profit / dist * 100
				captureN++
			}
		}
		if riskDist := t.RiskDistance(); riskDist > 0 {
			rrSum += t.Profit / riskDist
			rrN++
		}

		balance += t.ProfitUSD
		if balance > peak {
			peak = balance
		}
		if dd := peak - balance; dd > m.MaxDrawdown {
			m.MaxDrawdown = dd
		}
	}

	if m.TotalTrades > 0 {
		total := float64(m.TotalTrades)
		m.WinRate = market.RoundCash(float64(m.Wins) / total * 100)
		m.BreakEvenReachedPct = market.RoundCash(float64(m.BreakEvenReached) / total * 100)
		m.TrailingArmedPct = market.RoundCash(float64(m.TrailingArmed) / total * 100)
	}
	if m.Wins > 0 {
		m.AvgWin = market.RoundCash(grossWin / float64(m.Wins))
	}
	if m.Losses > 0 {
		m.AvgLoss = market.RoundCash(-grossLoss / float64(m.Losses))
	}

	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossWin / grossLoss
	case grossWin > 0:
		m.ProfitFactor = math.Inf(1)
	}

	if captureN > 0 {
		m.AvgTargetCapturePct = captureSum / float64(captureN)
	}
	if rrN > 0 {
		m.AvgRewardToRisk = rrSum / float64(rrN)
	}
	if startingBalance > 0 {
		m.ReturnPct = m.TotalProfitUSD / startingBalance * 100
	}

	m.TotalProfitUSD = market.RoundCash(m.TotalProfitUSD)
	m.TotalProfitPips = market.RoundCash(m.TotalProfitPips)

	return m
}
