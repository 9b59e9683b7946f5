package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateNonJPYQuote(t *testing.T) {
	t.Parallel()

	// The worked example: 850 balance, 1% risk, 50 pip stop.
	got := Calculate(Inputs{
		Balance:      850,
		RiskFraction: 0.01,
		EntryPrice:   1.10000,
		StopPrice:    1.09500,
		Instrument:   "EUR_USD",
	})

	assert.InDelta(t, 50.0, got.StopPips, 1e-9)
	assert.InDelta(t, 8.50, got.RiskBudget, 1e-9)
	assert.InDelta(t, 1700.0, got.Units, 1e-9)
}

func TestCalculateJPYQuote(t *testing.T) {
	t.Parallel()

	got := Calculate(Inputs{
		Balance:      10000,
		RiskFraction: 0.01,
		EntryPrice:   150.00,
		StopPrice:    149.50,
		Instrument:   "USD_JPY",
	})

	assert.InDelta(t, 50.0, got.StopPips, 1e-9)
	assert.InDelta(t, 100.0, got.RiskBudget, 1e-9)
	assert.InDelta(t, 200.0, got.Units, 1e-9)
}

func TestCalculateZeroStopDistance(t *testing.T) {
	t.Parallel()

	got := Calculate(Inputs{
		Balance:      1000,
		RiskFraction: 0.01,
		EntryPrice:   1.1000,
		StopPrice:    1.1000,
		Instrument:   "EUR_USD",
	})

	assert.Zero(t, got.Units, "degenerate stop must size to zero, not fault")
	assert.Zero(t, got.StopPips)
	assert.InDelta(t, 10.0, got.RiskBudget, 1e-9)
}

func TestCalculateStopAboveEntry(t *testing.T) {
	t.Parallel()

	// Sell setup: stop above entry, distance is absolute.
	got := Calculate(Inputs{
		Balance:      2000,
		RiskFraction: 0.005,
		EntryPrice:   1.0000,
		StopPrice:    1.0100,
		Instrument:   "EUR_USD",
	})

	assert.InDelta(t, 100.0, got.StopPips, 1e-9)
	assert.InDelta(t, 1000.0, got.Units, 1e-9)
}
