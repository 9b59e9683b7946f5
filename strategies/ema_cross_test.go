package strategies

import (
	"testing"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig shrinks every period so a handful of bars can exercise the
// full signal path.
func testConfig() EMACrossConfig {
	return EMACrossConfig{
		FastPeriod:  2,
		SlowPeriod:  5,
		TrendPeriod: 8,
		RSIPeriod:   3,
		ATRPeriod:   3,
		StopATR:     1.5,
		TargetATR:   3.0,
		RSIBuyMax:   90,
		RSISellMin:  10,
	}
}

func window(closes ...float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, v := range closes {
		out[i] = market.Candle{Open: v, High: v, Low: v, Close: v}
	}
	return out
}

// Seven falling bars then a sharp two-bar recovery: the fast EMA crosses
// above the slow EMA exactly between the two bars before the current one.
func buySetup() []market.Candle {
	return window(1.30, 1.28, 1.26, 1.24, 1.22, 1.20, 1.19, 1.26, 1.32)
}

func sellSetup() []market.Candle {
	return window(1.20, 1.22, 1.24, 1.26, 1.28, 1.30, 1.31, 1.24, 1.18)
}

func TestEMACrossInsufficientData(t *testing.T) {
	t.Parallel()

	s := NewEMACross(testConfig())
	p := s.Evaluate(window(1.1, 1.2, 1.3), "EUR_USD")

	assert.Equal(t, Hold, p.Action)
	assert.Equal(t, ReasonInsufficientData, p.Reason)
}

func TestEMACrossInvalidBar(t *testing.T) {
	t.Parallel()

	s := NewEMACross(testConfig())
	w := buySetup()
	w[len(w)-1].Low = 0 // malformed bar, missing field

	p := s.Evaluate(w, "EUR_USD")
	assert.Equal(t, Hold, p.Action)
	assert.Equal(t, ReasonInvalidData, p.Reason)
}

func TestEMACrossBuySignal(t *testing.T) {
	t.Parallel()

	s := NewEMACross(testConfig())
	p := s.Evaluate(buySetup(), "EUR_USD")

	require.Equal(t, Buy, p.Action)
	assert.Equal(t, ReasonCrossoverBuy, p.Reason)
	assert.Equal(t, "EUR_USD", p.Instrument)

	// Stop below the confirm close, target above, both 5-decimal prices.
	confirmClose := 1.26
	assert.Less(t, p.StopLoss, confirmClose)
	assert.Greater(t, p.TakeProfit, confirmClose)
	assert.Positive(t, p.ATR)
	assert.Greater(t, p.EMAFast, p.EMASlow)
}

func TestEMACrossSellSignal(t *testing.T) {
	t.Parallel()

	s := NewEMACross(testConfig())
	p := s.Evaluate(sellSetup(), "EUR_USD")

	require.Equal(t, Sell, p.Action)
	assert.Equal(t, ReasonCrossoverSell, p.Reason)

	confirmClose := 1.24
	assert.Greater(t, p.StopLoss, confirmClose)
	assert.Less(t, p.TakeProfit, confirmClose)
	assert.Less(t, p.EMAFast, p.EMASlow)
}

func TestEMACrossRSIFilterBlocksStretchedEntry(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RSIBuyMax = 70 // the recovery bars push RSI above 70
	s := NewEMACross(cfg)

	p := s.Evaluate(buySetup(), "EUR_USD")
	assert.Equal(t, Hold, p.Action)
	assert.Equal(t, ReasonNoSignal, p.Reason)
	assert.Greater(t, p.RSI, 70.0)
}

func TestEMACrossDeterministicAndPure(t *testing.T) {
	t.Parallel()

	s := NewEMACross(testConfig())
	w := buySetup()
	before := make([]market.Candle, len(w))
	copy(before, w)

	p1 := s.Evaluate(w, "EUR_USD")
	p2 := s.Evaluate(w, "EUR_USD")

	assert.Equal(t, p1, p2, "identical input must produce identical proposals")
	assert.Equal(t, before, w, "evaluate must not mutate its window")
}

func TestEMACrossNoSignalOnQuietMarket(t *testing.T) {
	t.Parallel()

	s := NewEMACross(testConfig())
	p := s.Evaluate(window(1.2, 1.2, 1.2, 1.2, 1.2, 1.2, 1.2, 1.2, 1.2), "EUR_USD")

	assert.Equal(t, Hold, p.Action)
	assert.Equal(t, ReasonNoSignal, p.Reason)
}

type panicky struct{}

func (panicky) Name() string { return "panicky" }
func (panicky) MinBars() int { return 0 }
func (panicky) Evaluate(window []market.Candle, instrument string) Proposal {
	panic("indicator blew up")
}

func TestGuardRecoversEvaluationFault(t *testing.T) {
	t.Parallel()

	g := Guard{Gen: panicky{}}
	p := g.Evaluate(window(1.1), "EUR_USD")

	assert.Equal(t, Hold, p.Action)
	assert.Equal(t, ReasonError, p.Reason)
	assert.Contains(t, p.Err, "indicator blew up")
	assert.Equal(t, "EUR_USD", p.Instrument)
}

func TestByName(t *testing.T) {
	t.Parallel()

	s, err := ByName("ema-cross")
	require.NoError(t, err)
	assert.Equal(t, "ema-cross", s.Name())
	assert.Equal(t, 201, s.MinBars())

	_, err = ByName("martingale")
	assert.Error(t, err)

	n, err := ByName("noop")
	require.NoError(t, err)
	assert.Equal(t, Hold, n.Evaluate(nil, "EUR_USD").Action)
}
