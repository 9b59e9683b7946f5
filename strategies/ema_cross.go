package strategies

import (
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/indicators"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// EMACross trades a fast/slow EMA crossover filtered by a long trend EMA
// and an RSI bound, with ATR-derived stop and target levels:
//   - crossover detected on the two fully closed bars before the current one
//   - longs only above the trend EMA, shorts only below it
//   - RSI must not already be stretched in the trade direction
//   - stop = confirm close -/+ StopATR x ATR, target = confirm close +/- TargetATR x ATR
type EMACross struct {
	EMACrossConfig
}

type EMACrossConfig struct {
	FastPeriod  int     `json:"fast-period" yaml:"fast-period"`
	SlowPeriod  int     `json:"slow-period" yaml:"slow-period"`
	TrendPeriod int     `json:"trend-period" yaml:"trend-period"`
	RSIPeriod   int     `json:"rsi-period" yaml:"rsi-period"`
	ATRPeriod   int     `json:"atr-period" yaml:"atr-period"`
	StopATR     float64 `json:"stop-atr" yaml:"stop-atr"`
	TargetATR   float64 `json:"target-atr" yaml:"target-atr"`
	RSIBuyMax   float64 `json:"rsi-buy-max" yaml:"rsi-buy-max"`
	RSISellMin  float64 `json:"rsi-sell-min" yaml:"rsi-sell-min"`
}

func EMACrossDefaults() EMACrossConfig {
	return EMACrossConfig{
		FastPeriod:  9,
		SlowPeriod:  25,
		TrendPeriod: 200,
		RSIPeriod:   14,
		ATRPeriod:   14,
		StopATR:     1.5,
		TargetATR:   3.0,
		RSIBuyMax:   70,
		RSISellMin:  30,
	}
}

func NewEMACross(cfg EMACrossConfig) *EMACross {
	if cfg.FastPeriod <= 0 {
		cfg.FastPeriod = 9
	}
	if cfg.SlowPeriod <= 0 {
		cfg.SlowPeriod = 25
	}
	if cfg.TrendPeriod <= 0 {
		cfg.TrendPeriod = 200
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = 14
	}
	if cfg.StopATR <= 0 {
		cfg.StopATR = 1.5
	}
	if cfg.TargetATR <= 0 {
		cfg.TargetATR = 3.0
	}
	if cfg.RSIBuyMax <= 0 {
		cfg.RSIBuyMax = 70
	}
	if cfg.RSISellMin <= 0 {
		cfg.RSISellMin = 30
	}
	return &EMACross{EMACrossConfig: cfg}
}

func (s *EMACross) Name() string { return "ema-cross" }

// MinBars: the trend EMA needs its full period plus one confirm bar.
func (s *EMACross) MinBars() int { return s.TrendPeriod + 1 }

func (s *EMACross) Evaluate(window []market.Candle, instrument string) Proposal {
	hold := func(r Reason) Proposal {
		return Proposal{Instrument: instrument, Action: Hold, Reason: r}
	}

	if len(window) < s.MinBars() {
		return hold(ReasonInsufficientData)
	}
	for _, c := range window[len(window)-3:] {
		if !c.Valid() {
			return hold(ReasonInvalidData)
		}
	}

	fast, err := indicators.EMASeries(window, s.FastPeriod)
	if err != nil {
		return hold(ReasonInvalidData)
	}
	slow, err := indicators.EMASeries(window, s.SlowPeriod)
	if err != nil {
		return hold(ReasonInvalidData)
	}
	trend, err := indicators.EMASeries(window, s.TrendPeriod)
	if err != nil {
		return hold(ReasonInvalidData)
	}
	atr, err := indicators.ATR(window, s.ATRPeriod)
	if err != nil {
		return hold(ReasonInvalidData)
	}
	rsi, err := indicators.RSI(window, s.RSIPeriod)
	if err != nil {
		return hold(ReasonInvalidData)
	}

	// Index -3/-2: the crossover pair. Index -2 is the confirm bar; the
	// current bar (-1) is still the entry bar from the caller's view.
	n := len(window)
	prior, confirm := n-3, n-2
	confirmClose := window[confirm].Close

	diag := Diagnostics{
		RSI:      rsi,
		ATR:      atr,
		EMAFast:  fast[confirm],
		EMASlow:  slow[confirm],
		EMATrend: trend[confirm],
	}

	buyCross := fast[prior] < slow[prior] && fast[confirm] > slow[confirm]
	sellCross := fast[prior] > slow[prior] && fast[confirm] < slow[confirm]

	if buyCross && confirmClose > trend[confirm] && rsi <= s.RSIBuyMax {
		return Proposal{
			Instrument:  instrument,
			Action:      Buy,
			StopLoss:    market.RoundPrice(confirmClose - s.StopATR*atr),
			TakeProfit:  market.RoundPrice(confirmClose + s.TargetATR*atr),
			Reason:      ReasonCrossoverBuy,
			Diagnostics: diag,
		}
	}

	if sellCross && confirmClose < trend[confirm] && rsi >= s.RSISellMin {
		return Proposal{
			Instrument:  instrument,
			Action:      Sell,
			StopLoss:    market.RoundPrice(confirmClose + s.StopATR*atr),
			TakeProfit:  market.RoundPrice(confirmClose - s.TargetATR*atr),
			Reason:      ReasonCrossoverSell,
			Diagnostics: diag,
		}
	}

	p := hold(ReasonNoSignal)
	p.Diagnostics = diag
	return p
}
