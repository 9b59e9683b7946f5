// market/instruments.go
package market

import "strings"

type InstrumentMeta struct {
	Name                string
	BaseCurrency        string
	QuoteCurrency       string
	PipSize             float64
	PipMultiplier       float64
	TradeUnitsPrecision int
	MinimumTradeSize    float64
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:                "EUR_USD",
		BaseCurrency:        "EUR",
		QuoteCurrency:       "USD",
		PipSize:             0.0001,
		PipMultiplier:       10000,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
	},
	"GBP_USD": {
		Name:                "GBP_USD",
		BaseCurrency:        "GBP",
		QuoteCurrency:       "USD",
		PipSize:             0.0001,
		PipMultiplier:       10000,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
	},
	"USD_JPY": {
		Name:                "USD_JPY",
		BaseCurrency:        "USD",
		QuoteCurrency:       "JPY",
		PipSize:             0.01,
		PipMultiplier:       100,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
	},
}

// Meta returns the metadata for an instrument. Unknown instruments fall
// back to the quote-currency convention: a JPY quote (2-decimal pricing)
// uses 0.01 pips with a 100x multiplier, everything else 0.0001 / 10000x.
func Meta(instrument string) InstrumentMeta {
	if m, ok := Instruments[instrument]; ok {
		return m
	}

	m := InstrumentMeta{
		Name:                instrument,
		PipSize:             0.0001,
		PipMultiplier:       10000,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
	}
	if i := strings.LastIndex(instrument, "_"); i >= 0 && i+1 < len(instrument) {
		m.BaseCurrency = instrument[:i]
		m.QuoteCurrency = instrument[i+1:]
	}
	if strings.HasSuffix(instrument, "JPY") {
		m.PipSize = 0.01
		m.PipMultiplier = 100
	}
	return m
}
