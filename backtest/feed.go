package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// LoadCandles reads MetaTrader-style bar CSV rows:
//
//	date,time,open,high,low,close[,volume]
//
// where date is "2006.01.02" and time is "15:04". A header row is
// allowed; empty rows are skipped. When tail > 0 only the last tail
// bars are returned. Timestamps must be strictly increasing.
func LoadCandles(path string, tail int) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var candles []market.Candle
	sawFirst := false

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row.
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		c, ok, err := parseBarRow(row)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		candles = append(candles, c)
	}

	if tail > 0 && len(candles) > tail {
		candles = candles[len(candles)-tail:]
	}
	if err := market.CheckOrdered(candles); err != nil {
		return nil, fmt.Errorf("candle feed %s: %w", path, err)
	}
	return candles, nil
}

func parseBarRow(row []string) (market.Candle, bool, error) {
	// Need at least: date,time,open,high,low,close
	if len(row) < 6 {
		return market.Candle{}, false, nil
	}

	ds := strings.TrimSpace(row[0])
	ts := strings.TrimSpace(row[1])
	if ds == "" || ts == "" {
		return market.Candle{}, false, nil
	}
	t, err := time.Parse("2006.01.02 15:04", ds+" "+ts)
	if err != nil {
		return market.Candle{}, false, fmt.Errorf("bad timestamp %q %q: %w", ds, ts, err)
	}

	vals := make([]float64, 4)
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad %s %q: %w", name, row[2+i], err)
		}
		vals[i] = v
	}

	c := market.Candle{
		Time:  t,
		Open:  vals[0],
		High:  vals[1],
		Low:   vals[2],
		Close: vals[3],
	}
	if len(row) > 6 {
		if vol, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64); err == nil {
			c.Volume = vol
		}
	}
	return c, true, nil
}
