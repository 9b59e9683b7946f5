package backtest

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ExportRun writes a run's flat-file artifacts under dir/<RunID>/:
// trades.csv (one row per closed trade), metrics.csv (name,value) and
// equity.csv (one row per closed trade, balance and drawdown). Output
// depends only on the Result, so the same run exports byte-identical
// files every time.
func ExportRun(dir string, res Result) error {
	runDir := filepath.Join(dir, res.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	if err := exportTrades(filepath.Join(runDir, "trades.csv"), res); err != nil {
		return fmt.Errorf("export trades: %w", err)
	}
	if err := exportMetrics(filepath.Join(runDir, "metrics.csv"), res); err != nil {
		return fmt.Errorf("export metrics: %w", err)
	}
	if err := exportEquity(filepath.Join(runDir, "equity.csv"), res); err != nil {
		return fmt.Errorf("export equity: %w", err)
	}
	return nil
}

func exportTrades(path string, res Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"trade_id", "instrument", "side", "units",
		"entry_price", "original_stop", "original_take_profit",
		"exit_price", "stop_at_close",
		"open_time", "close_time", "reason",
		"break_even_reached", "trailing_armed",
		"profit", "profit_pips", "profit_usd", "win",
	}); err != nil {
		return err
	}

	for _, t := range res.Trades {
		w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Instrument,
			t.Side.String(),
			fnum(t.Units),
			fnum(t.EntryPrice),
			fnum(t.OriginalStop),
			fnum(t.OriginalTarget),
			fnum(t.ClosePrice),
			fnum(t.StopLoss),
			t.OpenTime.Format(time.RFC3339),
			t.CloseTime.Format(time.RFC3339),
			string(t.CloseReason),
			strconv.FormatBool(t.BreakEvenReached),
			strconv.FormatBool(t.TrailingArmed),
			fnum(t.Profit),
			fnum(t.ProfitPips),
			fnum(t.ProfitUSD),
			strconv.FormatBool(t.Win),
		})
	}

	w.Flush()
	return w.Error()
}

func exportMetrics(path string, res Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m := res.Metrics
	rows := [][2]string{
		{"run_id", res.RunID},
		{"strategy", res.Strategy},
		{"instrument", res.Config.Instrument},
		{"starting_balance", fnum(res.Config.StartingBalance)},
		{"final_balance", fnum(res.Account.Balance)},
		{"total_trades", strconv.Itoa(m.TotalTrades)},
		{"wins", strconv.Itoa(m.Wins)},
		{"losses", strconv.Itoa(m.Losses)},
		{"breakeven", strconv.Itoa(m.Breakeven)},
		{"win_rate_pct", fnum(m.WinRate)},
		{"avg_win", fnum(m.AvgWin)},
		{"avg_loss", fnum(m.AvgLoss)},
		{"profit_factor", fnum(m.ProfitFactor)},
		{"total_profit_usd", fnum(m.TotalProfitUSD)},
		{"total_profit_pips", fnum(m.TotalProfitPips)},
		{"return_pct", fnum(m.ReturnPct)},
		{"break_even_reached", strconv.Itoa(m.BreakEvenReached)},
		{"break_even_reached_pct", fnum(m.BreakEvenReachedPct)},
		{"trailing_armed", strconv.Itoa(m.TrailingArmed)},
		{"trailing_armed_pct", fnum(m.TrailingArmedPct)},
		{"trailing_wins", strconv.Itoa(m.TrailingWins)},
		{"trailing_losses", strconv.Itoa(m.TrailingLosses)},
		{"avg_target_capture_pct", fnum(m.AvgTargetCapturePct)},
		{"avg_reward_to_risk", fnum(m.AvgRewardToRisk)},
		{"max_drawdown", fnum(m.MaxDrawdown)},
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"name", "value"}); err != nil {
		return err
	}
	for _, row := range rows {
		w.Write(row[:])
	}

	w.Flush()
	return w.Error()
}

func exportEquity(path string, res Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "trade_id", "balance", "drawdown", "cum_pips"}); err != nil {
		return err
	}
	for _, p := range res.Equity {
		w.Write([]string{
			p.Time.Format(time.RFC3339),
			strconv.FormatInt(p.TradeID, 10),
			fnum(p.Balance),
			fnum(p.Drawdown),
			fnum(p.CumulativePips),
		})
	}

	w.Flush()
	return w.Error()
}

func fnum(x float64) string {
	if math.IsInf(x, 1) {
		return "inf"
	}
	return strconv.FormatFloat(x, 'f', 6, 64)
}
