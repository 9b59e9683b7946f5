package backtest

import (
	"fmt"
	"io"
	"math"
	"time"
)

// PrintRunSummary renders one run as a plain-text report.
func PrintRunSummary(w io.Writer, res Result) {
	m := res.Metrics

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", res.RunID)
	fmt.Fprintf(w, "Strategy:      %s\n", res.Strategy)
	fmt.Fprintf(w, "Instrument:    %s\n", res.Config.Instrument)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", res.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", res.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run Configuration")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Risk per Trade: %.2f%%\n", res.Config.RiskFraction*100)
	if res.Config.TrailingEnabled {
		fmt.Fprintf(w, "Trailing:      on (start %.2f, distance %.2f)\n",
			res.Config.TrailStart, res.Config.TrailDistance)
	} else {
		fmt.Fprintln(w, "Trailing:      off")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", m.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", m.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", m.Losses)
	fmt.Fprintf(w, "Breakeven:     %d\n", m.Breakeven)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", m.WinRate)
	fmt.Fprintf(w, "Break-even:    %d (%.2f%%)\n", m.BreakEvenReached, m.BreakEvenReachedPct)
	if m.TrailingArmed > 0 {
		fmt.Fprintf(w, "Trail Armed:   %d (%.2f%%), %dW/%dL\n",
			m.TrailingArmed, m.TrailingArmedPct, m.TrailingWins, m.TrailingLosses)
		fmt.Fprintf(w, "Target Capture: %.1f%%\n", m.AvgTargetCapturePct)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", res.Config.StartingBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", res.Account.Balance)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", m.TotalProfitUSD)
	fmt.Fprintf(w, "Net Pips:      %.1f\n", m.TotalProfitPips)
	fmt.Fprintf(w, "Return:        %.2f%%\n", m.ReturnPct)

	if m.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %s\n", pf(m.ProfitFactor))
	}
	if m.MaxDrawdown > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f\n", m.MaxDrawdown)
	}
	fmt.Fprintf(w, "Avg R:         %.2f\n", m.AvgRewardToRisk)

	fmt.Fprintln(w)
}

// PrintSweepTable renders a one-line-per-run comparison table, keeping
// the results in grid order.
func PrintSweepTable(w io.Writer, results []Result) {
	fmt.Fprintf(w, "%-42s %7s %8s %8s %10s %10s\n",
		"run", "trades", "win%", "pf", "net", "maxdd")
	fmt.Fprintf(w, "%-42s %7s %8s %8s %10s %10s\n",
		"---", "------", "----", "--", "---", "-----")

	for _, res := range results {
		m := res.Metrics
		fmt.Fprintf(w, "%-42s %7d %7.2f%% %8s %10.2f %10.2f\n",
			res.RunID, m.TotalTrades, m.WinRate, pf(m.ProfitFactor),
			m.TotalProfitUSD, m.MaxDrawdown)
	}
}

func pf(x float64) string {
	if math.IsInf(x, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", x)
}
