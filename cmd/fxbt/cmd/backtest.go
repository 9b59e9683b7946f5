package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/backtest"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a candle dataset through the configured strategy",
	Long: `Backtest replays a historical candle CSV through the configured
strategy and prints a summary report.

Example:
  fxbt backtest --data data/eurusd_m5.csv --export results`,
	RunE: runBacktest,
}

var (
	btDataFile  string
	btTail      int
	btExportDir string
	btNoExport  bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataFile, "data", "d", "", "candle CSV (date,time,open,high,low,close[,volume])")
	backtestCmd.Flags().IntVar(&btTail, "tail", 0, "use only the last N bars (0 = whole file)")
	backtestCmd.Flags().StringVarP(&btExportDir, "export", "e", "", "directory for trades/metrics/equity CSV export")
	backtestCmd.Flags().BoolVar(&btNoExport, "no-export", false, "skip the CSV export")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btDataFile != "" {
		cfg.Backtest.DataFile = btDataFile
	}
	if btTail > 0 {
		cfg.Backtest.Tail = btTail
	}
	if btExportDir != "" {
		cfg.Backtest.ExportDir = btExportDir
	}
	if cfg.Backtest.DataFile == "" {
		return fmt.Errorf("no candle dataset (set --data or backtest.data_file)")
	}

	candles, err := backtest.LoadCandles(cfg.Backtest.DataFile, cfg.Backtest.Tail)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	gen, err := cfg.Generator()
	if err != nil {
		return err
	}

	runner := &backtest.Runner{Config: cfg.Sim, Strategy: gen}
	res, err := runner.Run(candles)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	backtest.PrintRunSummary(os.Stdout, res)

	if !btNoExport && cfg.Backtest.ExportDir != "" {
		if err := backtest.ExportRun(cfg.Backtest.ExportDir, res); err != nil {
			return err
		}
		fmt.Printf("Exported run to %s/%s\n", cfg.Backtest.ExportDir, res.RunID)
	}
	return nil
}
