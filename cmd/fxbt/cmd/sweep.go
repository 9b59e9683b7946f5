package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/backtest"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the whole parameter grid and compare the results",
	Long: `Sweep expands the configured parameter grid (risk fractions,
trailing variants) and replays the dataset once per combination, in
parallel. Each run exports its own result directory and the summary
table compares them.

Example:
  fxbt sweep --data data/eurusd_m5.csv --workers 4`,
	RunE: runSweep,
}

var (
	swDataFile  string
	swTail      int
	swExportDir string
	swWorkers   int
	swNoExport  bool
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&swDataFile, "data", "d", "", "candle CSV (date,time,open,high,low,close[,volume])")
	sweepCmd.Flags().IntVar(&swTail, "tail", 0, "use only the last N bars (0 = whole file)")
	sweepCmd.Flags().StringVarP(&swExportDir, "export", "e", "", "directory for per-run CSV export")
	sweepCmd.Flags().IntVarP(&swWorkers, "workers", "w", 0, "parallel runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().BoolVar(&swNoExport, "no-export", false, "skip the CSV export")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if swDataFile != "" {
		cfg.Backtest.DataFile = swDataFile
	}
	if swTail > 0 {
		cfg.Backtest.Tail = swTail
	}
	if swExportDir != "" {
		cfg.Backtest.ExportDir = swExportDir
	}
	if cfg.Backtest.DataFile == "" {
		return fmt.Errorf("no candle dataset (set --data or backtest.data_file)")
	}

	candles, err := backtest.LoadCandles(cfg.Backtest.DataFile, cfg.Backtest.Tail)
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	sweep := &backtest.Sweep{
		Base: cfg.Sim,
		Grid: cfg.Sweep,
		NewStrategy: func() strategies.Generator {
			gen, err := cfg.Generator()
			if err != nil {
				// Validated at load time; a failure here is a bug.
				panic(err)
			}
			return gen
		},
		Workers: swWorkers,
	}

	results, failures, err := sweep.Run(candles)
	if err != nil {
		return err
	}

	backtest.PrintSweepTable(os.Stdout, results)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.RunID, f.Err)
	}

	if !swNoExport && cfg.Backtest.ExportDir != "" {
		for _, res := range results {
			if err := backtest.ExportRun(cfg.Backtest.ExportDir, res); err != nil {
				return err
			}
		}
		fmt.Printf("Exported %d runs to %s\n", len(results), cfg.Backtest.ExportDir)
	}
	return nil
}
