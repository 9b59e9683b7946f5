package cmd

import (
	"github.com/spf13/cobra"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/config"
)

var rootCmd = &cobra.Command{
	Use:   "fxbt",
	Short: "Rule-based FX strategy backtester and parameter sweeper",
	Long: `fxbt replays historical candle data through rule-based trading
strategies and reports the outcome.

It provides tools for:
  - Backtesting a strategy over a candle CSV dataset
  - Sweeping parameter grids in parallel and comparing runs
  - Risk-based position sizing and trailing-stop management
  - Exporting trades, metrics and equity curves as CSV
  - Running the same strategy live against an OANDA account`,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
}

// loadConfig resolves the effective configuration: the file when one
// was given, defaults otherwise.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}
