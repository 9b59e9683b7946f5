package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/broker/oanda"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/live"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run the configured strategy against an OANDA account",
	Long: `Live polls OANDA on the configured interval and places market
orders when the strategy signals. Credentials come from OANDA_TOKEN,
OANDA_ACCOUNT_ID and OANDA_ENV (a .env file is read when present).

Example:
  OANDA_ENV=practice fxbt live -c config.yaml`,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	oandaCfg, err := oanda.FromEnv()
	if err != nil {
		return err
	}
	client, err := oanda.NewClient(oandaCfg)
	if err != nil {
		return err
	}

	gen, err := cfg.Generator()
	if err != nil {
		return err
	}
	interval, err := cfg.Live.PollInterval()
	if err != nil {
		return err
	}

	trader := live.NewTrader(client, gen, cfg.Sim.Instrument)
	trader.RiskFraction = cfg.Sim.RiskFraction
	trader.Granularity = cfg.Live.Granularity
	if cfg.Live.CandleCount > 0 {
		trader.CandleCount = cfg.Live.CandleCount
	}
	trader.Interval = interval

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := trader.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
