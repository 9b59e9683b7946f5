package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/backtest"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/sim"
	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/strategies"
)

// Config is the complete run configuration: which strategy to run,
// simulation parameters, the backtest dataset and export location, the
// sweep grid, and live-mode polling settings.
type Config struct {
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Sim      sim.Config     `json:"sim" yaml:"sim"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Sweep    backtest.Grid  `json:"sweep" yaml:"sweep"`
	Live     LiveConfig     `json:"live" yaml:"live"`
}

// StrategyConfig selects and parameterizes the signal generator.
type StrategyConfig struct {
	Name     string                    `json:"name" yaml:"name"`
	EMACross strategies.EMACrossConfig `json:"ema-cross" yaml:"ema-cross"`
}

// BacktestConfig points at the dataset and the export location.
type BacktestConfig struct {
	DataFile  string `json:"data_file" yaml:"data_file"`
	Tail      int    `json:"tail" yaml:"tail"` // 0 = whole file
	ExportDir string `json:"export_dir" yaml:"export_dir"`
}

// LiveConfig controls the polling driver.
type LiveConfig struct {
	Interval    string `json:"interval" yaml:"interval"` // e.g. "5m"
	Granularity string `json:"granularity" yaml:"granularity"`
	CandleCount int    `json:"candle_count" yaml:"candle_count"`
}

// PollInterval parses the live interval string.
func (l LiveConfig) PollInterval() (time.Duration, error) {
	if l.Interval == "" {
		return 5 * time.Minute, nil
	}
	return time.ParseDuration(l.Interval)
}

// Generator builds the configured signal generator.
func (c *Config) Generator() (strategies.Generator, error) {
	switch strings.ToLower(strings.TrimSpace(c.Strategy.Name)) {
	case "ema-cross", "emacross", "":
		return strategies.NewEMACross(c.Strategy.EMACross), nil
	default:
		return strategies.ByName(c.Strategy.Name)
	}
}

// Load reads a config file, YAML first with a JSON fallback, then
// validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config, YAML for .yaml/.yml paths and indented
// JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if c.Sim.Instrument == "" {
		return fmt.Errorf("sim.instrument is required")
	}
	if _, ok := market.Instruments[c.Sim.Instrument]; !ok {
		// Unknown pairs still work through the JPY-suffix fallback;
		// only a malformed name is an error.
		if !strings.Contains(c.Sim.Instrument, "_") {
			return fmt.Errorf("unknown instrument: %s", c.Sim.Instrument)
		}
	}
	if c.Sim.StartingBalance <= 0 {
		return fmt.Errorf("sim.starting_balance must be positive")
	}
	if c.Sim.RiskFraction <= 0 || c.Sim.RiskFraction > 1 {
		return fmt.Errorf("sim.risk_fraction must be between 0 and 1")
	}
	if c.Sim.WarmupBars < 0 {
		return fmt.Errorf("sim.warmup_bars must not be negative")
	}
	if c.Sim.TrailingEnabled {
		if c.Sim.TrailStart <= 0 || c.Sim.TrailStart > 1 {
			return fmt.Errorf("sim.trail_start must be between 0 and 1")
		}
		if c.Sim.TrailDistance <= 0 || c.Sim.TrailDistance > 1 {
			return fmt.Errorf("sim.trail_distance must be between 0 and 1")
		}
	}
	for _, r := range c.Sweep.RiskFractions {
		if r <= 0 || r > 1 {
			return fmt.Errorf("sweep.risk_fractions entries must be between 0 and 1")
		}
	}
	if _, err := c.Generator(); err != nil {
		return err
	}
	if _, err := c.Live.PollInterval(); err != nil {
		return fmt.Errorf("live.interval: %w", err)
	}
	if c.Live.CandleCount < 0 || c.Live.CandleCount > 5000 {
		return fmt.Errorf("live.candle_count must be in 0..5000")
	}
	return nil
}

// Default returns a runnable configuration.
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Name:     "ema-cross",
			EMACross: strategies.EMACrossDefaults(),
		},
		Sim: sim.DefaultConfig(),
		Backtest: BacktestConfig{
			DataFile:  "./data/eurusd_m5.csv",
			ExportDir: "./results",
		},
		Sweep: backtest.DefaultGrid(),
		Live: LiveConfig{
			Interval:    "5m",
			Granularity: "M5",
			CandleCount: 500,
		},
	}
}
