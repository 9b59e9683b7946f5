package oanda

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// PracticeURL is OANDA's demo environment.
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is OANDA's real-money environment.
	LiveURL = "https://api-fxtrade.oanda.com"
)

// Config carries the credentials and environment selection for the
// OANDA REST API. Credentials come from the process environment, with
// an optional .env file loaded first.
type Config struct {
	Token       string
	AccountID   string
	Environment string // "practice" or "live"
}

// FromEnv loads OANDA_TOKEN, OANDA_ACCOUNT_ID and OANDA_ENV, reading a
// .env file beforehand when one exists in the working directory.
func FromEnv() (Config, error) {
	// Missing .env is fine; real environments export the vars directly.
	_ = godotenv.Load()

	cfg := Config{
		Token:       os.Getenv("OANDA_TOKEN"),
		AccountID:   os.Getenv("OANDA_ACCOUNT_ID"),
		Environment: os.Getenv("OANDA_ENV"),
	}
	if cfg.Environment == "" {
		cfg.Environment = "practice"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("oanda: OANDA_TOKEN is required")
	}
	if c.AccountID == "" {
		return fmt.Errorf("oanda: OANDA_ACCOUNT_ID is required")
	}
	if _, err := c.BaseURL(); err != nil {
		return err
	}
	return nil
}

// BaseURL maps the environment name to the API host.
func (c Config) BaseURL() (string, error) {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "practice", "demo", "":
		return PracticeURL, nil
	case "live":
		return LiveURL, nil
	default:
		return "", fmt.Errorf("oanda: unknown environment %q (want practice|live)", c.Environment)
	}
}
