package main

import (
	"os"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/cmd/fxbt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
