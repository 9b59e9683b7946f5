package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/config"
)

var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Write a default config file",
	Long: `Config writes the default configuration to the given path
(YAML for .yaml/.yml, JSON otherwise) as a starting point for edits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "fxbt.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.Default().SaveToFile(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
