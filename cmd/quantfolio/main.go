package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "quantfolio",
	Short: "quantfolio - Monte Carlo portfolio optimizer",
	Long: `quantfolio searches the efficient frontier of an asset universe by
simulating random long-only portfolios and reporting the maximum-Sharpe
and minimum-volatility allocations.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
