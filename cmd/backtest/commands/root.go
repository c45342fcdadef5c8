// Package commands holds the cobra command tree for the backtest CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

// NewRootCmd builds the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Event-driven limit-order-book backtesting engine",
		Long:  `Runs a chronological event source through the six-stage backtest pipeline (data, signal, risk, entry, position, exit) and reports the result.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")

	cmd.AddCommand(NewRunCmd())

	return cmd
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
