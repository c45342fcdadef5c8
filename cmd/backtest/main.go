// Command backtest runs the event-driven backtesting engine from the
// command line: load a config file, construct an exchange registry and
// event source from it, drive a single backtest, and print the report.
package main

import "riskwave/cmd/backtest/commands"

func main() {
	commands.Execute()
}
