package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradecycle",
	Short: "One-shot moving-average trading pipeline with hard risk limits",
	Long: `Tradecycle runs one deterministic decision cycle per invocation:

  - fetch daily OHLCV history for a symbol
  - compute a BUY/SELL/HOLD signal from an SMA crossover
  - gate it through hard portfolio risk limits
  - size and submit an order to the brokerage
  - journal exactly one decision record

Daily risk counters persist across invocations within the same trading
day, so an external scheduler can invoke it repeatedly.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}
