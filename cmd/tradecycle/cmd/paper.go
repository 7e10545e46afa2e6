package cmd

import (
	"github.com/spf13/cobra"
)

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Run one cycle against CSV data and an in-memory broker",
	Long: `Run a deterministic offline cycle: bars come from a CSV file and orders
go to a simulated account. Useful for validating a strategy and risk
configuration before pointing at a real brokerage.

Example:
  tradecycle paper --config tradecycle.yaml --data bars.csv --equity 10000`,
	RunE: runPaper,
}

var (
	paperConfigPath string
	paperDataPath   string
	paperEquity     float64
)

func init() {
	rootCmd.AddCommand(paperCmd)
	paperCmd.Flags().StringVarP(&paperConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	paperCmd.Flags().StringVar(&paperDataPath, "data", "", "path to OHLCV CSV file (required)")
	paperCmd.Flags().Float64Var(&paperEquity, "equity", 100000, "starting paper equity")
	paperCmd.MarkFlagRequired("data")
}

func runPaper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(paperConfigPath)
	if err != nil {
		return err
	}

	// Force the offline collaborators regardless of configured broker.
	cfg.Data.Provider = "csv"
	cfg.Data.CSVPath = paperDataPath
	cfg.Broker.APIKey = ""
	cfg.Broker.APISecret = ""
	cfg.Broker.PaperEquity = paperEquity

	return runCycle(cmd.Context(), cfg)
}
