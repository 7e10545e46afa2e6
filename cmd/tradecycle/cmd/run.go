package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradecycle/broker"
	"github.com/rustyeddy/tradecycle/broker/alpaca"
	"github.com/rustyeddy/tradecycle/broker/paper"
	"github.com/rustyeddy/tradecycle/config"
	"github.com/rustyeddy/tradecycle/data"
	"github.com/rustyeddy/tradecycle/execution"
	"github.com/rustyeddy/tradecycle/journal"
	"github.com/rustyeddy/tradecycle/logx"
	"github.com/rustyeddy/tradecycle/metrics"
	"github.com/rustyeddy/tradecycle/pipeline"
	"github.com/rustyeddy/tradecycle/risk"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one decision cycle",
	Long: `Run a single fetch-signal-risk-plan-submit cycle using the configured
data provider and broker.

The cycle always completes: expected failures (missing data, unreadable
account, broker rejection) terminate with a journaled error record, not
a crash.

Example:
  tradecycle run --config tradecycle.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON); defaults to env-only config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}
	return runCycle(cmd.Context(), cfg)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.FromEnv()
}

// runCycle wires the collaborators from config and executes one cycle.
func runCycle(ctx context.Context, cfg *config.Config) error {
	log := logx.New(cfg.App.LogLevel)
	if srv := metrics.Serve(cfg.App.MetricsAddr); srv != nil {
		defer srv.Close()
	}

	var b broker.Broker
	var provider data.Provider

	if cfg.Broker.APIKey != "" && cfg.Broker.APISecret != "" {
		client := alpaca.NewClient(cfg.Broker.APIKey, cfg.Broker.APISecret, cfg.Broker.Paper)
		b = client
		provider = data.NewAlpacaProvider(client)
	} else {
		// No credentials: paper account so offline runs still work.
		b = paper.New(cfg.Broker.PaperEquity)
	}
	if cfg.Data.Provider == "csv" {
		provider = data.NewCSVProvider(cfg.Data.CSVPath)
	}
	if provider == nil {
		return fmt.Errorf("alpaca data provider requires ALPACA_API_KEY and ALPACA_SECRET_KEY")
	}

	j, err := newJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	store := risk.NewDayStore(cfg.App.StatePath)
	state := store.Load(time.Now().UTC())

	p := pipeline.New(pipeline.Params{
		Symbol:        cfg.Strategy.Symbol,
		HistoryPeriod: cfg.Strategy.HistoryPeriod,
		ShortWindow:   cfg.Strategy.ShortWindow,
		LongWindow:    cfg.Strategy.LongWindow,
		Policy: risk.Policy{
			PositionLimit:   cfg.Risk.PositionLimit,
			MaxTradesPerDay: cfg.Risk.MaxTradesPerDay,
			MaxDailyLoss:    cfg.Risk.MaxDailyLoss,
		},
		Sizing: execution.Sizing{
			RiskFraction:  cfg.Sizing.RiskFraction,
			StopLossPct:   cfg.Sizing.StopLossPct,
			PositionLimit: cfg.Risk.PositionLimit,
		},
	}, provider, b, j, log)

	rec, runErr := p.Run(ctx, state)

	if err := store.Save(state); err != nil {
		log.Error().Str("error", err.Error()).Msg("failed to persist day state")
	}

	fmt.Printf("decision %s: %s %s", rec.ID, rec.Symbol, rec.Outcome)
	if rec.Quantity > 0 {
		fmt.Printf(" %s %d", rec.Side, rec.Quantity)
	}
	fmt.Println()

	// Expected failures (missing data, unreadable account) are a
	// completed cycle with an error record; anything outside the known
	// taxonomy fails the process.
	if runErr != nil && !pipeline.IsExpectedError(runErr) {
		return runErr
	}
	return nil
}

func newJournal(jc config.JournalConfig) (journal.Journal, error) {
	if jc.Type == "csv" {
		return journal.NewCSV(jc.Path)
	}
	return journal.NewSQLite(jc.Path)
}
