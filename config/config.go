// Package config loads the runtime configuration from YAML or JSON,
// with environment-variable overrides layered on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config collects every configuration leaf for one symbol's pipeline.
type Config struct {
	App      AppConfig      `json:"app" yaml:"app"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Sizing   SizingConfig   `json:"sizing" yaml:"sizing"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AppConfig contains process-wide settings.
type AppConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level"`
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
	StatePath   string `json:"state_path" yaml:"state_path"`
}

// StrategyConfig contains the crossover parameters.
type StrategyConfig struct {
	Symbol        string `json:"symbol" yaml:"symbol"`
	HistoryPeriod string `json:"history_period" yaml:"history_period"`
	ShortWindow   int    `json:"short_window" yaml:"short_window"`
	LongWindow    int    `json:"long_window" yaml:"long_window"`
}

// RiskConfig contains the hard portfolio limits.
type RiskConfig struct {
	PositionLimit   int     `json:"position_limit" yaml:"position_limit"`
	MaxTradesPerDay int     `json:"max_trades_per_day" yaml:"max_trades_per_day"`
	MaxDailyLoss    float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
}

// SizingConfig contains position-sizing parameters.
type SizingConfig struct {
	RiskFraction float64 `json:"risk_fraction" yaml:"risk_fraction"`
	StopLossPct  float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
}

// DataConfig selects the market-data provider.
type DataConfig struct {
	Provider string `json:"provider" yaml:"provider"` // "alpaca" or "csv"
	CSVPath  string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
}

// BrokerConfig selects the brokerage environment. API credentials come
// only from the environment (ALPACA_API_KEY / ALPACA_SECRET_KEY), never
// from the file.
type BrokerConfig struct {
	Paper       bool    `json:"paper" yaml:"paper"`
	PaperEquity float64 `json:"paper_equity,omitempty" yaml:"paper_equity,omitempty"`
	APIKey      string  `json:"-" yaml:"-"`
	APISecret   string  `json:"-" yaml:"-"`
}

// JournalConfig selects the decision-journal backend.
type JournalConfig struct {
	Type string `json:"type" yaml:"type"` // "csv" or "sqlite"
	Path string `json:"path" yaml:"path"`
}

// Default returns a configuration with the stock defaults: SPY daily
// bars over six months, 20/50 crossover, two trades a day.
func Default() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:  "info",
			StatePath: "./riskday.json",
		},
		Strategy: StrategyConfig{
			Symbol:        "SPY",
			HistoryPeriod: "6mo",
			ShortWindow:   20,
			LongWindow:    50,
		},
		Risk: RiskConfig{
			PositionLimit:   1000,
			MaxTradesPerDay: 2,
			MaxDailyLoss:    -300,
		},
		Sizing: SizingConfig{
			RiskFraction: 0.05,
			StopLossPct:  0.02,
		},
		Data: DataConfig{
			Provider: "alpaca",
		},
		Broker: BrokerConfig{
			Paper:       true,
			PaperEquity: 100000,
		},
		Journal: JournalConfig{
			Type: "sqlite",
			Path: "./decisions.db",
		},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file, overlays
// environment variables, and validates the result. A .env file in the
// working directory is read first when present.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// FromEnv returns defaults overlaid with environment variables, for
// running without a config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	// Best effort: absence of a .env file is normal.
	_ = godotenv.Load()

	setString(&c.Strategy.Symbol, "TRADE_SYMBOL")
	setString(&c.Strategy.HistoryPeriod, "HISTORY_PERIOD")
	setInt(&c.Strategy.ShortWindow, "SMA_SHORT_WINDOW")
	setInt(&c.Strategy.LongWindow, "SMA_LONG_WINDOW")

	setInt(&c.Risk.PositionLimit, "POSITION_LIMIT")
	setInt(&c.Risk.MaxTradesPerDay, "MAX_TRADES_PER_DAY")
	setFloat(&c.Risk.MaxDailyLoss, "MAX_DAILY_LOSS")

	setFloat(&c.Sizing.RiskFraction, "RISK_FRACTION")
	setFloat(&c.Sizing.StopLossPct, "STOP_LOSS_PCT")

	setString(&c.App.LogLevel, "LOG_LEVEL")
	setString(&c.App.MetricsAddr, "METRICS_ADDR")
	setString(&c.App.StatePath, "RISK_STATE_PATH")

	c.Broker.APIKey = os.Getenv("ALPACA_API_KEY")
	c.Broker.APISecret = os.Getenv("ALPACA_SECRET_KEY")
}

// SaveToFile writes the config as YAML or JSON based on extension.
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

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol is required")
	}
	if c.Strategy.ShortWindow <= 0 || c.Strategy.LongWindow <= 0 {
		return fmt.Errorf("strategy windows must be positive")
	}
	if c.Strategy.ShortWindow >= c.Strategy.LongWindow {
		return fmt.Errorf("strategy.short_window must be less than long_window")
	}
	if c.Strategy.HistoryPeriod == "" {
		return fmt.Errorf("strategy.history_period is required")
	}
	if c.Risk.PositionLimit <= 0 {
		return fmt.Errorf("risk.position_limit must be positive")
	}
	if c.Risk.MaxTradesPerDay <= 0 {
		return fmt.Errorf("risk.max_trades_per_day must be positive")
	}
	if c.Risk.MaxDailyLoss >= 0 {
		return fmt.Errorf("risk.max_daily_loss must be a negative threshold")
	}
	if c.Sizing.RiskFraction <= 0 || c.Sizing.RiskFraction > 1 {
		return fmt.Errorf("sizing.risk_fraction must be in (0, 1]")
	}
	if c.Sizing.StopLossPct < 0 || c.Sizing.StopLossPct >= 1 {
		return fmt.Errorf("sizing.stop_loss_pct must be in [0, 1)")
	}
	if c.Data.Provider != "alpaca" && c.Data.Provider != "csv" {
		return fmt.Errorf("data.provider must be 'alpaca' or 'csv'")
	}
	if c.Data.Provider == "csv" && c.Data.CSVPath == "" {
		return fmt.Errorf("data.csv_path required for CSV provider")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required")
	}
	if c.App.StatePath == "" {
		return fmt.Errorf("app.state_path is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
