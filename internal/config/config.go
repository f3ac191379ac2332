package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Data source kinds.
const (
	SourceCSV     = "csv"
	SourceParquet = "parquet"
	SourceYahoo   = "yahoo"
	SourceMock    = "mock"
)

// Config holds all application configuration.
type Config struct {
	Backtest struct {
		Strategy      string   `yaml:"strategy"`
		FeePercent    *float64 `yaml:"fee_percent"` // nil means default
		BuyFeatures   []string `yaml:"buy_features"`
		SellFeatures  []string `yaml:"sell_features"`
		MAPeriod      int      `yaml:"ma_period"`
		RSIPeriod     int      `yaml:"rsi_period"`
		RSIOversold   float64  `yaml:"rsi_oversold"`
		RSIOverbought float64  `yaml:"rsi_overbought"`
		ChannelPeriod int      `yaml:"channel_period"`
	} `yaml:"backtest"`
	DataSource struct {
		Kind   string `yaml:"kind"`
		Path   string `yaml:"path"` // file or directory for csv/parquet
		Symbol string `yaml:"symbol"`
		Limit  int    `yaml:"limit"`
	} `yaml:"data_source"`
	Output struct {
		CSVPath     string `yaml:"csv_path"`
		ParquetPath string `yaml:"parquet_path"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// Fee returns the configured fee, or def when none was set.
func (c *Config) Fee(def float64) float64 {
	if c.Backtest.FeePercent == nil {
		return def
	}
	return *c.Backtest.FeePercent
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // best-effort

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STRATEGY"); v != "" {
		cfg.Backtest.Strategy = v
	}
	if v := os.Getenv("FEE_PERCENT"); v != "" {
		fee, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("FEE_PERCENT: %w", err)
		}
		cfg.Backtest.FeePercent = &fee
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource.Kind = v
	}
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.DataSource.Path = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}

	// Defaults
	if cfg.Backtest.Strategy == "" {
		cfg.Backtest.Strategy = "ma-trend"
	}
	if cfg.Backtest.MAPeriod == 0 {
		cfg.Backtest.MAPeriod = 100
	}
	if cfg.Backtest.RSIPeriod == 0 {
		cfg.Backtest.RSIPeriod = 14
	}
	if cfg.Backtest.RSIOversold == 0 {
		cfg.Backtest.RSIOversold = 30
	}
	if cfg.Backtest.RSIOverbought == 0 {
		cfg.Backtest.RSIOverbought = 70
	}
	if cfg.Backtest.ChannelPeriod == 0 {
		cfg.Backtest.ChannelPeriod = 20
	}
	cfg.DataSource.Kind = strings.ToLower(cfg.DataSource.Kind)
	if cfg.DataSource.Kind == "" {
		cfg.DataSource.Kind = SourceCSV
	}
	if cfg.DataSource.Path == "" {
		cfg.DataSource.Path = "data"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "^GSPC"
	}
	if cfg.Output.CSVPath == "" {
		cfg.Output.CSVPath = "output/trades.csv"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 18 * * 1-5"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if fee := c.Backtest.FeePercent; fee != nil && (*fee < 0 || *fee != *fee) {
		return fmt.Errorf("backtest.fee_percent must be a non-negative number")
	}
	switch c.DataSource.Kind {
	case SourceCSV, SourceParquet, SourceYahoo, SourceMock:
	default:
		return fmt.Errorf("data_source.kind %q is not one of csv, parquet, yahoo, mock", c.DataSource.Kind)
	}
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if c.DataSource.Limit < 0 {
		return fmt.Errorf("data_source.limit must not be negative")
	}
	if c.Backtest.MAPeriod < 1 || c.Backtest.RSIPeriod < 1 || c.Backtest.ChannelPeriod < 1 {
		return fmt.Errorf("backtest periods must be positive")
	}
	if c.Backtest.RSIOversold >= c.Backtest.RSIOverbought {
		return fmt.Errorf("backtest.rsi_oversold must be below rsi_overbought")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
