// Package config loads the embedder's backtest configuration from a
// config file and environment variables, grounded on
// RyanLisse-go-crypto-bot-clean's internal/config package (viper,
// mapstructure-tagged struct, environment override) and on
// 0xtitan6-polymarket-mm's config package for the specific
// file-plus-`AutomaticEnv`-override shape, plus a go-playground/
// validator/v10 pass over the decoded struct before it's handed back
// to the caller.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the settings needed to construct a Backtest: which
// exchange presets to register, the initial balances to seed every
// exchange with, where the event source reads from, logging, and where
// to persist the completed Results record.
type Config struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	Presets         []string           `mapstructure:"presets" validate:"required,min=1"`
	InitialBalances map[string]float64 `mapstructure:"initial_balances" validate:"required,min=1"`

	Feed struct {
		Kind string `mapstructure:"kind" validate:"required,oneof=csv websocket"`
		Path string `mapstructure:"path" validate:"required_if=Kind csv"`
		URL  string `mapstructure:"url" validate:"required_if=Kind websocket"`
	} `mapstructure:"feed" validate:"required"`

	Store struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
	} `mapstructure:"store"`

	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
	} `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("presets", []string{"BINANCE", "COINBASE", "KRAKEN"})
	v.SetDefault("initial_balances", map[string]float64{"USD": 10000})
	v.SetDefault("feed.kind", "csv")
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "backtest.db")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
}

// Load loads configuration from an optional file at path (may be empty,
// in which case only defaults and the environment apply) and from
// RISKWAVE_-prefixed environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix("RISKWAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}
