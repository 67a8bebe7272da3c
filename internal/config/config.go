// Package config loads the application configuration from yaml,
// applying defaults before unmarshalling and validating the result.
// Every violation is a configuration error raised at load time, so the
// pipeline components never see an invalid configuration.
package config

import (
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/marketgrid/signalcore/internal/backtest"
	"github.com/marketgrid/signalcore/internal/engine"
	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/risk"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

// AppConfig aggregates every component configuration plus an optional
// account snapshot for risk validation.
type AppConfig struct {
	Indicator indicator.Config `yaml:"indicator"`
	Engine    engine.Config    `yaml:"engine"`
	Risk      risk.Config      `yaml:"risk"`
	Backtest  backtest.Config  `yaml:"backtest"`

	// Account enables position sizing and drawdown checks when present.
	Account *types.AccountState `yaml:"account,omitempty"`
}

// Default returns the configuration with every default applied.
func Default() AppConfig {
	var cfg AppConfig
	_ = defaults.Set(&cfg)

	return cfg
}

// Load reads, parses and validates a yaml configuration file.
func Load(path string) (AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
			"cannot read configuration file %s", path)
	}

	return Parse(raw)
}

// Parse unmarshals yaml over the defaults and validates the result.
func Parse(raw []byte) (AppConfig, error) {
	cfg := Default()

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration,
			"cannot parse configuration yaml", err)
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// Validate runs every component's own validation plus the struct tags.
func (c AppConfig) Validate() error {
	if err := c.Indicator.Validate(); err != nil {
		return err
	}

	if err := c.Engine.Validate(); err != nil {
		return err
	}

	if err := c.Risk.Validate(); err != nil {
		return err
	}

	if err := c.Backtest.Validate(); err != nil {
		return err
	}

	if c.Account != nil {
		if err := validator.New().Struct(c.Account); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid account state", err)
		}
	}

	return nil
}
