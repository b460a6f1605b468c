package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables (prefix THERMOLEDGER_, dots replaced
// with underscores, e.g. THERMOLEDGER_SERVER_PORT) take precedence over
// values from the config file, which take precedence over defaults.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/thermoledger")

	v.SetEnvPrefix("THERMOLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults applies the documented defaults for every recognized option.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("physics.energy_tolerance_ev", 1e-12)
	v.SetDefault("physics.entropy_tolerance_jk", 1e-6)
	v.SetDefault("physics.gibbs_tolerance_j", 1e-3)

	v.SetDefault("consensus.validator_count", 1)
	// quorum_size 0 means simple majority, resolved by EffectiveQuorum.
	v.SetDefault("consensus.quorum_size", 0)
	v.SetDefault("consensus.deadline_seconds", 30)

	v.SetDefault("ledger.hash_algorithm", "sha256")
	v.SetDefault("ledger.verify_interval_minutes", 0)
}
