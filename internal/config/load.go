package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sage-cli/sage/internal/constants"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are the base layer that can be overridden by the
// config file and environment variables.
func DefaultConfig() *Config {
	return &Config{
		Reasoning: ReasoningConfig{
			MaxIterations: constants.DefaultMaxIterations,
			Timeout:       constants.DefaultReasoningTimeout,
			IncludeSteps:  false,
		},
		Notifications: NotificationsConfig{
			Enabled:    true,
			PruneAfter: 30 * 24 * time.Hour,
		},
	}
}

// setDefaults registers the default values on a viper instance.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("reasoning.max_iterations", def.Reasoning.MaxIterations)
	v.SetDefault("reasoning.timeout", def.Reasoning.Timeout)
	v.SetDefault("reasoning.include_steps", def.Reasoning.IncludeSteps)
	v.SetDefault("notifications.enabled", def.Notifications.Enabled)
	v.SetDefault("notifications.prune_after", def.Notifications.PruneAfter)
}

// newViperInstance creates a new Viper instance with standard SAGE
// configuration: environment variable prefix (SAGE_), key replacer,
// and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config
// file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper
// precedence. Missing config files are not an error; only actual
// configuration problems are reported.
func Load() (*Config, error) {
	v := newViperInstance()

	home, err := Home()
	if err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(home)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			// Tolerate a missing directory the same as a missing file
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks a Config for out-of-range values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return sageerrors.ErrConfigNil
	}
	if cfg.Reasoning.MaxIterations < 0 || cfg.Reasoning.MaxIterations > constants.MaxIterationsCeiling {
		return fmt.Errorf("%w: max_iterations %d must be between 0 and %d",
			sageerrors.ErrConfigInvalidReasoning, cfg.Reasoning.MaxIterations, constants.MaxIterationsCeiling)
	}
	if cfg.Reasoning.Timeout < 0 {
		return fmt.Errorf("%w: timeout %s must not be negative",
			sageerrors.ErrConfigInvalidReasoning, cfg.Reasoning.Timeout)
	}
	if cfg.Notifications.PruneAfter < 0 {
		return fmt.Errorf("%w: prune_after %s must not be negative",
			sageerrors.ErrConfigInvalidReasoning, cfg.Notifications.PruneAfter)
	}
	return nil
}

// Home returns the SAGE home directory path.
// If the SAGE_HOME environment variable is set, it uses that.
// Otherwise, it defaults to ~/.sage.
func Home() (string, error) {
	if sageHome := os.Getenv("SAGE_HOME"); sageHome != "" {
		return sageHome, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.SageHome), nil
}
