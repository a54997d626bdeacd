// Package config provides configuration management for SAGE with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. Environment variables (SAGE_* prefix)
//  2. Global config (~/.sage/config.yaml)
//  3. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and
// internal/errors, but MUST NOT import internal/domain or other
// internal packages.
package config

import "time"

// Config is the root configuration structure for SAGE.
type Config struct {
	// Reasoning contains settings for the reasoning engine.
	Reasoning ReasoningConfig `yaml:"reasoning" mapstructure:"reasoning"`

	// Notifications contains settings for the notification log.
	Notifications NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
}

// ReasoningConfig contains settings for the reasoning engine.
type ReasoningConfig struct {
	// MaxIterations is the default iteration budget per session.
	// Default: 10, ceiling: 100.
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`

	// Timeout is the default wall-clock budget per session.
	// Default: 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// IncludeSteps controls whether reason results carry step history
	// by default. Steps are always persisted regardless.
	IncludeSteps bool `yaml:"include_steps" mapstructure:"include_steps"`
}

// NotificationsConfig contains settings for the notification log.
type NotificationsConfig struct {
	// Enabled controls whether lifecycle notifications are written.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// PruneAfter is how long read notifications are retained.
	PruneAfter time.Duration `yaml:"prune_after" mapstructure:"prune_after"`
}
