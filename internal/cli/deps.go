package cli

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sage-cli/sage/internal/agent"
	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/config"
	"github.com/sage-cli/sage/internal/notify"
	"github.com/sage-cli/sage/internal/reasoning"
	"github.com/sage-cli/sage/internal/steplog"
	"github.com/sage-cli/sage/internal/task"
)

// appDeps wires together the stores, the reasoning engine, the agent
// registry, and the notification manager for command handlers.
type appDeps struct {
	cfg      *config.Config
	home     string
	store    *task.FileStore
	steps    *steplog.FileStore
	agents   *agent.Registry
	notifier *notify.Manager
}

// newAppDeps constructs the full dependency graph rooted at the SAGE
// home directory. Every command handler goes through the agent registry
// rather than touching stores directly.
func newAppDeps(logger zerolog.Logger) (*appDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	home, err := config.Home()
	if err != nil {
		return nil, err
	}

	clk := clock.RealClock{}

	store, err := task.NewFileStore(home, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}

	steps, err := steplog.NewFileStore(home, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to open step log: %w", err)
	}

	registry, err := reasoning.NewBuiltinRegistry(store, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	engine := reasoning.NewEngine(store, steps, registry, logger)

	agents := agent.NewRegistry()
	if err := agents.Register(agent.NewReasoner(engine)); err != nil {
		return nil, err
	}
	if err := agents.Register(agent.NewTasks(store)); err != nil {
		return nil, err
	}

	notifier, err := notify.NewManager(home, clk)
	if err != nil {
		return nil, err
	}

	return &appDeps{
		cfg:      cfg,
		home:     home,
		store:    store,
		steps:    steps,
		agents:   agents,
		notifier: notifier,
	}, nil
}
