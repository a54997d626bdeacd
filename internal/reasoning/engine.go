package reasoning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sage-cli/sage/internal/clock"
	"github.com/sage-cli/sage/internal/constants"
	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
	"github.com/sage-cli/sage/internal/logging"
	"github.com/sage-cli/sage/internal/steplog"
	"github.com/sage-cli/sage/internal/validation"
)

// Options configure one reasoning session.
type Options struct {
	// MaxIterations bounds the number of loop iterations.
	// Zero means the default (10); the ceiling is 100.
	MaxIterations int

	// Timeout bounds the session wall-clock time.
	// Zero means the default (30s).
	Timeout time.Duration

	// IncludeSteps controls whether the result carries the step
	// history. Steps are always persisted to the step log regardless.
	IncludeSteps bool
}

// normalize validates the options and applies defaults.
func (o *Options) normalize() error {
	if o.MaxIterations < 0 {
		return fmt.Errorf("max iterations %d %w", o.MaxIterations, sageerrors.ErrValueOutOfRange)
	}
	if o.MaxIterations > constants.MaxIterationsCeiling {
		return fmt.Errorf("max iterations %d exceeds ceiling %d: %w",
			o.MaxIterations, constants.MaxIterationsCeiling, sageerrors.ErrValueOutOfRange)
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = constants.DefaultMaxIterations
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout %s %w", o.Timeout, sageerrors.ErrValueOutOfRange)
	}
	if o.Timeout == 0 {
		o.Timeout = constants.DefaultReasoningTimeout
	}
	return nil
}

// intents records which goal intent categories matched during THINK.
// Categories are not mutually exclusive; all matching insights apply.
type intents struct {
	prioritization bool
	deadline       bool
	ordering       bool
	analysis       bool
}

// any reports whether at least one intent category matched.
func (in intents) any() bool {
	return in.prioritization || in.deadline || in.ordering || in.analysis
}

// reflection is the outcome of a REFLECT phase.
type reflection struct {
	summary         string
	confidence      float64
	recommendations []string
	goalAchieved    bool
	shouldContinue  bool
}

// Engine runs the observe→think→plan→act→reflect loop. It owns no
// session state itself: each Reason call creates a call-local Memory,
// so a single shared Engine is safe across concurrent invocations.
type Engine struct {
	registry *Registry
	store    TaskReader
	steps    steplog.Store
	logger   zerolog.Logger
	clk      clock.Clock
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used for timing and urgency scoring.
// Primarily intended for tests.
func WithClock(clk clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clk = clk
	}
}

// NewEngine creates a reasoning engine with the given dependencies.
// The registry provides the tools the plan phase may schedule, the
// store feeds context snapshots, and steps persists the audit trail.
func NewEngine(store TaskReader, steps steplog.Store, registry *Registry, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		store:    store,
		steps:    steps,
		logger:   logger,
		clk:      clock.RealClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListTools returns name and description for every registered tool.
func (e *Engine) ListTools() []ToolInfo {
	return e.registry.Tools()
}

// Reason runs one bounded reasoning session for the goal and returns
// exactly one ReasoningResult.
//
// Validation failures (empty or oversized goal, out-of-range options)
// are returned as errors before any session or step exists. After the
// session starts, nothing escapes: tool failures are absorbed by the
// registry, timeouts degrade to best-effort results, and unexpected
// panics in phase logic are converted into a terminal result with
// confidence 0 and a retry recommendation.
func (e *Engine) Reason(ctx context.Context, goal string, opts Options) (result *domain.ReasoningResult, err error) {
	if err := validation.Goal(goal); err != nil {
		return nil, err
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	mem := NewMemory(e.store, e.steps, e.clk)
	start := e.clk.Now()

	// Engine-fatal recovery: a panic in phase logic must never reach
	// the caller. Steps already persisted remain in the step log.
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error().
				Str("session_id", mem.SessionID()).
				Interface("panic", rec).
				Msg("reasoning session failed")
			result = e.failureResult(goal, mem, fmt.Sprintf("Reasoning failed: %v", rec), start)
			err = nil
		}
	}()

	e.logger.Info().
		Str("goal", logging.FilterSensitiveValue(goal)).
		Int("max_iterations", opts.MaxIterations).
		Dur("timeout", opts.Timeout).
		Msg("starting reasoning session")

	var (
		snap     *Snapshot
		best     *reflection
		timedOut bool
	)

	for iteration := 1; iteration <= opts.MaxIterations; iteration++ {
		// Timeout is checked at the top of each iteration; an in-flight
		// iteration always runs to completion (tools are fast and local).
		if e.clk.Now().Sub(start) >= opts.Timeout {
			timedOut = true
			break
		}
		if ctx.Err() != nil {
			timedOut = true
			break
		}

		// OBSERVE
		phaseStart := e.clk.Now()
		var obsErr error
		if snap == nil {
			snap, obsErr = mem.Initialize(ctx, goal)
		} else {
			snap, obsErr = mem.Refresh(ctx, snap)
		}
		if obsErr != nil {
			// Context construction failure is engine-fatal.
			e.logger.Error().Err(obsErr).Msg("context construction failed")
			return e.failureResult(goal, mem, fmt.Sprintf("Reasoning failed: %v", obsErr), start), nil
		}
		observation := e.observe(snap)
		e.recordStep(ctx, mem, constants.PhaseObserve, goal, observation, e.clk.Now().Sub(phaseStart))

		// THINK
		phaseStart = e.clk.Now()
		in, thought := e.think(goal, snap)
		e.recordStep(ctx, mem, constants.PhaseThink, observation, thought, e.clk.Now().Sub(phaseStart))

		// PLAN
		phaseStart = e.clk.Now()
		actions := e.plan(goal, in, snap)
		e.recordStep(ctx, mem, constants.PhasePlan, thought, describePlan(actions), e.clk.Now().Sub(phaseStart))

		// ACT
		phaseStart = e.clk.Now()
		transcript := e.act(ctx, actions)
		e.recordStep(ctx, mem, constants.PhaseAct, describePlan(actions), transcript, e.clk.Now().Sub(phaseStart))

		// REFLECT
		phaseStart = e.clk.Now()
		ref := e.reflect(snap)
		e.recordStep(ctx, mem, constants.PhaseReflect, transcript, ref.summary, e.clk.Now().Sub(phaseStart))
		best = &ref

		if ref.goalAchieved || !ref.shouldContinue {
			break
		}
	}

	total := e.clk.Now().Sub(start).Milliseconds()

	if best == nil {
		// Timeout (or cancellation) fired before the first iteration
		// completed; degrade to an explicit empty result.
		res := &domain.ReasoningResult{
			Goal:            goal,
			Result:          "No iterations completed before the timeout elapsed",
			Confidence:      0,
			Recommendations: []string{},
			SessionID:       mem.SessionID(),
			TotalDurationMs: total,
		}
		if opts.IncludeSteps {
			res.Steps = mem.Steps()
		}
		return res, nil
	}

	res := &domain.ReasoningResult{
		Goal:            goal,
		Result:          best.summary,
		Confidence:      best.confidence,
		Recommendations: best.recommendations,
		SessionID:       mem.SessionID(),
		TotalDurationMs: total,
	}
	if opts.IncludeSteps {
		res.Steps = mem.Steps()
	}

	e.logger.Info().
		Str("session_id", res.SessionID).
		Float64("confidence", res.Confidence).
		Int64("duration_ms", res.TotalDurationMs).
		Bool("timed_out", timedOut).
		Msg("reasoning session finished")

	return res, nil
}

// recordStep logs one phase execution. Step log persistence failures
// are logged and otherwise ignored; the step always lands in the
// in-memory history.
func (e *Engine) recordStep(ctx context.Context, mem *Memory, phase constants.Phase, input, output string, duration time.Duration) {
	if _, err := mem.AddStep(ctx, mem.StepCount()+1, phase, input, output, duration); err != nil {
		e.logger.Warn().
			Err(err).
			Str("session_id", mem.SessionID()).
			Str("phase", phase.String()).
			Msg("failed to persist reasoning step")
	}
}

// observe produces the textual observation transcript: goal, stat
// counts, and available tool names. It has no branching logic.
func (e *Engine) observe(snap *Snapshot) string {
	return fmt.Sprintf("goal: %s | tasks: %d (%d pending, %d in progress) | overdue: %d | tools: %s",
		snap.Goal,
		snap.Stats.Total,
		snap.Stats.ByStatus[constants.TaskStatusPending],
		snap.Stats.ByStatus[constants.TaskStatusInProgress],
		snap.Stats.OverdueCount,
		strings.Join(e.registry.Names(), ", "))
}

// think matches the goal against the fixed intent categories using
// case-insensitive substring checks. Categories are non-exclusive; all
// matching insights accumulate. This is deliberately simple keyword
// matching, not NLP.
func (e *Engine) think(goal string, snap *Snapshot) (intents, string) {
	lower := strings.ToLower(goal)
	var in intents
	var insights []string

	if strings.Contains(lower, "next") || strings.Contains(lower, "work on") {
		in.prioritization = true
		insights = append(insights, "The goal asks what to do next; an urgency ranking will identify the top task.")
	}
	if strings.Contains(lower, "overdue") || strings.Contains(lower, "late") {
		in.deadline = true
		insights = append(insights, "The goal raises a deadline concern; overdue tasks should be surfaced.")
	}
	if strings.Contains(lower, "organize") || strings.Contains(lower, "sort") {
		in.ordering = true
		insights = append(insights, "The goal asks for ordering; a suggested execution order will help.")
	}
	if strings.Contains(lower, "analyze") || strings.Contains(lower, "review") {
		in.analysis = true
		insights = append(insights, "The goal asks for analysis; a general priority review applies.")
	}
	if !in.any() {
		insights = append(insights, "No specific intent recognized; treating this as a general inquiry about the task list.")
	}

	insights = append(insights, fmt.Sprintf("Objectively: %d task(s) tracked, %d overdue.",
		snap.Stats.Total, snap.Stats.OverdueCount))

	return in, strings.Join(insights, " ")
}

// plan schedules tool executions for the iteration. analyze_priorities
// is always first (the unconditional baseline). find_overdue is added
// when the deadline intent matched OR the overdue count is nonzero.
// suggest_order is added when the ordering intent matched OR the goal
// contains "next" or "order". The order is fixed: priorities, overdue,
// order.
func (e *Engine) plan(goal string, in intents, snap *Snapshot) []domain.PlannedAction {
	actions := []domain.PlannedAction{
		{
			Tool:   ToolAnalyzePriorities,
			Reason: "baseline urgency ranking across current tasks",
		},
	}

	if in.deadline || snap.Stats.OverdueCount > 0 {
		actions = append(actions, domain.PlannedAction{
			Tool:   ToolFindOverdue,
			Reason: "deadline concern raised or overdue tasks present",
		})
	}

	lower := strings.ToLower(goal)
	if in.ordering || strings.Contains(lower, "next") || strings.Contains(lower, "order") {
		actions = append(actions, domain.PlannedAction{
			Tool:   ToolSuggestOrder,
			Reason: "goal asks for ordering or the next task",
		})
	}

	return actions
}

// act executes each planned action sequentially in plan order. A tool
// failure never aborts the pass; every planned action is attempted and
// the outcome recorded as a transcript line.
func (e *Engine) act(ctx context.Context, actions []domain.PlannedAction) string {
	lines := make([]string, 0, len(actions))
	for _, action := range actions {
		res := e.registry.Execute(ctx, action.Tool, action.Params)
		if res.Success {
			lines = append(lines, fmt.Sprintf("✓ %s: %s", action.Tool, res.Summary))
		} else {
			lines = append(lines, fmt.Sprintf("✗ %s: %s", action.Tool, res.Error))
			e.logger.Warn().
				Str("tool", action.Tool).
				Str("error", res.Error).
				Msg("tool execution failed")
		}
	}
	return strings.Join(lines, "\n")
}

// reflect derives recommendations from context statistics only, which
// keeps the result deterministic and independent of tool result shapes.
//
// A single iteration is sufficient for the built-in intent set, so
// reflect always reports the goal achieved and no continuation. The
// multi-iteration loop exists structurally for richer future intents.
func (e *Engine) reflect(snap *Snapshot) reflection {
	stats := snap.Stats
	pending := stats.ByStatus[constants.TaskStatusPending]
	urgent := stats.ByPriority[constants.PriorityUrgent]

	confidence := constants.BaseConfidence
	var recs []string

	if stats.Total == 0 {
		recs = append(recs, "Create tasks to start tracking work; the store is empty.")
		summary := "There are no tasks in the store. Recommendation: 1. " + recs[0]
		return reflection{
			summary:         summary,
			confidence:      confidence,
			recommendations: recs,
			goalAchieved:    true,
			shouldContinue:  false,
		}
	}

	if stats.OverdueCount > 0 {
		recs = append(recs, fmt.Sprintf("Address the %d overdue task(s) immediately.", stats.OverdueCount))
		penalty := constants.OverduePenaltyPerTask * float64(stats.OverdueCount)
		if penalty > constants.MaxOverduePenalty {
			penalty = constants.MaxOverduePenalty
		}
		confidence -= penalty
		if confidence < constants.MinConfidence {
			confidence = constants.MinConfidence
		}
	}
	if urgent > 0 {
		recs = append(recs, fmt.Sprintf("Focus on the %d urgent-priority task(s) first.", urgent))
	}
	if pending > constants.PendingBacklogThreshold {
		recs = append(recs, fmt.Sprintf("Break down or delegate the backlog; %d task(s) are pending.", pending))
	}
	recs = append(recs, "Review task priorities regularly to keep the ranking current.")

	var b strings.Builder
	fmt.Fprintf(&b, "Reviewed %d task(s): %d pending, %d in progress, %d overdue, %d urgent.",
		stats.Total, pending, stats.ByStatus[constants.TaskStatusInProgress], stats.OverdueCount, urgent)
	b.WriteString(" Recommendations:")
	for i, rec := range recs {
		fmt.Fprintf(&b, " %d. %s", i+1, rec)
	}

	return reflection{
		summary:         b.String(),
		confidence:      confidence,
		recommendations: recs,
		goalAchieved:    true,
		shouldContinue:  false,
	}
}

// failureResult builds the terminal result for an engine-fatal error.
func (e *Engine) failureResult(goal string, mem *Memory, msg string, start time.Time) *domain.ReasoningResult {
	return &domain.ReasoningResult{
		Goal:            goal,
		Result:          msg,
		Confidence:      0,
		Recommendations: []string{"Retry the request; an internal error interrupted reasoning."},
		SessionID:       mem.SessionID(),
		TotalDurationMs: e.clk.Now().Sub(start).Milliseconds(),
	}
}

// describePlan renders planned actions as "tool (reason)" lines.
func describePlan(actions []domain.PlannedAction) string {
	lines := make([]string, 0, len(actions))
	for _, a := range actions {
		lines = append(lines, fmt.Sprintf("%s (%s)", a.Tool, a.Reason))
	}
	return strings.Join(lines, "\n")
}
