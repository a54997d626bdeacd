package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-cli/sage/internal/agent"
	"github.com/sage-cli/sage/internal/domain"
	"github.com/sage-cli/sage/internal/notify"
	"github.com/sage-cli/sage/internal/tui"
)

// reasonFlags holds the flags for the reason command.
type reasonFlags struct {
	maxIterations int
	timeout       time.Duration
	showSteps     bool
}

// newReasonCmd creates the reason command.
func newReasonCmd(flags *GlobalFlags) *cobra.Command {
	rFlags := &reasonFlags{}

	cmd := &cobra.Command{
		Use:   "reason <goal>",
		Short: "Run a reasoning session for a goal",
		Long: `Run a bounded observe-think-plan-act-reflect reasoning session.

The session observes the current task list, interprets the goal,
plans and executes analysis tools, and reflects the outcome into a
summary, ranked recommendations, and a confidence score. Every step
is written to the audit log under ~/.sage/sessions/.

Examples:
  sage reason "what should I work on next?"
  sage reason "show me overdue work" --show-steps
  sage reason "organize my tasks" --max-iterations 3 --timeout 10s
  sage reason "next steps" -o json

Exit codes:
  0: Success
  1: General error
  2: Invalid input (empty goal, budget out of range)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReason(cmd.Context(), cmd.OutOrStdout(), flags, rFlags, args[0])
		},
	}

	cmd.Flags().IntVar(&rFlags.maxIterations, "max-iterations", 0, "Iteration budget (default from config, max 100)")
	cmd.Flags().DurationVar(&rFlags.timeout, "timeout", 0, "Wall-clock budget (default from config)")
	cmd.Flags().BoolVar(&rFlags.showSteps, "show-steps", false, "Include the step transcript in the output")

	return cmd
}

// runReason executes the reason command.
func runReason(ctx context.Context, w io.Writer, flags *GlobalFlags, rFlags *reasonFlags, goal string) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "reason", err)
	}

	// Flags override config; zero values fall through to engine defaults.
	maxIterations := rFlags.maxIterations
	if maxIterations == 0 {
		maxIterations = deps.cfg.Reasoning.MaxIterations
	}
	timeout := rFlags.timeout
	if timeout == 0 {
		timeout = deps.cfg.Reasoning.Timeout
	}
	includeSteps := rFlags.showSteps || deps.cfg.Reasoning.IncludeSteps

	resp, err := deps.agents.Dispatch(ctx, domain.AgentReasoner, agent.ActionReason, agent.Request{
		Goal:          goal,
		MaxIterations: maxIterations,
		Timeout:       timeout,
		IncludeSteps:  includeSteps,
	})
	if err != nil {
		return outputError(w, format, "reason", err)
	}
	result := resp.Reasoning

	if deps.cfg.Notifications.Enabled {
		_, _ = deps.notifier.Add(ctx, notify.LevelInfo,
			fmt.Sprintf("Reasoning session %s finished (confidence %.2f)", result.SessionID, result.Confidence), "")
	}

	if format == OutputJSON {
		return out.JSON(result)
	}

	displayReasoningResult(out, result, includeSteps)
	return nil
}

// displayReasoningResult renders a reasoning result in text format.
func displayReasoningResult(out tui.Output, result *domain.ReasoningResult, showSteps bool) {
	out.Success(fmt.Sprintf("Session %s finished in %dms", result.SessionID, result.TotalDurationMs))
	out.Info("")
	out.Info(result.Result)
	out.Info(fmt.Sprintf("Confidence: %.2f", result.Confidence))

	if len(result.Recommendations) > 0 {
		out.Info("")
		out.Info("Recommendations:")
		for i, rec := range result.Recommendations {
			out.Info(fmt.Sprintf("  %d. %s", i+1, rec))
		}
	}

	if showSteps && len(result.Steps) > 0 {
		out.Info("")
		out.Info("Steps:")
		for _, step := range result.Steps {
			out.Info(fmt.Sprintf("  %2d. [%s] %s (%dms)",
				step.StepNumber, step.Phase, step.Output, step.DurationMs))
		}
	}
}
