package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sage-cli/sage/internal/agent"
	"github.com/sage-cli/sage/internal/domain"
	"github.com/sage-cli/sage/internal/tui"
)

// newToolsCmd creates the tools command.
func newToolsCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the reasoning tools",
		Long: `List the tools available to the reasoning engine, in
registration order.

Examples:
  sage tools
  sage tools -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTools(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
	return cmd
}

// runTools executes the tools command.
func runTools(ctx context.Context, w io.Writer, flags *GlobalFlags) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "tools", err)
	}

	resp, err := deps.agents.Dispatch(ctx, domain.AgentReasoner, agent.ActionGetTools, agent.Request{})
	if err != nil {
		return outputError(w, format, "tools", err)
	}

	if format == OutputJSON {
		return out.JSON(resp.Tools)
	}

	if len(resp.Tools) == 0 {
		out.Info("No tools registered.")
		return nil
	}
	for _, tool := range resp.Tools {
		out.Info(fmt.Sprintf("%-20s  %s", tool.Name, tool.Description))
	}
	return nil
}
