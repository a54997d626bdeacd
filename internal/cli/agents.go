package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sage-cli/sage/internal/tui"
)

// newAgentsCmd creates the agents command.
func newAgentsCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the registered agents and their actions",
		Long: `List the registered agents and the actions each one handles.

Examples:
  sage agents
  sage agents -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAgents(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
	return cmd
}

// agentListing is the JSON shape for one agent entry.
type agentListing struct {
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
}

// runAgents executes the agents command.
func runAgents(_ context.Context, w io.Writer, flags *GlobalFlags) error {
	format := outputFormat(flags)
	out := tui.NewOutput(w, format)
	tui.CheckNoColor()

	deps, err := newAppDeps(GetLogger())
	if err != nil {
		return outputError(w, format, "agents", err)
	}

	listings := make([]agentListing, 0, 2)
	for _, name := range deps.agents.Names() {
		a, ok := deps.agents.Get(name)
		if !ok {
			continue
		}
		actions := make([]string, 0, len(a.Actions()))
		for _, action := range a.Actions() {
			actions = append(actions, action.String())
		}
		listings = append(listings, agentListing{Name: name.String(), Actions: actions})
	}

	if format == OutputJSON {
		return out.JSON(listings)
	}

	for _, l := range listings {
		out.Info(fmt.Sprintf("%-10s  %s", l.Name, strings.Join(l.Actions, ", ")))
	}
	return nil
}
