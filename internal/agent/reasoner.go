package agent

import (
	"context"

	"github.com/sage-cli/sage/internal/domain"
	"github.com/sage-cli/sage/internal/reasoning"
)

// Reasoner exposes the reasoning engine through the agent routing
// layer. It handles the reason and get_tools actions.
type Reasoner struct {
	engine *reasoning.Engine
}

// NewReasoner creates a Reasoner backed by the given engine.
func NewReasoner(engine *reasoning.Engine) *Reasoner {
	return &Reasoner{engine: engine}
}

// Name returns the agent's registry name.
func (r *Reasoner) Name() domain.AgentKind {
	return domain.AgentReasoner
}

// Actions returns the actions the agent handles.
func (r *Reasoner) Actions() []Action {
	return []Action{ActionReason, ActionGetTools}
}

// Handle executes one reasoner action.
func (r *Reasoner) Handle(ctx context.Context, action Action, req Request) (*Response, error) {
	switch action {
	case ActionReason:
		result, err := r.engine.Reason(ctx, req.Goal, reasoning.Options{
			MaxIterations: req.MaxIterations,
			Timeout:       req.Timeout,
			IncludeSteps:  req.IncludeSteps,
		})
		if err != nil {
			return nil, err
		}
		return &Response{Reasoning: result}, nil

	case ActionGetTools:
		infos := r.engine.ListTools()
		tools := make([]ToolDescription, 0, len(infos))
		for _, info := range infos {
			tools = append(tools, ToolDescription{
				Name:        info.Name,
				Description: info.Description,
			})
		}
		return &Response{Tools: tools}, nil

	default:
		return nil, unknownAction(r.Name(), action, r.Actions())
	}
}

// Ensure Reasoner implements Agent.
var _ Agent = (*Reasoner)(nil)
