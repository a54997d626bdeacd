package domain

// AgentKind identifies a registered agent (e.g., "reasoner", "tasks").
// Agents are routing endpoints that map string actions to typed handlers.
type AgentKind string

// Agent kind constants define the built-in agents.
const (
	// AgentReasoner runs reasoning sessions and exposes tool introspection.
	AgentReasoner AgentKind = "reasoner"

	// AgentTasks provides task CRUD operations.
	AgentTasks AgentKind = "tasks"
)

// String returns the string representation of the AgentKind.
// This implements fmt.Stringer for convenient logging and debugging.
func (a AgentKind) String() string {
	return string(a)
}

// IsValid checks if the agent kind is a recognized type.
func (a AgentKind) IsValid() bool {
	switch a {
	case AgentReasoner, AgentTasks:
		return true
	}
	return false
}
