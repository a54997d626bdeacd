// Package reasoning implements the SAGE autonomous reasoning subsystem:
// a bounded, auditable observe→think→plan→act→reflect loop over the
// task store, producing ranked, explainable recommendations.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain,
//     internal/errors, internal/steplog, internal/task, internal/validation
//   - MUST NOT import: internal/cli, internal/agent
package reasoning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sage-cli/sage/internal/domain"
	sageerrors "github.com/sage-cli/sage/internal/errors"
)

// Tool is a named, side-effect-free query or analysis operation over
// the task store. Tools report failures as values in the ToolResult;
// the registry converts panics into failure results so a misbehaving
// tool can never crash the reasoning loop.
type Tool interface {
	// Name returns the unique registry name of the tool.
	Name() string

	// Description returns a one-line human-readable description.
	Description() string

	// Run executes the tool with the given parameters.
	Run(ctx context.Context, params domain.ToolParams) domain.ToolResult
}

// ToolInfo describes a registered tool for introspection.
type ToolInfo struct {
	// Name is the registry name of the tool.
	Name string `json:"name"`

	// Description is a one-line description of what the tool does.
	Description string `json:"description"`
}

// Registry is a named catalogue of tools. It is safe for concurrent
// read access after initialization. Use NewRegistry() to create and
// Register() to add tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string // registration order, for deterministic listings
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
// Registration is first-wins: registering a name twice returns
// ErrToolExists rather than replacing the existing tool.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("failed to register tool: tool %w", sageerrors.ErrEmptyValue)
	}
	name := t.Name()
	if strings.TrimSpace(name) == "" {
		return sageerrors.ErrToolNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("%w: %s", sageerrors.ErrToolExists, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Execute looks up and runs the named tool. Failures are values: an
// unknown name returns a failure result enumerating the available
// tools, and a panicking tool is recovered into a failure result.
// Execute never returns an error and never panics.
func (r *Registry) Execute(ctx context.Context, name string, params domain.ToolParams) (result domain.ToolResult) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return domain.ToolResult{
			Success: false,
			Error: fmt.Sprintf("%s: %q; available tools: %s",
				sageerrors.ErrUnknownTool.Error(), name, strings.Join(r.Names(), ", ")),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = domain.ToolResult{
				Success: false,
				Error:   fmt.Sprintf("tool %q panicked: %v", name, rec),
			}
		}
	}()

	return t.Run(ctx, params)
}

// Has checks if a tool is registered under the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Tools returns name and description for every registered tool, in
// registration order.
func (r *Registry) Tools() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, ToolInfo{
			Name:        name,
			Description: r.tools[name].Description(),
		})
	}
	return infos
}
