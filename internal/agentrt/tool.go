// Package agentrt implements the tool-calling agent runtime: a dispatch
// table of named tools driven by an LLM provider, with shared usage
// accounting threaded through nested agent runs.
package agentrt

import (
	"context"

	"github.com/rs/zerolog"
)

// Tool is a capability exposed to the model. Implementations should
// return tool-boundary failures inside the result payload, not as an
// error: an error return here is surfaced to the model as an error
// message but is reserved for genuinely unrecoverable handler bugs.
type Tool interface {
	// Name is the unique dispatch identifier.
	Name() string

	// Description tells the model when to use the tool.
	Description() string

	// Parameters is a JSON-schema map describing accepted arguments.
	Parameters() map[string]any

	// Call executes the tool with model-supplied arguments.
	Call(tc *ToolContext, args map[string]any) (any, error)
}

// ToolContext carries the per-invocation environment into a tool: the
// request context, the caller's read-only dependency bundle, the shared
// usage counter, and identifiers for logging.
type ToolContext struct {
	ctx       context.Context
	deps      any
	usage     *Usage
	agentName string
	callID    string
	logger    zerolog.Logger
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// Deps returns the caller-supplied dependency bundle. Tools read it,
// never mutate it.
func (tc *ToolContext) Deps() any { return tc.deps }

// Usage returns the shared accounting counter. Delegating tools must
// forward this exact pointer into the subordinate run.
func (tc *ToolContext) Usage() *Usage { return tc.usage }

// AgentName returns the owning agent's name.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// FunctionCallID correlates the model's request with the tool execution.
func (tc *ToolContext) FunctionCallID() string { return tc.callID }

// Logger returns a logger annotated with agent and call identifiers.
func (tc *ToolContext) Logger() zerolog.Logger { return tc.logger }
