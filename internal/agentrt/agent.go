package agentrt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hal9000y/research-mail/internal/fault"
)

const defaultMaxTurns = 10

// Config describes an agent.
type Config struct {
	Name         string
	Provider     Provider
	Model        string
	SystemPrompt string
	Tools        []Tool
	MaxTurns     int
	MaxTokens    int
	Temperature  float64
	Logger       zerolog.Logger
}

// Agent drives the tool-calling loop for one logical agent. It is
// stateless across runs and safe for concurrent use.
type Agent struct {
	name         string
	provider     Provider
	model        string
	systemPrompt string
	tools        []Tool
	byName       map[string]Tool
	maxTurns     int
	maxTokens    int
	temperature  float64
	logger       zerolog.Logger
}

// New creates an agent with a name-keyed tool dispatch table.
func New(cfg Config) (*Agent, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	byName := make(map[string]Tool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		if _, exists := byName[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name())
		}
		byName[t.Name()] = t
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	return &Agent{
		name:         cfg.Name,
		provider:     cfg.Provider,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		tools:        cfg.Tools,
		byName:       byName,
		maxTurns:     maxTurns,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		logger:       cfg.Logger.With().Str("agent", cfg.Name).Logger(),
	}, nil
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// RunResult is the final outcome of an agent run.
type RunResult struct {
	Output string
	Turns  int
}

// Run executes the tool-calling loop until the model produces a final
// text answer or the turn budget is exhausted.
//
// usage must be non-nil: every run, including delegated subordinate
// runs, accounts into one shared counter. A nil usage would silently
// fork accounting, so it is rejected before any provider call.
func (a *Agent) Run(ctx context.Context, prompt string, deps any, usage *Usage) (*RunResult, error) {
	if usage == nil {
		return nil, fault.Invalidf("usage accounting token is required")
	}

	messages := []Message{{Role: "user", Content: prompt}}

	for turn := 1; turn <= a.maxTurns; turn++ {
		resp, err := a.provider.Generate(ctx, Request{
			Model:        a.model,
			SystemPrompt: a.systemPrompt,
			Messages:     messages,
			Tools:        a.toolSpecs(),
			MaxTokens:    a.maxTokens,
			Temperature:  a.temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("provider.Generate failed: %w", err)
		}

		usage.Add(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			a.logger.Debug().Int("turns", turn).Msg("run complete")

			return &RunResult{Output: resp.Content, Turns: turn}, nil
		}

		messages = append(messages, Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			messages = append(messages, a.dispatch(ctx, call, deps, usage))
		}
	}

	return nil, fmt.Errorf("agent %s exceeded %d turns without a final answer", a.name, a.maxTurns)
}

// dispatch routes one model-requested call through the tool table and
// renders the outcome as a tool message. Failures never abort the loop:
// they are reported back to the model inside the message content.
func (a *Agent) dispatch(ctx context.Context, call ToolCall, deps any, usage *Usage) Message {
	callID := call.ID
	if callID == "" {
		callID = uuid.NewString()
	}

	logger := a.logger.With().Str("tool", call.Name).Str("fc_id", callID).Logger()

	t, ok := a.byName[call.Name]
	if !ok {
		logger.Warn().Msg("unknown tool requested")

		return Message{
			Role:       "tool",
			ToolCallID: callID,
			Content:    fmt.Sprintf(`{"error":"unknown tool %q"}`, call.Name),
		}
	}

	tc := &ToolContext{
		ctx:       ctx,
		deps:      deps,
		usage:     usage,
		agentName: a.name,
		callID:    callID,
		logger:    logger,
	}

	result, err := t.Call(tc, call.Arguments)
	if err != nil {
		logger.Error().Err(err).Msg("tool call failed")

		return Message{
			Role:       "tool",
			ToolCallID: callID,
			Content:    fmt.Sprintf(`{"error":%q}`, err.Error()),
		}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		logger.Error().Err(err).Msg("tool result not serializable")

		return Message{
			Role:       "tool",
			ToolCallID: callID,
			Content:    fmt.Sprintf(`{"error":%q}`, err.Error()),
		}
	}

	logger.Debug().Msg("tool call ok")

	return Message{Role: "tool", ToolCallID: callID, Content: string(payload)}
}

func (a *Agent) toolSpecs() []ToolSpec {
	if len(a.tools) == 0 {
		return nil
	}

	specs := make([]ToolSpec, 0, len(a.tools))
	for _, t := range a.tools {
		specs = append(specs, ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}

	return specs
}
