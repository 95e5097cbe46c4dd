package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/hal9000y/research-mail/internal/agentrt"
)

// Runner is the entry point of a subordinate agent. *agentrt.Agent
// satisfies it.
type Runner interface {
	Run(ctx context.Context, prompt string, deps any, usage *agentrt.Usage) (*agentrt.RunResult, error)
}

// DelegateTool hands email composition to the subordinate drafting
// agent (agent-as-tool). The subordinate runs with a narrowed
// dependency bundle and the caller's own usage counter, so accounting
// stays aggregated across the whole call tree.
type DelegateTool struct {
	emailAgent Runner
}

// NewDelegateTool creates the delegation tool around the email agent.
func NewDelegateTool(emailAgent Runner) *DelegateTool {
	return &DelegateTool{emailAgent: emailAgent}
}

// Name implements agentrt.Tool.
func (t *DelegateTool) Name() string { return "create_email_draft" }

// Description implements agentrt.Tool.
func (t *DelegateTool) Description() string {
	return "Delegate email composition to a specialized drafting agent that creates a Gmail draft from the given context and optional research summary."
}

// Parameters implements agentrt.Tool.
func (t *DelegateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recipient_email":  map[string]any{"type": "string", "description": "Email address of the recipient"},
			"subject":          map[string]any{"type": "string", "description": "Email subject line"},
			"context":          map[string]any{"type": "string", "description": "Context for the email"},
			"research_summary": map[string]any{"type": "string", "description": "Optional research findings to include"},
		},
		"required": []string{"recipient_email", "subject", "context"},
	}
}

// Call invokes the subordinate agent. Its failures are normalized into
// the result payload so the research agent's conversation continues;
// they are never re-raised.
func (t *DelegateTool) Call(tc *agentrt.ToolContext, args map[string]any) (any, error) {
	deps, ok := tc.Deps().(Deps)
	if !ok {
		return nil, fmt.Errorf("research.Deps required, got %T", tc.Deps())
	}

	recipient := stringArg(args, "recipient_email")
	subject := stringArg(args, "subject")
	emailContext := stringArg(args, "context")
	summary := stringArg(args, "research_summary")

	prompt := buildEmailPrompt(recipient, subject, emailContext, summary)

	logger := tc.Logger()
	logger.Info().Str("recipient", recipient).Msg("delegating to email agent")

	// The subordinate must account into the caller's usage counter:
	// passing anything but tc.Usage() here forks accounting.
	result, err := t.emailAgent.Run(tc.Context(), prompt, deps.EmailDeps(), tc.Usage())
	if err != nil {
		logger.Warn().Err(err).Msg("email agent failed")

		return map[string]any{
			"success": false,
			"error":   err.Error(),
			"message": fmt.Sprintf("Failed to create email draft: %s", err.Error()),
		}, nil
	}

	return map[string]any{
		"success":        true,
		"agent_response": result.Output,
		"recipient":      recipient,
		"subject":        subject,
		"context":        emailContext,
	}, nil
}

func buildEmailPrompt(recipient, subject, emailContext, summary string) string {
	if summary == "" {
		return fmt.Sprintf(`Create a professional email to %s with subject %q.

Context: %s`, recipient, subject, emailContext)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a professional email to %s with subject %q.\n\n", recipient, subject)
	fmt.Fprintf(&b, "Context: %s\n\n", emailContext)
	fmt.Fprintf(&b, "Research Summary:\n%s\n\n", summary)
	b.WriteString(`Please create a well-structured email that:
1. Has an appropriate greeting
2. Provides clear context
3. Summarizes key research findings professionally
4. Includes actionable next steps if appropriate
5. Ends with a professional closing

Maintain a professional yet friendly tone.`)

	return b.String()
}
