// Package email implements the subordinate email-drafting agent.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hal9000y/research-mail/internal/agentrt"
	"github.com/hal9000y/research-mail/internal/gmail"
)

// Deps is the capability bundle for the email agent. It deliberately
// carries no search credential: the drafting agent cannot search.
type Deps struct {
	GmailCredentialsPath string
	GmailTokenPath       string
	SessionID            string
}

// DraftService creates Gmail drafts. *gmail.DraftClient satisfies it.
type DraftService interface {
	CreateDraft(ctx context.Context, credentialsPath, tokenPath string, req gmail.DraftRequest) (gmail.DraftResult, error)
}

const systemPrompt = `You are an Email Draft Specialist focused on creating professional, well-structured Gmail drafts.

Every email should have an appropriate greeting, a clear opening that establishes context, a well-organized body, and a professional closing with next steps when appropriate. Adapt tone to the context: formal for business or unknown recipients, professional but friendly for regular contacts. When given a research summary, integrate the findings naturally and reference sources where it helps.

Use the create_gmail_draft tool to save the composed email as a draft. You are creating drafts, not sending email; users review before sending.`

// NewAgent builds the email-drafting agent around the given provider
// and draft service.
func NewAgent(provider agentrt.Provider, model string, svc DraftService, logger zerolog.Logger) (*agentrt.Agent, error) {
	return agentrt.New(agentrt.Config{
		Name:         "email-agent",
		Provider:     provider,
		Model:        model,
		SystemPrompt: systemPrompt,
		Tools:        []agentrt.Tool{NewCreateDraftTool(svc)},
		Logger:       logger,
	})
}

// CreateDraftTool exposes Gmail draft creation to the email agent.
type CreateDraftTool struct {
	svc DraftService
}

// NewCreateDraftTool creates the tool.
func NewCreateDraftTool(svc DraftService) *CreateDraftTool {
	return &CreateDraftTool{svc: svc}
}

// Name implements agentrt.Tool.
func (t *CreateDraftTool) Name() string { return "create_gmail_draft" }

// Description implements agentrt.Tool.
func (t *CreateDraftTool) Description() string {
	return "Create a Gmail draft with the provided recipient, subject and complete body. The draft is saved to the user's account for review before sending."
}

// Parameters implements agentrt.Tool.
func (t *CreateDraftTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recipient": map[string]any{"type": "string", "description": "Recipient email address"},
			"subject":   map[string]any{"type": "string", "description": "Email subject line"},
			"body":      map[string]any{"type": "string", "description": "Complete email body content"},
		},
		"required": []string{"recipient", "subject", "body"},
	}
}

// Call creates the draft. Failures are normalized into the result
// payload so the agent loop can keep the conversation going.
func (t *CreateDraftTool) Call(tc *agentrt.ToolContext, args map[string]any) (any, error) {
	deps, ok := tc.Deps().(Deps)
	if !ok {
		return nil, fmt.Errorf("email.Deps required, got %T", tc.Deps())
	}

	req := gmail.DraftRequest{
		Recipient: stringArg(args, "recipient"),
		Subject:   stringArg(args, "subject"),
		Body:      stringArg(args, "body"),
	}

	result, err := t.svc.CreateDraft(tc.Context(), deps.GmailCredentialsPath, deps.GmailTokenPath, req)
	if err != nil {
		logger := tc.Logger()
		logger.Warn().Err(err).Str("recipient", req.Recipient).Msg("draft creation failed")

		return map[string]any{
			"success": false,
			"error":   err.Error(),
			"message": fmt.Sprintf("Failed to create Gmail draft: %s", err.Error()),
		}, nil
	}

	logger := tc.Logger()
	logger.Info().Str("draft_id", result.DraftID).Msg("draft created")

	return map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("Gmail draft created successfully for %s", req.Recipient),
		"draft_id":   result.DraftID,
		"message_id": result.MessageID,
		"thread_id":  result.ThreadID,
	}, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
