package email_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/research-mail/internal/agentrt"
	"github.com/hal9000y/research-mail/internal/email"
	"github.com/hal9000y/research-mail/internal/fault"
	"github.com/hal9000y/research-mail/internal/gmail"
)

type draftSvcMock struct {
	createFunc func(ctx context.Context, credentialsPath, tokenPath string, req gmail.DraftRequest) (gmail.DraftResult, error)
	calls      []gmail.DraftRequest
}

func (m *draftSvcMock) CreateDraft(ctx context.Context, credentialsPath, tokenPath string, req gmail.DraftRequest) (gmail.DraftResult, error) {
	m.calls = append(m.calls, req)
	return m.createFunc(ctx, credentialsPath, tokenPath, req)
}

type scriptedProvider struct {
	responses []*agentrt.Response
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, _ agentrt.Request) (*agentrt.Response, error) {
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func TestCreateDraftToolSuccess(t *testing.T) {
	var gotCreds, gotToken string
	svc := &draftSvcMock{
		createFunc: func(_ context.Context, credentialsPath, tokenPath string, _ gmail.DraftRequest) (gmail.DraftResult, error) {
			gotCreds, gotToken = credentialsPath, tokenPath
			return gmail.DraftResult{DraftID: "d1", MessageID: "m1", ThreadID: "t1"}, nil
		},
	}

	provider := &scriptedProvider{responses: []*agentrt.Response{
		{ToolCalls: []agentrt.ToolCall{{
			ID:   "fc-1",
			Name: "create_gmail_draft",
			Arguments: map[string]any{
				"recipient": "jane@example.com",
				"subject":   "Findings",
				"body":      "Hello Jane",
			},
		}}},
		{Content: "Draft saved."},
	}}

	agent, err := email.NewAgent(provider, "test-model", svc, zerolog.Nop())
	require.NoError(t, err)

	deps := email.Deps{
		GmailCredentialsPath: "/creds.json",
		GmailTokenPath:       "/token.json",
		SessionID:            "s-1",
	}

	result, err := agent.Run(context.Background(), "draft an email to Jane", deps, &agentrt.Usage{})
	require.NoError(t, err)
	assert.Equal(t, "Draft saved.", result.Output)

	assert.Equal(t, "/creds.json", gotCreds)
	assert.Equal(t, "/token.json", gotToken)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, "jane@example.com", svc.calls[0].Recipient)
}

func TestCreateDraftToolNormalizesFailure(t *testing.T) {
	svc := &draftSvcMock{
		createFunc: func(context.Context, string, string, gmail.DraftRequest) (gmail.DraftResult, error) {
			return gmail.DraftResult{}, fault.Configf("Gmail credentials not found at /nope")
		},
	}

	tool := email.NewCreateDraftTool(svc)
	tc := toolContext(t, email.Deps{GmailCredentialsPath: "/nope", GmailTokenPath: "/tok"})

	result, err := tool.Call(tc, map[string]any{
		"recipient": "jane@example.com",
		"subject":   "s",
		"body":      "b",
	})
	require.NoError(t, err, "draft failures must be normalized, not raised")

	payload, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "/nope")
	assert.Contains(t, payload["message"], "Failed to create Gmail draft:")
}

func TestCreateDraftToolWrongDeps(t *testing.T) {
	tool := email.NewCreateDraftTool(&draftSvcMock{
		createFunc: func(context.Context, string, string, gmail.DraftRequest) (gmail.DraftResult, error) {
			t.Fatal("must not be called")
			return gmail.DraftResult{}, nil
		},
	})
	tc := toolContext(t, "not-deps")

	_, err := tool.Call(tc, map[string]any{})
	require.Error(t, err)
}

// toolContext builds a real ToolContext by driving a throwaway agent run,
// capturing the context the runtime hands to tools.
func toolContext(t *testing.T, deps any) *agentrt.ToolContext {
	t.Helper()

	capture := &contextCaptureTool{}
	provider := &scriptedProvider{responses: []*agentrt.Response{
		{ToolCalls: []agentrt.ToolCall{{ID: "fc-capture", Name: "capture"}}},
		{Content: "done"},
	}}

	agent, err := agentrt.New(agentrt.Config{
		Name:     "capture-agent",
		Provider: provider,
		Model:    "m",
		Tools:    []agentrt.Tool{capture},
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	_, err = agent.Run(context.Background(), "capture", deps, &agentrt.Usage{})
	require.NoError(t, err)
	require.NotNil(t, capture.tc)

	return capture.tc
}

type contextCaptureTool struct {
	tc *agentrt.ToolContext
}

func (t *contextCaptureTool) Name() string                { return "capture" }
func (t *contextCaptureTool) Description() string         { return "captures the tool context" }
func (t *contextCaptureTool) Parameters() map[string]any  { return map[string]any{"type": "object"} }
func (t *contextCaptureTool) Call(tc *agentrt.ToolContext, _ map[string]any) (any, error) {
	t.tc = tc
	return "ok", nil
}
