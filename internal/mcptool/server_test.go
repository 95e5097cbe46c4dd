package mcptool_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/research-mail/internal/brave"
	"github.com/hal9000y/research-mail/internal/fault"
	"github.com/hal9000y/research-mail/internal/gmail"
	"github.com/hal9000y/research-mail/internal/mcptool"
)

type searchSvcMock struct {
	SearchFunc func(ctx context.Context, apiKey, query string, count, offset int) ([]brave.Result, error)
}

func (m *searchSvcMock) Search(ctx context.Context, apiKey, query string, count, offset int) ([]brave.Result, error) {
	return m.SearchFunc(ctx, apiKey, query, count, offset)
}

type draftSvcMock struct {
	CreateDraftFunc func(ctx context.Context, credentialsPath, tokenPath string, req gmail.DraftRequest) (gmail.DraftResult, error)
}

func (m *draftSvcMock) CreateDraft(ctx context.Context, credentialsPath, tokenPath string, req gmail.DraftRequest) (gmail.DraftResult, error) {
	return m.CreateDraftFunc(ctx, credentialsPath, tokenPath, req)
}

func newSession(t *testing.T, search *searchSvcMock, drafts *draftSvcMock) *mcp.ClientSession {
	t.Helper()

	server := mcptool.NewServer(search, drafts, mcptool.Config{
		BraveAPIKey:          "brave-key",
		GmailCredentialsPath: "/creds.json",
		GmailTokenPath:       "/token.json",
	})
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ctx := context.Background()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSession.Close() })

	return clientSession
}

func TestSearchWeb(t *testing.T) {
	var gotKey, gotQuery string
	var gotCount int

	search := &searchSvcMock{
		SearchFunc: func(_ context.Context, apiKey, query string, count, _ int) ([]brave.Result, error) {
			gotKey, gotQuery, gotCount = apiKey, query, count
			if query == "fails" {
				return nil, fault.RateLimitedf("Brave API rate limit exceeded")
			}
			return []brave.Result{
				{Title: "First", URL: "https://a.example", Description: "alpha", Score: 1.0},
				{Title: "Second", URL: "https://b.example", Description: "beta", Score: 0.95},
			}, nil
		},
	}

	session := newSession(t, search, &draftSvcMock{})
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search_web",
		Arguments: mcptool.SearchWebRequest{Query: "golang"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "brave-key", gotKey)
	assert.Equal(t, "golang", gotQuery)
	assert.Equal(t, 10, gotCount, "max_results defaults to 10")

	var response mcptool.SearchWebResponse
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &response))
	assert.Equal(t, 2, response.TotalResults)
	assert.Equal(t, mcptool.SearchResult{Title: "First", URL: "https://a.example", Description: "alpha", Score: 1.0}, response.Results[0])

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "search_web",
		Arguments: mcptool.SearchWebRequest{Query: "fails"},
	})
	require.NoError(t, err)
	require.True(t, result.IsError, "Result should indicate error")
	assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "rate limit")
}

func TestSummarizeResearch(t *testing.T) {
	session := newSession(t, &searchSvcMock{}, &draftSvcMock{})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "summarize_research",
		Arguments: mcptool.SummarizeResearchRequest{
			Topic: "Go Generics",
			SearchResults: []mcptool.SearchResult{
				{Title: "Intro", URL: "https://a.example", Description: "first finding"},
			},
			FocusAreas: []string{"performance"},
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response mcptool.SummarizeResearchResponse
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &response))

	assert.Equal(t, "Go Generics", response.Summary.Topic)
	assert.Equal(t, 1, response.Summary.ResultCount)
	assert.Equal(t, []string{"first finding"}, response.Summary.KeyFindings)
	assert.Contains(t, response.Summary.SummaryText, "Focus Areas: performance")
}

func TestCreateDraft(t *testing.T) {
	var gotCreds, gotToken string
	var gotReq gmail.DraftRequest

	drafts := &draftSvcMock{
		CreateDraftFunc: func(_ context.Context, credentialsPath, tokenPath string, req gmail.DraftRequest) (gmail.DraftResult, error) {
			gotCreds, gotToken, gotReq = credentialsPath, tokenPath, req
			if req.Recipient == "reject@example.com" {
				return gmail.DraftResult{}, fmt.Errorf("simulated error: %s", req.Recipient)
			}
			return gmail.DraftResult{DraftID: "d-1", MessageID: "m-1", ThreadID: "t-1"}, nil
		},
	}

	session := newSession(t, &searchSvcMock{}, drafts)
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "create_draft",
		Arguments: mcptool.CreateDraftRequest{
			Recipient: "dana@example.com",
			Subject:   "Findings",
			Body:      "Hello",
			CC:        []string{"cc@example.com"},
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "/creds.json", gotCreds)
	assert.Equal(t, "/token.json", gotToken)
	assert.Equal(t, "dana@example.com", gotReq.Recipient)
	assert.Equal(t, []string{"cc@example.com"}, gotReq.CC)

	var response mcptool.CreateDraftResponse
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &response))
	assert.Equal(t, mcptool.CreateDraftResponse{DraftID: "d-1", MessageID: "m-1", ThreadID: "t-1"}, response)

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name: "create_draft",
		Arguments: mcptool.CreateDraftRequest{
			Recipient: "reject@example.com",
			Subject:   "s",
			Body:      "b",
		},
	})
	require.NoError(t, err)
	require.True(t, result.IsError, "Result should indicate error")
	assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "simulated error: reject@example.com")
}
