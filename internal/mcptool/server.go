// Package mcptool exposes the research-mail capabilities as MCP tools
// so external MCP clients can use them without the agent loop.
package mcptool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config carries the credentials the tool handlers need per call.
type Config struct {
	BraveAPIKey          string
	GmailCredentialsPath string
	GmailTokenPath       string
}

// NewServer creates an MCP server with research and drafting tools.
func NewServer(search searchWebSvc, drafts createDraftSvc, cfg Config) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "research-mail", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_web",
		Description: "Search the web via Brave Search and return scored results",
	}, NewSearchWeb(search, cfg.BraveAPIKey).SearchWeb)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_research",
		Description: "Condense search results into a structured research summary",
	}, NewSummarizeResearch().SummarizeResearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_draft",
		Description: "Create a Gmail draft for review before sending",
	}, NewCreateDraft(drafts, cfg.GmailCredentialsPath, cfg.GmailTokenPath).CreateDraft)

	return server
}
