package mcptool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/research-mail/internal/brave"
	"github.com/hal9000y/research-mail/internal/research"
)

type SummarizeResearchRequest struct {
	SearchResults []SearchResult `json:"search_results" jsonschema:"search results to condense"`
	Topic         string         `json:"topic" jsonschema:"the research topic"`
	FocusAreas    []string       `json:"focus_areas,omitempty" jsonschema:"optional areas to emphasize"`
}

type SummarizeResearchResponse struct {
	Summary research.Summary `json:"summary" jsonschema:"structured research summary"`
}

func NewSummarizeResearch() *SummarizeResearch {
	return &SummarizeResearch{}
}

type SummarizeResearch struct{}

func (t *SummarizeResearch) SummarizeResearch(
	_ context.Context,
	req *mcp.CallToolRequest,
	input SummarizeResearchRequest,
) (*mcp.CallToolResult, SummarizeResearchResponse, error) {
	results := make([]brave.Result, 0, len(input.SearchResults))
	for _, r := range input.SearchResults {
		results = append(results, brave.Result{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Score:       r.Score,
		})
	}

	summary := research.Summarize(results, input.Topic, input.FocusAreas)

	return nil, SummarizeResearchResponse{Summary: summary}, nil
}
