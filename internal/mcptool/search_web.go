package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/research-mail/internal/brave"
)

type SearchWebRequest struct {
	Query      string `json:"query" jsonschema:"the web search query"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"max results to return, 1-20"`
}

type SearchWebResponse struct {
	Results      []SearchResult `json:"results" jsonschema:"scored search results"`
	TotalResults int            `json:"total_results" jsonschema:"number of results returned"`
}

type SearchResult struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type searchWebSvc interface {
	Search(ctx context.Context, apiKey, query string, count, offset int) ([]brave.Result, error)
}

func NewSearchWeb(svc searchWebSvc, apiKey string) *SearchWeb {
	return &SearchWeb{
		svc:    svc,
		apiKey: apiKey,
	}
}

type SearchWeb struct {
	svc    searchWebSvc
	apiKey string
}

func (t *SearchWeb) SearchWeb(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchWebRequest,
) (*mcp.CallToolResult, SearchWebResponse, error) {
	if input.MaxResults == 0 {
		input.MaxResults = 10
	}

	found, err := t.svc.Search(ctx, t.apiKey, input.Query, input.MaxResults, 0)
	if err != nil {
		return nil, SearchWebResponse{}, fmt.Errorf("svc.Search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(found))
	for _, r := range found {
		results = append(results, SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Score:       r.Score,
		})
	}

	return nil, SearchWebResponse{
		Results:      results,
		TotalResults: len(results),
	}, nil
}
