package research

import (
	"context"
	"fmt"

	"github.com/hal9000y/research-mail/internal/agentrt"
	"github.com/hal9000y/research-mail/internal/brave"
)

const defaultSearchResults = 10

// Searcher performs web searches. *brave.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, apiKey, query string, count, offset int) ([]brave.Result, error)
}

// SearchTool exposes web search to the research agent.
type SearchTool struct {
	searcher Searcher
}

// NewSearchTool creates the tool.
func NewSearchTool(searcher Searcher) *SearchTool {
	return &SearchTool{searcher: searcher}
}

// Name implements agentrt.Tool.
func (t *SearchTool) Name() string { return "search_web" }

// Description implements agentrt.Tool.
func (t *SearchTool) Description() string {
	return "Search the web for current information on a topic. Returns results with titles, URLs, descriptions and relevance scores."
}

// Parameters implements agentrt.Tool.
func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       map[string]any{"type": "string", "description": "Search query string"},
			"max_results": map[string]any{"type": "integer", "description": "Maximum number of results (1-20)"},
		},
		"required": []string{"query"},
	}
}

// Call performs the search. The tool-calling loop has no error channel
// back to the model, so failures are reported as a one-element sentinel
// result the model can read, never as a raised error.
func (t *SearchTool) Call(tc *agentrt.ToolContext, args map[string]any) (any, error) {
	deps, ok := tc.Deps().(Deps)
	if !ok {
		return nil, fmt.Errorf("research.Deps required, got %T", tc.Deps())
	}

	query := stringArg(args, "query")
	count := intArg(args, "max_results", defaultSearchResults)

	results, err := t.searcher.Search(tc.Context(), deps.BraveAPIKey, query, count, 0)
	if err != nil {
		logger := tc.Logger()
		logger.Warn().Err(err).Str("query", query).Msg("search failed")

		return []brave.Result{{
			Title:       "Search Error",
			URL:         "",
			Description: fmt.Sprintf("Failed to search: %s", err.Error()),
			Score:       0.0,
		}}, nil
	}

	logger := tc.Logger()
	logger.Debug().Str("query", query).Int("results", len(results)).Msg("search ok")

	return results, nil
}

// SummarizeTool exposes research synthesis to the research agent.
type SummarizeTool struct{}

// NewSummarizeTool creates the tool.
func NewSummarizeTool() *SummarizeTool { return &SummarizeTool{} }

// Name implements agentrt.Tool.
func (t *SummarizeTool) Name() string { return "summarize_research" }

// Description implements agentrt.Tool.
func (t *SummarizeTool) Description() string {
	return "Summarize search results into a structured research summary with key findings and sources."
}

// Parameters implements agentrt.Tool.
func (t *SummarizeTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"search_results": map[string]any{
				"type":        "array",
				"description": "Search results to summarize",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":       map[string]any{"type": "string"},
						"url":         map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"score":       map[string]any{"type": "number"},
					},
				},
			},
			"topic":       map[string]any{"type": "string", "description": "Research topic"},
			"focus_areas": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Optional specific areas to focus on"},
		},
		"required": []string{"search_results", "topic"},
	}
}

// Call runs the pure summarization. Malformed records are tolerated
// field by field.
func (t *SummarizeTool) Call(tc *agentrt.ToolContext, args map[string]any) (any, error) {
	topic := stringArg(args, "topic")

	rawResults, _ := args["search_results"].([]any)
	results := make([]brave.Result, 0, len(rawResults))
	for _, raw := range rawResults {
		m, ok := raw.(map[string]any)
		if !ok {
			results = append(results, brave.Result{})
			continue
		}
		results = append(results, resultFromMap(m))
	}

	var focusAreas []string
	if rawFocus, ok := args["focus_areas"].([]any); ok {
		for _, f := range rawFocus {
			if s, ok := f.(string); ok {
				focusAreas = append(focusAreas, s)
			}
		}
	}

	logger := tc.Logger()
	logger.Debug().Str("topic", topic).Int("results", len(results)).Msg("summarizing")

	return Summarize(results, topic, focusAreas), nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string, fallback int) int {
	// JSON numbers decode as float64.
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	if i, ok := args[key].(int); ok {
		return i
	}
	return fallback
}
