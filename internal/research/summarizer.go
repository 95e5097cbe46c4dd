package research

import (
	"fmt"
	"strings"

	"github.com/hal9000y/research-mail/internal/brave"
)

// Summarize keeps at most this many findings and sources.
const summaryLimit = 5

// Summary is a structured digest of search results.
type Summary struct {
	Topic       string   `json:"topic"`
	KeyFindings []string `json:"key_findings"`
	Sources     []string `json:"sources"`
	SummaryText string   `json:"summary_text"`
	ResultCount int      `json:"result_count"`
}

// Summarize derives a Summary from search results. Pure transformation:
// no I/O and no failure modes. Findings are the first five non-empty
// descriptions in input order; sources are "title: url" pairs for the
// first five entries with a URL. ResultCount reflects the full input,
// not the truncated lists.
func Summarize(results []brave.Result, topic string, focusAreas []string) Summary {
	findings := make([]string, 0, summaryLimit)
	sources := make([]string, 0, summaryLimit)

	for _, r := range results {
		if r.Description != "" && len(findings) < summaryLimit {
			findings = append(findings, r.Description)
		}
		if r.URL != "" && len(sources) < summaryLimit {
			sources = append(sources, fmt.Sprintf("%s: %s", r.Title, r.URL))
		}
	}

	parts := []string{
		fmt.Sprintf("Research Summary on: %s", topic),
		"",
		"Key Findings:",
	}
	for i, finding := range findings {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, finding))
	}

	parts = append(parts, "", "Sources:")
	for i, source := range sources {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, source))
	}

	if len(focusAreas) > 0 {
		parts = append(parts, "", fmt.Sprintf("Focus Areas: %s", strings.Join(focusAreas, ", ")))
	}

	return Summary{
		Topic:       topic,
		KeyFindings: findings,
		Sources:     sources,
		SummaryText: strings.Join(parts, "\n"),
		ResultCount: len(results),
	}
}

// resultFromMap converts a loosely-typed record into a search result.
// Missing or mistyped fields become zero values rather than errors.
func resultFromMap(m map[string]any) brave.Result {
	r := brave.Result{}
	if s, ok := m["title"].(string); ok {
		r.Title = s
	}
	if s, ok := m["url"].(string); ok {
		r.URL = s
	}
	if s, ok := m["description"].(string); ok {
		r.Description = s
	}
	if f, ok := m["score"].(float64); ok {
		r.Score = f
	}

	return r
}
