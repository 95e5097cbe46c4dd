// Package brave implements a client for the Brave Search web API.
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hal9000y/research-mail/internal/fault"
	"github.com/hal9000y/research-mail/internal/format"
)

// DefaultBaseURL is the production Brave Search endpoint.
const DefaultBaseURL = "https://api.search.brave.com"

const searchPath = "/res/v1/web/search"

// Brave only accepts count values in [minCount, maxCount]; out-of-range
// input is clamped rather than rejected.
const (
	minCount = 1
	maxCount = 20
)

const requestTimeout = 30 * time.Second

// Result is a single normalized search result. Score is assigned by rank
// position: the first result scores 1.0, each following one 0.05 less,
// floored at 0.1.
type Result struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Client calls the Brave Search API. The zero value is not usable; use NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, primarily for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a search client with a 30 second per-call timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// braveResponse mirrors the provider's nested payload shape.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search issues one web search and returns normalized results.
//
// Inputs are validated before any network call so invalid requests never
// spend quota. count is clamped into [1,20]. An empty result list is a
// valid outcome, not an error.
func (c *Client) Search(ctx context.Context, apiKey, query string, count, offset int) ([]Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fault.Invalidf("Brave API key is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, fault.Invalidf("query cannot be empty")
	}

	count = clampCount(count)

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext failed: %w", err)
	}
	req.Header.Set("X-Subscription-Token", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fault.Transportf(err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fault.RateLimitedf("Brave API rate limit exceeded, check your monthly quota at brave.com/search/api/")
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fault.Authf("invalid Brave API key, verify it at brave.com/search/api/")
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fault.Upstreamf(nil, "Brave API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fault.Upstreamf(err, "Brave API returned malformed JSON")
	}

	results := make([]Result, 0, len(payload.Web.Results))
	for idx, r := range payload.Web.Results {
		results = append(results, Result{
			Title:       r.Title,
			URL:         r.URL,
			Description: format.CleanSnippet(r.Description),
			Score:       positionScore(idx),
		})
	}

	return results, nil
}

func clampCount(count int) int {
	if count < minCount {
		return minCount
	}
	if count > maxCount {
		return maxCount
	}
	return count
}

func positionScore(idx int) float64 {
	score := 1.0 - float64(idx)*0.05
	if score < 0.1 {
		return 0.1
	}
	return score
}
