package agentrt

import "sync"

// Usage aggregates model accounting across an entire call tree. It is
// owned by the top-level run and passed by pointer into every nested
// agent call; delegating without forwarding the same pointer fractures
// accounting and is rejected by Agent.Run.
type Usage struct {
	mu           sync.Mutex
	requests     int
	inputTokens  int
	outputTokens int
}

// TokenUsage is a single model response's accounting.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add records one model request's token usage.
func (u *Usage) Add(t TokenUsage) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.requests++
	u.inputTokens += t.InputTokens
	u.outputTokens += t.OutputTokens
}

// UsageSnapshot is a point-in-time copy of the accumulated counters.
type UsageSnapshot struct {
	Requests     int `json:"requests"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Snapshot returns a copy of the current totals.
func (u *Usage) Snapshot() UsageSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	return UsageSnapshot{
		Requests:     u.requests,
		InputTokens:  u.inputTokens,
		OutputTokens: u.outputTokens,
	}
}
