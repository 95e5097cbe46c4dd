package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/research-mail/internal/fault"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected fault.Kind
	}{
		{name: "invalid", err: fault.Invalidf("query cannot be empty"), expected: fault.KindInvalidArgument},
		{name: "auth", err: fault.Authf("invalid API key"), expected: fault.KindAuth},
		{name: "rate-limited", err: fault.RateLimitedf("rate limit exceeded"), expected: fault.KindRateLimited},
		{name: "upstream", err: fault.Upstreamf(nil, "status 500"), expected: fault.KindUpstream},
		{name: "transport", err: fault.Transportf(errors.New("dial tcp"), "request failed"), expected: fault.KindTransport},
		{name: "config", err: fault.Configf("credentials not found at ./creds.json"), expected: fault.KindConfig},
		{name: "plain", err: errors.New("boring"), expected: fault.KindUnknown},
		{name: "nil-ish wrapped", err: fmt.Errorf("outer: %w", fault.Authf("inner")), expected: fault.KindAuth},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, fault.KindOf(tc.err))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fault.Transportf(cause, "request failed")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "request failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("search_web: %w", fault.RateLimitedf("rate limit exceeded, check quota"))

	assert.True(t, fault.IsKind(err, fault.KindRateLimited))
	assert.False(t, fault.IsKind(err, fault.KindAuth))
}
