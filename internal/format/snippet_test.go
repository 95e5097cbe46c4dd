package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hal9000y/research-mail/internal/format"
)

func TestCleanSnippet(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Go is an open source programming language",
			expected: "Go is an open source programming language",
		},
		{
			name:     "strips highlight tags",
			input:    "<strong>Go</strong> is an open source <strong>programming</strong> language",
			expected: "Go is an open source programming language",
		},
		{
			name:     "decodes entities",
			input:    "Tips &amp; tricks for Go &lt;generics&gt;",
			expected: "Tips & tricks for Go <generics>",
		},
		{
			name:     "collapses whitespace",
			input:    "spread \n across   lines",
			expected: "spread across lines",
		},
		{
			name:     "unclosed element tolerated",
			input:    "truncated <strong>match",
			expected: "truncated match",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, format.CleanSnippet(tc.input))
		})
	}
}
