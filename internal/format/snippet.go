// Package format provides text normalization for provider payloads.
package format

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanSnippet strips HTML markup from a search result snippet.
// Brave wraps matched query terms in <strong> tags and escapes entities;
// the agents want plain text. Malformed markup is tolerated: whatever the
// tokenizer recovers is returned, and input without markup passes through
// unchanged apart from whitespace normalization.
func CleanSnippet(snippet string) string {
	if !strings.ContainsAny(snippet, "<&") {
		return collapseWhitespace(snippet)
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(snippet))

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
		}
	}

	return collapseWhitespace(b.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
