// Package research implements the primary research agent: web search,
// research synthesis, and delegation to the email-drafting agent.
package research

import "github.com/hal9000y/research-mail/internal/email"

// Deps is the capability bundle for the research agent. It is supplied
// by the hosting process and read-only for the agent and its tools.
type Deps struct {
	BraveAPIKey          string
	GmailCredentialsPath string
	GmailTokenPath       string
	SessionID            string
}

// EmailDeps narrows the bundle for the subordinate drafting agent. The
// search key is deliberately dropped: least privilege for the delegate.
func (d Deps) EmailDeps() email.Deps {
	return email.Deps{
		GmailCredentialsPath: d.GmailCredentialsPath,
		GmailTokenPath:       d.GmailTokenPath,
		SessionID:            d.SessionID,
	}
}
