package research

import (
	"github.com/rs/zerolog"

	"github.com/hal9000y/research-mail/internal/agentrt"
)

const systemPrompt = `You are a Research Assistant with web search and email drafting capabilities. You help users research topics thoroughly and optionally turn findings into professional email drafts.

Use search_web to find current information; refine the query and search again when initial results are thin. Use summarize_research after gathering results to produce a structured summary with key findings and sources. Use create_email_draft when the user asks for an email based on your research; pass clear context and the research summary so the drafting agent can compose a well-informed message.

Always cite sources by title or URL. Be honest about limitations when reliable information cannot be found. Keep a clear, professional tone.`

// NewAgent builds the research agent with its full tool set: search,
// summarization, and delegation to the email-drafting agent.
func NewAgent(provider agentrt.Provider, model string, searcher Searcher, emailAgent Runner, logger zerolog.Logger) (*agentrt.Agent, error) {
	return agentrt.New(agentrt.Config{
		Name:         "research-agent",
		Provider:     provider,
		Model:        model,
		SystemPrompt: systemPrompt,
		Tools: []agentrt.Tool{
			NewSearchTool(searcher),
			NewSummarizeTool(),
			NewDelegateTool(emailAgent),
		},
		Logger: logger,
	})
}
