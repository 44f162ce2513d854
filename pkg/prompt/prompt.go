// Package prompt assembles the message list sent to the completion provider.
package prompt

import (
	"fmt"

	"github.com/barekit/concierge/pkg/llm"
	"github.com/barekit/concierge/pkg/store"
)

// preambleTemplate constrains the model to the embedding site's content. The
// page content is inserted verbatim.
const preambleTemplate = `You are the official assistant of the following website.

SITE CONTENT:
%s

STRICT RULES:
- You work ONLY for this site
- You do NOT present yourself as a general-purpose AI
- You answer only with information from the site content above
- If an information is not present, say so clearly
- Never guess`

// Build assembles the completion payload: an optional system preamble
// embedding the page content, followed by the full conversation history in
// order. No truncation or summarization is applied; history growth is
// bounded only by the conversation itself.
func Build(pageContent string, history []store.Message) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)

	if pageContent != "" {
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: fmt.Sprintf(preambleTemplate, pageContent),
		})
	}

	for _, m := range history {
		messages = append(messages, llm.Message{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return messages
}
