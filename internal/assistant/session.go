// Package assistant implements the owner-facing chat endpoint: a
// per-request conversation session, keyword-routed database context and
// an opaque chat-completion client with canned fallbacks.
package assistant

// The session is an explicit value rebuilt from the client-supplied
// history on every request. No conversation state lives in the process,
// so concurrent owners can never bleed turns into each other and a
// restart loses nothing.

const (
	// maxHistoryTurns bounds how much client-supplied history is
	// replayed into the model prompt.
	maxHistoryTurns = 20

	systemPreamble = "You are a helpful assistant for a newspaper delivery business. " +
		"You answer questions about the owner's employees, customers, newspapers, " +
		"subscriptions, payments and deliveries using the business data provided. " +
		"Keep answers short and factual. If the data does not contain the answer, say so."
)

// Turn is one prior exchange supplied by the client. Role is "user" or
// "assistant"; anything else is dropped when the session is built.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message is a single chat-completion message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the full prompt for one request: the fixed system
// preamble, optional business context, the bounded history and the new
// user message.
type Session struct {
	messages []Message
}

// NewSession builds a session from the supplied history and the new
// user message. Only the most recent maxHistoryTurns valid turns are
// kept; dbContext, when non-empty, is injected as a second system
// message so the model treats it as ground truth rather than dialogue.
func NewSession(history []Turn, dbContext, userMessage string) *Session {
	valid := make([]Turn, 0, len(history))
	for _, t := range history {
		if t.Role == "user" || t.Role == "assistant" {
			valid = append(valid, t)
		}
	}
	if len(valid) > maxHistoryTurns {
		valid = valid[len(valid)-maxHistoryTurns:]
	}

	msgs := make([]Message, 0, len(valid)+3)
	msgs = append(msgs, Message{Role: "system", Content: systemPreamble})
	if dbContext != "" {
		msgs = append(msgs, Message{Role: "system", Content: "Current business data:\n" + dbContext})
	}
	for _, t := range valid {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, Message{Role: "user", Content: userMessage})
	return &Session{messages: msgs}
}

// Messages returns the prompt in wire order.
func (s *Session) Messages() []Message { return s.messages }
