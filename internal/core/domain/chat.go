package domain

import "time"

// Role identifies the author of a chat message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatThread is an independent conversation within a session. All threads in
// a session read the same SessionIndex; histories never mix.
type ChatThread struct {
	// ID is the unique thread identifier.
	ID string

	// SessionID links to the owning session.
	SessionID string

	// CreatedAt is when the thread was created.
	CreatedAt time.Time
}

// Message is one entry in a thread's ordered history.
type Message struct {
	// Role is who authored the message.
	Role Role

	// Content is the message text.
	Content string

	// CitedChunkIDs lists the chunks an assistant message is grounded on.
	// Always a subset of the chunks retrieved for that call; empty for
	// user messages and refusals.
	CitedChunkIDs []string

	// CreatedAt is when the message was appended.
	CreatedAt time.Time
}

// AnswerResult is the outcome of answering one question on a thread.
type AnswerResult struct {
	// Text is the generated (or refusal) answer.
	Text string

	// CitedChunkIDs lists the retrieved chunks that support the answer.
	CitedChunkIDs []string

	// Refused is true when the sensitive-question guard short-circuited
	// the call. A normal UX path, not an error.
	Refused bool
}
