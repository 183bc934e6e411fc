package mcp

import (
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session manages sessions and document membership.
	Session driving.SessionService

	// Chat answers questions against a session's index.
	Chat driving.ChatService

	// Summary produces structured summaries.
	Summary driving.SummaryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSessionService
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	// Summary is optional: the summarise tool is only registered when set.
	return nil
}
