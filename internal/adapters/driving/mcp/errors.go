// Package mcp provides an MCP (Model Context Protocol) server adapter for
// docchat. It lets AI assistants ask questions against a session's indexed
// documents and request structured summaries.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
