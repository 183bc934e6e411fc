// Package driving provides interfaces for application entry points
// (primary/inbound ports): the CLI, the chat TUI, and the MCP server all
// depend on these rather than on concrete services.
package driving
