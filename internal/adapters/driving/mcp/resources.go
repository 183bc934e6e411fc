package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docchat resources.
	uriScheme = "docchat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing sessions.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "List of all chat sessions",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	// Template for a session's documents.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/documents",
		Name:        "session-documents",
		Description: "Documents uploaded into a specific session",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleSessionsResource returns a list of all sessions.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	sessions, err := s.ports.Session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	type sessionInfo struct {
		ID      string `json:"id"`
		State   string `json:"state"`
		Summary string `json:"summary,omitempty"`
	}

	infos := make([]sessionInfo, len(sessions))
	for i, sess := range sessions {
		infos[i] = sessionInfo{
			ID:      sess.ID,
			State:   string(sess.State),
			Summary: sess.Summary,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sessions: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentsResource returns documents for a specific session.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract sessionId from URI: docchat://sessions/{sessionId}/documents
	path := strings.TrimPrefix(req.Params.URI, uriScheme)
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[0] != "sessions" || parts[2] != "documents" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	sessionID := parts[1]

	docs, err := s.ports.Session.Documents(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		Format   string `json:"format"`
		Status   string `json:"status"`
	}

	infos := make([]docInfo, len(docs))
	for i, d := range docs {
		infos[i] = docInfo{
			ID:       d.ID,
			Filename: d.Filename,
			Format:   string(d.Format),
			Status:   string(d.Status),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
