package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	SessionID   string   `json:"session_id" jsonschema:"the session whose documents should answer the question"`
	ThreadID    string   `json:"thread_id,omitempty" jsonschema:"conversation thread to continue (a new thread is created when omitted)"`
	Question    string   `json:"question" jsonschema:"the question to answer from the session's documents"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict retrieval to these document IDs"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer        string   `json:"answer"`
	ThreadID      string   `json:"thread_id"`
	CitedChunkIDs []string `json:"cited_chunk_ids,omitempty"`
	Refused       bool     `json:"refused,omitempty"`
}

// SummariseInput is the input schema for the summarise tool.
type SummariseInput struct {
	SessionID  string `json:"session_id" jsonschema:"the session to summarise"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"summarise a single document instead of the whole session"`
}

// SummariseOutput is the output schema for the summarise tool.
type SummariseOutput struct {
	Mode string `json:"mode"`

	MainTopic         string   `json:"main_topic,omitempty"`
	KeyPoints         []string `json:"key_points,omitempty"`
	SupportingDetails []string `json:"supporting_details,omitempty"`
	AdditionalInfo    []string `json:"additional_info,omitempty"`

	Overview        string   `json:"overview,omitempty"`
	KeyFindings     []string `json:"key_findings,omitempty"`
	CriticalDetails []string `json:"critical_details,omitempty"`
	Conclusions     []string `json:"conclusions,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from a session's indexed documents, with chunk citations",
	}, s.handleAsk)

	if s.ports.Summary != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "summarise",
			Description: "Produce a structured summary of a session or a single document",
		}, s.handleSummarise)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	threadID := input.ThreadID
	if threadID == "" {
		thread, err := s.ports.Chat.CreateThread(ctx, input.SessionID)
		if err != nil {
			return nil, AskOutput{}, err
		}
		threadID = thread.ID
	}

	result, err := s.ports.Chat.Answer(ctx, input.SessionID, threadID, input.Question, input.DocumentIDs...)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:        result.Text,
		ThreadID:      threadID,
		CitedChunkIDs: result.CitedChunkIDs,
		Refused:       result.Refused,
	}, nil
}

// handleSummarise handles the summarise tool invocation.
func (s *Server) handleSummarise(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummariseInput,
) (*mcp.CallToolResult, SummariseOutput, error) {
	summary, err := s.summarise(ctx, input)
	if err != nil {
		return nil, SummariseOutput{}, err
	}

	return nil, SummariseOutput{
		Mode:              string(summary.Mode),
		MainTopic:         summary.MainTopic,
		KeyPoints:         summary.KeyPoints,
		SupportingDetails: summary.SupportingDetails,
		AdditionalInfo:    summary.AdditionalInfo,
		Overview:          summary.Overview,
		KeyFindings:       summary.KeyFindings,
		CriticalDetails:   summary.CriticalDetails,
		Conclusions:       summary.Conclusions,
	}, nil
}

func (s *Server) summarise(ctx context.Context, input SummariseInput) (*domain.Summary, error) {
	if input.DocumentID != "" {
		return s.ports.Summary.SummariseDocument(ctx, input.SessionID, input.DocumentID)
	}
	return s.ports.Summary.SummariseSession(ctx, input.SessionID)
}
