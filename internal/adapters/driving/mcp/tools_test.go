package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func newTestServer(t *testing.T, chat *mockChatService, summary *mockSummaryService) *Server {
	t.Helper()

	ports := &Ports{
		Session: &mockSessionService{},
		Chat:    chat,
		Summary: summary,
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with citations", func(t *testing.T) {
		chat := &mockChatService{
			result: &domain.AnswerResult{
				Text:          "Revenue grew 12%.",
				CitedChunkIDs: []string{"c1", "c2"},
			},
		}
		server := newTestServer(t, chat, nil)

		input := AskInput{SessionID: "s1", ThreadID: "t9", Question: "how did revenue do?"}
		_, output, err := server.handleAsk(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "Revenue grew 12%.", output.Answer)
		assert.Equal(t, "t9", output.ThreadID)
		assert.Equal(t, []string{"c1", "c2"}, output.CitedChunkIDs)
		assert.False(t, output.Refused)
		assert.Equal(t, "t9", chat.answeredThreadID)
	})

	t.Run("creates thread when omitted", func(t *testing.T) {
		chat := &mockChatService{
			thread: &domain.ChatThread{ID: "fresh", SessionID: "s1"},
			result: &domain.AnswerResult{Text: "ok"},
		}
		server := newTestServer(t, chat, nil)

		input := AskInput{SessionID: "s1", Question: "anything?"}
		_, output, err := server.handleAsk(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, "fresh", output.ThreadID)
		assert.Equal(t, "fresh", chat.answeredThreadID)
	})

	t.Run("passes document filter through", func(t *testing.T) {
		chat := &mockChatService{result: &domain.AnswerResult{Text: "ok"}}
		server := newTestServer(t, chat, nil)

		input := AskInput{
			SessionID:   "s1",
			ThreadID:    "t1",
			Question:    "what does the contract say?",
			DocumentIDs: []string{"d1", "d2"},
		}
		_, _, err := server.handleAsk(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, []string{"d1", "d2"}, chat.filteredDocs)
	})

	t.Run("surfaces refusals", func(t *testing.T) {
		chat := &mockChatService{
			result: &domain.AnswerResult{Text: "refused", Refused: true},
		}
		server := newTestServer(t, chat, nil)

		_, output, err := server.handleAsk(ctx, nil, AskInput{SessionID: "s1", ThreadID: "t1", Question: "secrets?"})
		require.NoError(t, err)
		assert.True(t, output.Refused)
	})

	t.Run("returns error on answer failure", func(t *testing.T) {
		chat := &mockChatService{err: errors.New("answer failed")}
		server := newTestServer(t, chat, nil)

		_, _, err := server.handleAsk(ctx, nil, AskInput{SessionID: "s1", ThreadID: "t1", Question: "q"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "answer failed")
	})
}

func TestServer_handleSummarise(t *testing.T) {
	ctx := context.Background()

	t.Run("session summary", func(t *testing.T) {
		summary := &mockSummaryService{
			summary: &domain.Summary{
				Mode:        domain.SummaryMulti,
				Overview:    "Two documents.",
				KeyFindings: []string{"finding"},
			},
		}
		server := newTestServer(t, &mockChatService{}, summary)

		_, output, err := server.handleSummarise(ctx, nil, SummariseInput{SessionID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, "multi", output.Mode)
		assert.Equal(t, "Two documents.", output.Overview)
		assert.Empty(t, summary.documentID)
	})

	t.Run("document summary", func(t *testing.T) {
		summary := &mockSummaryService{
			summary: &domain.Summary{
				Mode:      domain.SummarySingle,
				MainTopic: "Revenue",
				KeyPoints: []string{"grew"},
			},
		}
		server := newTestServer(t, &mockChatService{}, summary)

		_, output, err := server.handleSummarise(ctx, nil, SummariseInput{SessionID: "s1", DocumentID: "d1"})
		require.NoError(t, err)
		assert.Equal(t, "single", output.Mode)
		assert.Equal(t, "Revenue", output.MainTopic)
		assert.Equal(t, "d1", summary.documentID)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		summary := &mockSummaryService{err: errors.New("summary failed")}
		server := newTestServer(t, &mockChatService{}, summary)

		_, _, err := server.handleSummarise(ctx, nil, SummariseInput{SessionID: "s1"})
		require.Error(t, err)
	})
}
