package mcp

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	sessions  []domain.Session
	documents []domain.Document
	err       error
}

func (m *mockSessionService) Create(_ context.Context) (*domain.Session, error) {
	return &domain.Session{ID: "s1"}, m.err
}

func (m *mockSessionService) Get(_ context.Context, _ string) (*domain.Session, error) {
	if len(m.sessions) == 0 {
		return nil, m.err
	}
	return &m.sessions[0], m.err
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Upload(_ context.Context, _, _ string, _ domain.Format, _ []byte) (*driving.UploadResult, error) {
	return &driving.UploadResult{}, m.err
}

func (m *mockSessionService) Documents(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockSessionService) RemoveDocument(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockSessionService) Index(_ context.Context, _ string) (*domain.SessionIndex, error) {
	return &domain.SessionIndex{}, m.err
}

func (m *mockSessionService) Destroy(_ context.Context, _ string) error {
	return m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	thread *domain.ChatThread
	result *domain.AnswerResult
	err    error

	answeredThreadID string
	filteredDocs     []string
}

func (m *mockChatService) CreateThread(_ context.Context, sessionID string) (*domain.ChatThread, error) {
	if m.thread != nil {
		return m.thread, m.err
	}
	return &domain.ChatThread{ID: "t1", SessionID: sessionID}, m.err
}

func (m *mockChatService) ListThreads(_ context.Context, _ string) ([]domain.ChatThread, error) {
	return nil, m.err
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.Message, error) {
	return nil, m.err
}

func (m *mockChatService) Answer(_ context.Context, _, threadID, _ string, documentIDs ...string) (*domain.AnswerResult, error) {
	m.answeredThreadID = threadID
	m.filteredDocs = documentIDs
	return m.result, m.err
}

// mockSummaryService is a mock implementation of driving.SummaryService.
type mockSummaryService struct {
	summary *domain.Summary
	err     error

	documentID string
}

func (m *mockSummaryService) SummariseDocument(_ context.Context, _, documentID string) (*domain.Summary, error) {
	m.documentID = documentID
	return m.summary, m.err
}

func (m *mockSummaryService) SummariseSession(_ context.Context, _ string) (*domain.Summary, error) {
	m.documentID = ""
	return m.summary, m.err
}
