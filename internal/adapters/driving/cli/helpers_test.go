package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// setupTestServices installs mock services into the package vars and returns
// a cleanup that restores the originals.
func setupTestServices() func() {
	oldSession := sessionService
	oldChat := chatService
	oldSummary := summaryService

	sessionService = newMockSessionService()
	chatService = newMockChatService()
	summaryService = newMockSummaryService()

	return func() {
		sessionService = oldSession
		chatService = oldChat
		summaryService = oldSummary
	}
}

type mockSessionService struct {
	sessions  []domain.Session
	documents []domain.Document
	index     domain.SessionIndex
	upload    *driving.UploadResult
	err       error

	destroyed  []string
	removed    []string
	uploadedAs []string
}

func newMockSessionService() *mockSessionService {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return &mockSessionService{
		sessions: []domain.Session{
			{ID: "sess-1", State: domain.SessionReady, EmbeddingModel: "test-embed", CreatedAt: created},
		},
		documents: []domain.Document{
			{ID: "doc-1", Filename: "report.txt", Format: domain.FormatTXT, Status: domain.DocumentIndexed},
		},
		index: domain.SessionIndex{SessionID: "sess-1", VectorCount: 12, DocumentIDs: []string{"doc-1"}},
		upload: &driving.UploadResult{
			Document:   domain.Document{ID: "doc-2", Status: domain.DocumentIndexed},
			Report:     domain.IndexReport{Inserted: 3},
			ChunkCount: 3,
		},
	}
}

func (m *mockSessionService) Create(_ context.Context) (*domain.Session, error) {
	return &domain.Session{ID: "sess-new"}, m.err
}

func (m *mockSessionService) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.sessions {
		if m.sessions[i].ID == sessionID {
			return &m.sessions[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Upload(_ context.Context, _, filename string, _ domain.Format, _ []byte) (*driving.UploadResult, error) {
	m.uploadedAs = append(m.uploadedAs, filename)
	return m.upload, m.err
}

func (m *mockSessionService) Documents(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockSessionService) RemoveDocument(_ context.Context, _, documentID string) error {
	m.removed = append(m.removed, documentID)
	return m.err
}

func (m *mockSessionService) Index(_ context.Context, _ string) (*domain.SessionIndex, error) {
	return &m.index, m.err
}

func (m *mockSessionService) Destroy(_ context.Context, sessionID string) error {
	m.destroyed = append(m.destroyed, sessionID)
	return m.err
}

type mockChatService struct {
	result *domain.AnswerResult
	err    error

	createdThreads int
	answered       []string
	filteredDocs   []string
}

func newMockChatService() *mockChatService {
	return &mockChatService{
		result: &domain.AnswerResult{
			Text:          "The report covers quarterly revenue.",
			CitedChunkIDs: []string{"doc-1-chunk-a"},
		},
	}
}

func (m *mockChatService) CreateThread(_ context.Context, sessionID string) (*domain.ChatThread, error) {
	m.createdThreads++
	return &domain.ChatThread{ID: "thread-1", SessionID: sessionID}, m.err
}

func (m *mockChatService) ListThreads(_ context.Context, sessionID string) ([]domain.ChatThread, error) {
	return []domain.ChatThread{{ID: "thread-1", SessionID: sessionID}}, m.err
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.Message, error) {
	return nil, m.err
}

func (m *mockChatService) Answer(_ context.Context, _, threadID, question string, documentIDs ...string) (*domain.AnswerResult, error) {
	m.answered = append(m.answered, threadID+": "+question)
	m.filteredDocs = documentIDs
	return m.result, m.err
}

type mockSummaryService struct {
	summary *domain.Summary
	err     error

	documentID string
}

func newMockSummaryService() *mockSummaryService {
	return &mockSummaryService{
		summary: &domain.Summary{
			Mode:        domain.SummaryMulti,
			Overview:    "Two reports about revenue.",
			KeyFindings: []string{"revenue grew"},
			Conclusions: []string{"keep investing"},
		},
	}
}

func (m *mockSummaryService) SummariseDocument(_ context.Context, _, documentID string) (*domain.Summary, error) {
	m.documentID = documentID
	return m.summary, m.err
}

func (m *mockSummaryService) SummariseSession(_ context.Context, _ string) (*domain.Summary, error) {
	m.documentID = ""
	return m.summary, m.err
}
