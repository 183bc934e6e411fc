package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/extractors"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionService = (*SessionManager)(nil)

// SessionManager owns session lifecycle and document membership. All index
// mutations for a session are serialized through a per-session lock, so
// concurrent uploads into the same session cannot interleave state changes.
type SessionManager struct {
	sessions   driven.SessionStore
	documents  driven.DocumentStore
	threads    driven.ThreadStore
	extractors *extractors.Registry
	pipeline   driven.PostProcessorPipeline
	indexer    *Indexer
	locks      *lockTable
	now        func() time.Time
}

// NewSessionManager creates a session manager.
func NewSessionManager(
	sessions driven.SessionStore,
	documents driven.DocumentStore,
	threads driven.ThreadStore,
	registry *extractors.Registry,
	pipeline driven.PostProcessorPipeline,
	indexer *Indexer,
) *SessionManager {
	return &SessionManager{
		sessions:   sessions,
		documents:  documents,
		threads:    threads,
		extractors: registry,
		pipeline:   pipeline,
		indexer:    indexer,
		locks:      newLockTable(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create allocates a new session in the Created state with a fresh namespace.
func (m *SessionManager) Create(ctx context.Context) (*domain.Session, error) {
	id := uuid.NewString()
	session := &domain.Session{
		ID:        id,
		State:     domain.SessionCreated,
		Namespace: "docchat-" + id,
		CreatedAt: m.now(),
		UpdatedAt: m.now(),
	}
	if err := m.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	logger.Info("Created session %s", session.ID)
	return session, nil
}

// Get retrieves a session by ID.
func (m *SessionManager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.sessions.GetSession(ctx, sessionID)
}

// List returns all sessions, newest first.
func (m *SessionManager) List(ctx context.Context) ([]domain.Session, error) {
	return m.sessions.ListSessions(ctx)
}

// Upload runs the full ingestion pipeline for one document: extract, chunk,
// embed, and index. The session moves through Indexing and lands in Ready;
// extraction and chunking failures mark the document Failed and restore the
// session's previous state.
func (m *SessionManager) Upload(ctx context.Context, sessionID, filename string, format domain.Format, content []byte) (*driving.UploadResult, error) {
	unlock := m.locks.lock(sessionID)
	defer unlock()

	session, err := m.liveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty document content", domain.ErrInvalidInput)
	}

	extractor, err := m.extractors.For(format)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Filename:  filename,
		Format:    format,
		Status:    domain.DocumentUploaded,
		CreatedAt: m.now(),
		UpdatedAt: m.now(),
	}
	if err := m.documents.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	prevState := session.State
	if err := m.transition(ctx, session, domain.SessionIndexing); err != nil {
		return nil, err
	}

	logger.Section("Document Ingestion")
	logger.Info("Ingesting %s (%s) into session %s", filename, format, sessionID)

	text, err := extractor.Extract(ctx, content)
	if err != nil {
		m.failDocument(ctx, session, doc, prevState)
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	doc.Status = domain.DocumentExtracted
	doc.UpdatedAt = m.now()
	if err := m.documents.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	chunks, err := m.pipeline.Process(ctx, doc, text)
	if err != nil {
		m.failDocument(ctx, session, doc, prevState)
		return nil, fmt.Errorf("chunk %s: %w", filename, err)
	}
	if err := m.documents.SaveChunks(ctx, chunks); err != nil {
		return nil, err
	}
	logger.Debug("Produced %d chunks", len(chunks))

	if err := m.indexer.EnsureSession(ctx, session); err != nil {
		m.failDocument(ctx, session, doc, prevState)
		return nil, err
	}

	report, err := m.indexer.IndexChunks(ctx, session.Namespace, chunks)
	if err != nil {
		m.failDocument(ctx, session, doc, prevState)
		return nil, err
	}

	// Indexed means every chunk made it in. Any failed chunks leave the
	// document Failed with the retriable IDs in the report. A document that
	// produced no chunks has nothing to index and counts as indexed.
	if report.Complete() {
		doc.Status = domain.DocumentIndexed
	} else {
		doc.Status = domain.DocumentFailed
	}
	doc.UpdatedAt = m.now()
	if err := m.documents.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	// Ready requires at least one indexed document. When this one failed
	// and the session was not already Ready, go back to where it started.
	if doc.Status == domain.DocumentIndexed || prevState == domain.SessionReady {
		if err := m.transition(ctx, session, domain.SessionReady); err != nil {
			return nil, err
		}
	} else {
		session.State = prevState
		session.UpdatedAt = m.now()
		if err := m.sessions.SaveSession(ctx, session); err != nil {
			return nil, err
		}
	}

	logger.Info("Indexed %d/%d chunks for %s", report.Inserted, len(chunks), filename)
	return &driving.UploadResult{
		Document:   *doc,
		Report:     report,
		ChunkCount: len(chunks),
	}, nil
}

// Documents returns the session's documents, oldest first.
func (m *SessionManager) Documents(ctx context.Context, sessionID string) ([]domain.Document, error) {
	if _, err := m.liveSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return m.documents.ListDocuments(ctx, sessionID)
}

// RemoveDocument deletes a document, its chunks, and its vectors.
func (m *SessionManager) RemoveDocument(ctx context.Context, sessionID, documentID string) error {
	unlock := m.locks.lock(sessionID)
	defer unlock()

	session, err := m.liveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	doc, err := m.documents.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.SessionID != sessionID {
		return fmt.Errorf("%w: document %s does not belong to session %s", domain.ErrNotFound, documentID, sessionID)
	}

	if err := m.indexer.RemoveDocument(ctx, session.Namespace, documentID); err != nil {
		return err
	}
	if err := m.documents.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	session.UpdatedAt = m.now()
	return m.sessions.SaveSession(ctx, session)
}

// Index returns the session's index view: document membership from the
// bookkeeping store and the vector count from the vector store.
func (m *SessionManager) Index(ctx context.Context, sessionID string) (*domain.SessionIndex, error) {
	session, err := m.liveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	docs, err := m.documents.ListDocuments(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	docIDs := make([]string, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
	}

	count, err := m.indexer.Count(ctx, session.Namespace)
	if err != nil {
		return nil, err
	}

	return &domain.SessionIndex{
		SessionID:   sessionID,
		Namespace:   session.Namespace,
		DocumentIDs: docIDs,
		VectorCount: count,
	}, nil
}

// Destroy tears the session down: namespace, documents, and threads.
// The session record stays behind as a tombstone in the Destroyed state so
// later operations can distinguish destroyed from never-existed.
func (m *SessionManager) Destroy(ctx context.Context, sessionID string) error {
	unlock := m.locks.lock(sessionID)
	defer unlock()

	session, err := m.liveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := m.indexer.DestroyNamespace(ctx, session.Namespace); err != nil {
		return err
	}

	docs, err := m.documents.ListDocuments(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := m.documents.DeleteDocument(ctx, d.ID); err != nil {
			return err
		}
	}

	if err := m.threads.DeleteThreads(ctx, sessionID); err != nil {
		return err
	}

	logger.Info("Destroyed session %s", sessionID)
	return m.transition(ctx, session, domain.SessionDestroyed)
}

// liveSession loads a session and rejects destroyed ones.
func (m *SessionManager) liveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.SessionDestroyed {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionDestroyed, sessionID)
	}
	return session, nil
}

// transition applies a lifecycle state change and persists it.
func (m *SessionManager) transition(ctx context.Context, session *domain.Session, to domain.SessionState) error {
	if !session.State.CanTransition(to) {
		return fmt.Errorf("%w: cannot transition session from %s to %s", domain.ErrInvalidInput, session.State, to)
	}
	session.State = to
	session.UpdatedAt = m.now()
	return m.sessions.SaveSession(ctx, session)
}

// failDocument marks the document Failed and restores the session's previous
// state. Best effort: the original error is what the caller sees.
func (m *SessionManager) failDocument(ctx context.Context, session *domain.Session, doc *domain.Document, prevState domain.SessionState) {
	doc.Status = domain.DocumentFailed
	doc.UpdatedAt = m.now()
	if err := m.documents.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Failed to mark document %s as failed: %v", doc.ID, err)
	}

	session.State = prevState
	session.UpdatedAt = m.now()
	if err := m.sessions.SaveSession(ctx, session); err != nil {
		logger.Warn("Failed to restore session %s state: %v", session.ID, err)
	}
}
