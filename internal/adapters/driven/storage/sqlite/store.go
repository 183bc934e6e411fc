// Package sqlite provides SQLite-backed bookkeeping storage for sessions,
// documents, chunks, and chat threads. Vectors live in the vector store;
// this package persists identity and lifecycle state only.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all bookkeeping store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docchat/data/docchat.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docchat", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docchat.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ThreadStore returns a ThreadStore interface backed by this store.
func (s *Store) ThreadStore() driven.ThreadStore {
	return &threadStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// SaveSession stores or updates a session.
func (s *sessionStore) SaveSession(ctx context.Context, session *domain.Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, state, namespace, embedding_model, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			namespace = excluded.namespace,
			embedding_model = excluded.embedding_model,
			summary = excluded.summary,
			updated_at = excluded.updated_at
	`, session.ID, string(session.State), session.Namespace, session.EmbeddingModel,
		session.Summary, session.CreatedAt, session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, state, namespace, embedding_model, summary, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *sessionStore) ListSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, state, namespace, embedding_model, summary, created_at, updated_at
		FROM sessions ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session record.
// Documents, chunks, threads, and messages cascade.
func (s *sessionStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var state string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&session.ID, &state, &session.Namespace, &session.EmbeddingModel,
		&session.Summary, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.State = domain.SessionState(state)
	if createdAt.Valid {
		session.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		session.UpdatedAt = updatedAt.Time
	}
	return &session, nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (d *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := d.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, session_id, filename, format, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			format = excluded.format,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, doc.ID, doc.SessionID, doc.Filename, string(doc.Format), string(doc.Status),
		doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (d *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := d.store.db.QueryRowContext(ctx, `
		SELECT id, session_id, filename, format, status, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)
	return scanDocument(row)
}

// ListDocuments returns documents for a session, oldest first.
func (d *documentStore) ListDocuments(ctx context.Context, sessionID string) ([]domain.Document, error) {
	rows, err := d.store.db.QueryContext(ctx, `
		SELECT id, session_id, filename, format, status, created_at, updated_at
		FROM documents WHERE session_id = ? ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and its chunks.
func (d *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := d.store.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document, replacing any existing set.
func (d *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := d.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	docID := chunks[0].DocumentID
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, sequence, text, start_offset, end_offset)
			VALUES (?, ?, ?, ?, ?, ?)
		`, chunk.ID, chunk.DocumentID, chunk.Sequence, chunk.Text, chunk.Start, chunk.End)
		if err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	return tx.Commit()
}

// GetChunks retrieves all chunks for a document, ordered by sequence.
func (d *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := d.store.db.QueryContext(ctx, `
		SELECT id, document_id, sequence, text, start_offset, end_offset
		FROM chunks WHERE document_id = ? ORDER BY sequence
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Sequence,
			&chunk.Text, &chunk.Start, &chunk.End); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// GetChunk retrieves a specific chunk by ID.
func (d *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := d.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, sequence, text, start_offset, end_offset
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Sequence,
		&chunk.Text, &chunk.Start, &chunk.End); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	return &chunk, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var format, status string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.SessionID, &doc.Filename, &format, &status,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Format = domain.Format(format)
	doc.Status = domain.DocumentStatus(status)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return &doc, nil
}

// ==================== Thread Store ====================

// threadStore implements driven.ThreadStore.
type threadStore struct {
	store *Store
}

var _ driven.ThreadStore = (*threadStore)(nil)

// SaveThread stores a thread.
func (t *threadStore) SaveThread(ctx context.Context, thread *domain.ChatThread) error {
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now().UTC()
	}

	_, err := t.store.db.ExecContext(ctx, `
		INSERT INTO threads (id, session_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, thread.ID, thread.SessionID, thread.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving thread: %w", err)
	}
	return nil
}

// GetThread retrieves a thread by ID.
func (t *threadStore) GetThread(ctx context.Context, id string) (*domain.ChatThread, error) {
	row := t.store.db.QueryRowContext(ctx, `
		SELECT id, session_id, created_at FROM threads WHERE id = ?
	`, id)

	var thread domain.ChatThread
	var createdAt sql.NullTime
	if err := row.Scan(&thread.ID, &thread.SessionID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning thread: %w", err)
	}
	if createdAt.Valid {
		thread.CreatedAt = createdAt.Time
	}
	return &thread, nil
}

// ListThreads returns threads for a session, oldest first.
func (t *threadStore) ListThreads(ctx context.Context, sessionID string) ([]domain.ChatThread, error) {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT id, session_id, created_at FROM threads
		WHERE session_id = ? ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.ChatThread
	for rows.Next() {
		var thread domain.ChatThread
		var createdAt sql.NullTime
		if err := rows.Scan(&thread.ID, &thread.SessionID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		if createdAt.Valid {
			thread.CreatedAt = createdAt.Time
		}
		threads = append(threads, thread)
	}
	return threads, rows.Err()
}

// DeleteThreads removes all threads and messages for a session.
func (t *threadStore) DeleteThreads(ctx context.Context, sessionID string) error {
	_, err := t.store.db.ExecContext(ctx, `DELETE FROM threads WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting threads: %w", err)
	}
	return nil
}

// AppendMessages appends messages to a thread's history in one transaction.
func (t *threadStore) AppendMessages(ctx context.Context, threadID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM threads WHERE id = ?`, threadID)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("checking thread: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	for _, msg := range messages {
		created := msg.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		citedJSON, err := json.Marshal(msg.CitedChunkIDs)
		if err != nil {
			return fmt.Errorf("marshalling cited chunks: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (thread_id, role, content, cited_chunk_ids, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, threadID, string(msg.Role), msg.Content, string(citedJSON), created)
		if err != nil {
			return fmt.Errorf("saving message: %w", err)
		}
	}

	return tx.Commit()
}

// RecentMessages returns the most recent messages in chronological order.
func (t *threadStore) RecentMessages(ctx context.Context, threadID string, limit int) ([]domain.Message, error) {
	query := `
		SELECT role, content, cited_chunk_ids, created_at FROM messages
		WHERE thread_id = ? ORDER BY id DESC
	`
	args := []any{threadID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := t.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var reversed []domain.Message
	for rows.Next() {
		var msg domain.Message
		var role, citedJSON string
		var createdAt sql.NullTime
		if err := rows.Scan(&role, &msg.Content, &citedJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.Role(role)
		if createdAt.Valid {
			msg.CreatedAt = createdAt.Time
		}
		if err := json.Unmarshal([]byte(citedJSON), &msg.CitedChunkIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling cited chunks: %w", err)
		}
		reversed = append(reversed, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query returned newest first; flip to chronological order.
	messages := make([]domain.Message, len(reversed))
	for i, msg := range reversed {
		messages[len(reversed)-1-i] = msg
	}
	return messages, nil
}
