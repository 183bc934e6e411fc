package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	t.Run("save and get", func(t *testing.T) {
		session := &domain.Session{
			ID:        "s1",
			State:     domain.SessionCreated,
			Namespace: "ns-s1",
			CreatedAt: time.Now(),
		}
		require.NoError(t, store.SaveSession(ctx, session))

		got, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "ns-s1", got.Namespace)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := store.GetSession(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		now := time.Now()
		require.NoError(t, store.SaveSession(ctx, &domain.Session{ID: "old", CreatedAt: now.Add(-time.Hour)}))
		require.NoError(t, store.SaveSession(ctx, &domain.Session{ID: "new", CreatedAt: now.Add(time.Hour)}))

		sessions, err := store.ListSessions(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, sessions)
		assert.Equal(t, "new", sessions[0].ID)
		assert.Equal(t, "old", sessions[len(sessions)-1].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteSession(ctx, "s1"))
		_, err := store.GetSession(ctx, "s1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	doc := &domain.Document{
		ID:        "d1",
		SessionID: "s1",
		Filename:  "report.pdf",
		Format:    domain.FormatPDF,
		Status:    domain.DocumentUploaded,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	t.Run("get", func(t *testing.T) {
		got, err := store.GetDocument(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, "report.pdf", got.Filename)
	})

	t.Run("list by session", func(t *testing.T) {
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{
			ID: "d2", SessionID: "other", CreatedAt: time.Now(),
		}))

		docs, err := store.ListDocuments(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "d1", docs[0].ID)
	})

	t.Run("chunks round trip ordered", func(t *testing.T) {
		chunks := []domain.Chunk{
			{ID: "c2", DocumentID: "d1", Sequence: 1, Text: "second"},
			{ID: "c1", DocumentID: "d1", Sequence: 0, Text: "first"},
		}
		require.NoError(t, store.SaveChunks(ctx, chunks))

		got, err := store.GetChunks(ctx, "d1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "c1", got[0].ID)
		assert.Equal(t, "c2", got[1].ID)

		chunk, err := store.GetChunk(ctx, "c2")
		require.NoError(t, err)
		assert.Equal(t, "second", chunk.Text)
	})

	t.Run("delete removes chunks", func(t *testing.T) {
		require.NoError(t, store.DeleteDocument(ctx, "d1"))

		_, err := store.GetDocument(ctx, "d1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		chunks, err := store.GetChunks(ctx, "d1")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestThreadStore(t *testing.T) {
	ctx := context.Background()
	store := NewThreadStore()

	thread := &domain.ChatThread{ID: "t1", SessionID: "s1", CreatedAt: time.Now()}
	require.NoError(t, store.SaveThread(ctx, thread))

	t.Run("get", func(t *testing.T) {
		got, err := store.GetThread(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "s1", got.SessionID)
	})

	t.Run("append and recent", func(t *testing.T) {
		require.NoError(t, store.AppendMessages(ctx, "t1",
			domain.Message{Role: domain.RoleUser, Content: "q1"},
			domain.Message{Role: domain.RoleAssistant, Content: "a1"},
		))
		require.NoError(t, store.AppendMessages(ctx, "t1",
			domain.Message{Role: domain.RoleUser, Content: "q2"},
			domain.Message{Role: domain.RoleAssistant, Content: "a2"},
		))

		all, err := store.RecentMessages(ctx, "t1", 0)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "q1", all[0].Content)
		assert.Equal(t, "a2", all[3].Content)

		recent, err := store.RecentMessages(ctx, "t1", 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "q2", recent[0].Content)
		assert.Equal(t, "a2", recent[1].Content)
	})

	t.Run("append to missing thread", func(t *testing.T) {
		err := store.AppendMessages(ctx, "nope", domain.Message{Role: domain.RoleUser, Content: "q"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete by session", func(t *testing.T) {
		require.NoError(t, store.SaveThread(ctx, &domain.ChatThread{ID: "t2", SessionID: "other"}))
		require.NoError(t, store.DeleteThreads(ctx, "s1"))

		_, err := store.GetThread(ctx, "t1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = store.GetThread(ctx, "t2")
		assert.NoError(t, err)
	})
}
