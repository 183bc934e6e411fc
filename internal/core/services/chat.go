package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure ChatManager implements the interface.
var _ driving.ChatService = (*ChatManager)(nil)

// defaultHistoryWindow is the number of prior messages carried into the
// answer prompt.
const defaultHistoryWindow = 10

// refusalText is the fixed reply for questions the sensitive-question guard
// flags. Refusals are recorded in the history with no citations.
const refusalText = "Sorry, I cannot provide you the details you asked as it contains sensitive information."

// emptyIndexText is the reply when the session has no indexed vectors yet.
// No provider call is made.
const emptyIndexText = "This session has no indexed documents yet. Upload a document and ask again."

const answerSystemPrompt = `You answer questions using only the document excerpts provided below.
Each excerpt is labelled [chunk <id>]. When an excerpt supports part of your
answer, include its label inline, for example: revenue grew 12% [chunk 3f9a].
If the excerpts do not contain the answer, say so plainly instead of guessing.
Never invent excerpt labels.`

// citationRe matches the [chunk <id>] labels the model is instructed to emit.
var citationRe = regexp.MustCompile(`\[chunk ([0-9a-fA-F-]+)\]`)

// ChatManager manages threads and runs the answer pipeline. Answers on the
// same thread are serialized in arrival order through a per-thread lock.
type ChatManager struct {
	sessions      driven.SessionStore
	threads       driven.ThreadStore
	retriever     *Retriever
	guard         driven.SensitiveGuard
	llm           driven.LLMService
	historyWindow int
	maxRetries    int
	locks         *lockTable
	now           func() time.Time
}

// ChatConfig configures answer behaviour.
type ChatConfig struct {
	// HistoryWindow is the number of prior messages carried into the prompt.
	HistoryWindow int

	// MaxRetries bounds retries on transient generation failures.
	MaxRetries int
}

// NewChatManager creates a chat manager.
func NewChatManager(
	sessions driven.SessionStore,
	threads driven.ThreadStore,
	retriever *Retriever,
	guard driven.SensitiveGuard,
	llm driven.LLMService,
	cfg ChatConfig,
) *ChatManager {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = defaultHistoryWindow
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &ChatManager{
		sessions:      sessions,
		threads:       threads,
		retriever:     retriever,
		guard:         guard,
		llm:           llm,
		historyWindow: cfg.HistoryWindow,
		maxRetries:    cfg.MaxRetries,
		locks:         newLockTable(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateThread opens a new conversation thread on a session.
func (c *ChatManager) CreateThread(ctx context.Context, sessionID string) (*domain.ChatThread, error) {
	if _, err := c.liveSession(ctx, sessionID); err != nil {
		return nil, err
	}

	thread := &domain.ChatThread{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		CreatedAt: c.now(),
	}
	if err := c.threads.SaveThread(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// ListThreads returns the session's threads.
func (c *ChatManager) ListThreads(ctx context.Context, sessionID string) ([]domain.ChatThread, error) {
	if _, err := c.liveSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return c.threads.ListThreads(ctx, sessionID)
}

// History returns a thread's message history, oldest first.
func (c *ChatManager) History(ctx context.Context, threadID string) ([]domain.Message, error) {
	if _, err := c.threads.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	return c.threads.RecentMessages(ctx, threadID, 0)
}

// Answer runs the full pipeline for one question: guard, retrieve, generate,
// cite, and record. The user question and the reply land in the history
// atomically; a failed generation records nothing.
func (c *ChatManager) Answer(ctx context.Context, sessionID, threadID, question string, documentIDs ...string) (*domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	unlock := c.locks.lock(threadID)
	defer unlock()

	session, err := c.liveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	thread, err := c.threads.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread.SessionID != sessionID {
		return nil, fmt.Errorf("%w: thread %s does not belong to session %s", domain.ErrNotFound, threadID, sessionID)
	}

	logger.Section("Answer Pipeline")
	logger.Debug("Question: %q", question)

	flagged, err := c.guard.Check(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("sensitive guard (%s): %w", c.guard.Name(), err)
	}
	if flagged {
		logger.Info("Question refused by guard %s", c.guard.Name())
		result := &domain.AnswerResult{Text: refusalText, Refused: true}
		if err := c.record(ctx, threadID, question, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	retrieved, err := c.retriever.Retrieve(ctx, session, question, documentIDs...)
	if errors.Is(err, domain.ErrEmptyIndex) {
		result := &domain.AnswerResult{Text: emptyIndexText}
		if err := c.record(ctx, threadID, question, result); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	history, err := c.threads.RecentMessages(ctx, threadID, c.historyWindow)
	if err != nil {
		return nil, err
	}

	messages := c.buildMessages(retrieved, history, question)

	var reply string
	err = withRetry(ctx, c.maxRetries, func() error {
		var genErr error
		reply, genErr = c.llm.Chat(ctx, messages, driven.ChatOptions{})
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	result := &domain.AnswerResult{
		Text:          strings.TrimSpace(reply),
		CitedChunkIDs: extractCitations(reply, retrieved),
	}
	if err := c.record(ctx, threadID, question, result); err != nil {
		return nil, err
	}
	return result, nil
}

// buildMessages assembles the chat prompt: system instructions with the
// retrieved excerpts, the recent history window, then the question.
func (c *ChatManager) buildMessages(retrieved []domain.RetrievalResult, history []domain.Message, question string) []driven.ChatMessage {
	var sb strings.Builder
	sb.WriteString(answerSystemPrompt)
	sb.WriteString("\n\nDocument excerpts:\n")
	for _, r := range retrieved {
		fmt.Fprintf(&sb, "\n[chunk %s]\n%s\n", r.ChunkID, r.Text)
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: "system", Content: sb.String()})
	for _, msg := range history {
		messages = append(messages, driven.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: question})
	return messages
}

// extractCitations parses the [chunk <id>] labels out of the reply and keeps
// only those that name a retrieved chunk, in retrieval order. A reply with no
// valid labels falls back to citing everything that was retrieved.
func extractCitations(reply string, retrieved []domain.RetrievalResult) []string {
	valid := make(map[string]bool, len(retrieved))
	for _, r := range retrieved {
		valid[r.ChunkID] = true
	}

	cited := make(map[string]bool)
	for _, match := range citationRe.FindAllStringSubmatch(reply, -1) {
		if valid[match[1]] {
			cited[match[1]] = true
		}
	}

	if len(cited) == 0 {
		cited = valid
	}

	ids := make([]string, 0, len(cited))
	for _, r := range retrieved {
		if cited[r.ChunkID] {
			ids = append(ids, r.ChunkID)
		}
	}
	return ids
}

// record appends the question and the reply to the thread atomically.
func (c *ChatManager) record(ctx context.Context, threadID, question string, result *domain.AnswerResult) error {
	now := c.now()
	return c.threads.AppendMessages(ctx, threadID,
		domain.Message{Role: domain.RoleUser, Content: question, CreatedAt: now},
		domain.Message{
			Role:          domain.RoleAssistant,
			Content:       result.Text,
			CitedChunkIDs: result.CitedChunkIDs,
			CreatedAt:     now,
		},
	)
}

func (c *ChatManager) liveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := c.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.SessionDestroyed {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionDestroyed, sessionID)
	}
	return session, nil
}
