package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure Summariser implements the interface.
var _ driving.SummaryService = (*Summariser)(nil)

// defaultCondenseChars is the input size per map-step condensation call.
const defaultCondenseChars = 8000

const condensePrompt = `Condense the following document excerpt into its essential
points. Keep concrete facts, figures, and names. Reply with the condensed
notes only.

%s`

const singleSummaryPrompt = `Summarise the following document notes as JSON with exactly
these fields:
  "main_topic": one sentence naming the document's subject
  "key_points": list of the most important points
  "supporting_details": list of details that back the key points
  "additional_info": list of secondary but notable information

Reply with the JSON object only.

Notes:
%s`

const multiSummaryPrompt = `Synthesise the following notes, taken across several documents,
into one JSON object with exactly these fields:
  "overview": a short paragraph covering the document set as a whole
  "key_findings": list of the most important findings across documents
  "critical_details": list of details a reader must not miss
  "conclusions": list of conclusions supported by the documents

Reply with the JSON object only.

Notes:
%s`

// Summariser produces structured summaries from a session's documents using
// map-reduce: long content is condensed in batches, then a single structured
// call produces the final summary. Summaries are all-or-nothing; any
// generation or parse failure surfaces as ErrGeneration.
type Summariser struct {
	sessions      driven.SessionStore
	documents     driven.DocumentStore
	llm           driven.LLMService
	condenseChars int
	maxRetries    int
	now           func() time.Time
}

// SummariserConfig configures summarisation behaviour.
type SummariserConfig struct {
	// CondenseChars is the input size per condensation call.
	CondenseChars int

	// MaxRetries bounds retries on transient generation failures.
	MaxRetries int
}

// NewSummariser creates a summariser.
func NewSummariser(sessions driven.SessionStore, documents driven.DocumentStore, llm driven.LLMService, cfg SummariserConfig) *Summariser {
	if cfg.CondenseChars <= 0 {
		cfg.CondenseChars = defaultCondenseChars
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Summariser{
		sessions:      sessions,
		documents:     documents,
		llm:           llm,
		condenseChars: cfg.CondenseChars,
		maxRetries:    cfg.MaxRetries,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SummariseDocument produces a single-document summary.
func (s *Summariser) SummariseDocument(ctx context.Context, sessionID, documentID string) (*domain.Summary, error) {
	if _, err := s.liveSession(ctx, sessionID); err != nil {
		return nil, err
	}

	doc, err := s.documents.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.SessionID != sessionID {
		return nil, fmt.Errorf("%w: document %s does not belong to session %s", domain.ErrNotFound, documentID, sessionID)
	}

	notes, err := s.condenseDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	logger.Section("Document Summary")
	summary, err := s.structured(ctx, domain.SummarySingle, fmt.Sprintf(singleSummaryPrompt, notes))
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// SummariseSession produces a multi-document summary across the session's
// documents and caches a rendered copy on the session record.
func (s *Summariser) SummariseSession(ctx context.Context, sessionID string) (*domain.Summary, error) {
	session, err := s.liveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListDocuments(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	var notes []string
	for _, doc := range docs {
		n, err := s.condenseDocument(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		notes = append(notes, fmt.Sprintf("Document %q:\n%s", doc.Filename, n))
	}

	logger.Section("Session Summary")
	summary, err := s.structured(ctx, domain.SummaryMulti, fmt.Sprintf(multiSummaryPrompt, strings.Join(notes, "\n\n")))
	if err != nil {
		return nil, err
	}

	session.Summary = renderSummary(summary)
	session.UpdatedAt = s.now()
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		logger.Warn("Failed to cache summary on session %s: %v", sessionID, err)
	}
	return summary, nil
}

// condenseDocument runs the map step: the document's chunk text is split into
// batches and each batch is condensed by the model. Content that fits in one
// batch skips the condensation call entirely.
func (s *Summariser) condenseDocument(ctx context.Context, documentID string) (string, error) {
	chunks, err := s.documents.GetChunks(ctx, documentID)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: document %s has no chunks", domain.ErrInvalidInput, documentID)
	}

	var batches []string
	var current strings.Builder
	for _, c := range chunks {
		if current.Len() > 0 && current.Len()+len(c.Text) > s.condenseChars {
			batches = append(batches, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(c.Text)
	}
	if current.Len() > 0 {
		batches = append(batches, current.String())
	}

	if len(batches) == 1 && len(batches[0]) <= s.condenseChars {
		return batches[0], nil
	}

	logger.Debug("Condensing document %s in %d batches", documentID, len(batches))
	condensed := make([]string, len(batches))
	for i, batch := range batches {
		var out string
		err := withRetry(ctx, s.maxRetries, func() error {
			var genErr error
			out, genErr = s.llm.Generate(ctx, fmt.Sprintf(condensePrompt, batch), driven.GenerateOptions{})
			return genErr
		})
		if err != nil {
			return "", fmt.Errorf("%w: condense batch %d: %v", domain.ErrGeneration, i+1, err)
		}
		condensed[i] = strings.TrimSpace(out)
	}
	return strings.Join(condensed, "\n\n"), nil
}

// structured runs the reduce step and parses the model's JSON reply into a
// Summary for the given mode.
func (s *Summariser) structured(ctx context.Context, mode domain.SummaryMode, prompt string) (*domain.Summary, error) {
	var reply string
	err := withRetry(ctx, s.maxRetries, func() error {
		var genErr error
		reply, genErr = s.llm.Generate(ctx, prompt, driven.GenerateOptions{})
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	summary, err := parseSummary(mode, reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return summary, nil
}

// summaryPayload is the JSON shape the model is asked to produce. Single and
// multi mode fields share one struct; parseSummary checks the ones the mode
// requires.
type summaryPayload struct {
	MainTopic         string   `json:"main_topic"`
	KeyPoints         []string `json:"key_points"`
	SupportingDetails []string `json:"supporting_details"`
	AdditionalInfo    []string `json:"additional_info"`

	Overview        string   `json:"overview"`
	KeyFindings     []string `json:"key_findings"`
	CriticalDetails []string `json:"critical_details"`
	Conclusions     []string `json:"conclusions"`
}

// parseSummary extracts the JSON object from the reply and validates the
// mode's required fields. Models sometimes wrap JSON in code fences or prose,
// so everything outside the outermost braces is ignored.
func parseSummary(mode domain.SummaryMode, reply string) (*domain.Summary, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(reply[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("parse summary JSON: %v", err)
	}

	summary := &domain.Summary{Mode: mode}
	switch mode {
	case domain.SummarySingle:
		if payload.MainTopic == "" || len(payload.KeyPoints) == 0 {
			return nil, fmt.Errorf("incomplete single-document summary")
		}
		summary.MainTopic = payload.MainTopic
		summary.KeyPoints = payload.KeyPoints
		summary.SupportingDetails = payload.SupportingDetails
		summary.AdditionalInfo = payload.AdditionalInfo
	case domain.SummaryMulti:
		if payload.Overview == "" || len(payload.KeyFindings) == 0 {
			return nil, fmt.Errorf("incomplete multi-document summary")
		}
		summary.Overview = payload.Overview
		summary.KeyFindings = payload.KeyFindings
		summary.CriticalDetails = payload.CriticalDetails
		summary.Conclusions = payload.Conclusions
	default:
		return nil, fmt.Errorf("unknown summary mode %q", mode)
	}
	return summary, nil
}

// renderSummary flattens a multi-document summary into the plain text cached
// on the session record.
func renderSummary(s *domain.Summary) string {
	var sb strings.Builder
	sb.WriteString(s.Overview)
	if len(s.KeyFindings) > 0 {
		sb.WriteString("\n\nKey findings:")
		for _, f := range s.KeyFindings {
			sb.WriteString("\n- " + f)
		}
	}
	if len(s.Conclusions) > 0 {
		sb.WriteString("\n\nConclusions:")
		for _, c := range s.Conclusions {
			sb.WriteString("\n- " + c)
		}
	}
	return sb.String()
}

func (s *Summariser) liveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == domain.SessionDestroyed {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionDestroyed, sessionID)
	}
	return session, nil
}
