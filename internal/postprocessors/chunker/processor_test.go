package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		p, err := New(WithChunkSize(500), WithOverlap(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
		if p.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", p.overlap)
		}
	})

	t.Run("zero chunk size rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(0))
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("overlap equal to chunk size rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p, _ := New()
	doc := &domain.Document{ID: "test-doc"}

	chunks, err := p.Process(context.Background(), doc, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}

	chunks, err = p.Process(context.Background(), doc, "   \n\t  ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for whitespace content, got %d", len(chunks))
	}
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{ID: "test-doc"}
	text := "short text well under the chunk size"

	chunks, err := p.Process(context.Background(), doc, text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("expected full text in single chunk, got %q", chunks[0].Text)
	}
	if chunks[0].Start != 0 || chunks[0].End != len(text) {
		t.Errorf("expected span [0,%d), got [%d,%d)", len(text), chunks[0].Start, chunks[0].End)
	}
}

func TestProcessor_Process_FixedAdvance(t *testing.T) {
	// Uniform text with no natural boundaries exercises the raw stride:
	// 2400 chars at size 1000 / overlap 200 yields exactly three chunks.
	p, _ := New(WithChunkSize(1000), WithOverlap(200))
	doc := &domain.Document{ID: "test-doc"}
	text := strings.Repeat("a", 2400)

	chunks, err := p.Process(context.Background(), doc, text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantSpans := [][2]int{{0, 1000}, {800, 1800}, {1600, 2400}}
	for i, want := range wantSpans {
		if chunks[i].Start != want[0] || chunks[i].End != want[1] {
			t.Errorf("chunk %d: expected span [%d,%d), got [%d,%d)",
				i, want[0], want[1], chunks[i].Start, chunks[i].End)
		}
		if chunks[i].Sequence != i {
			t.Errorf("chunk %d: expected sequence %d, got %d", i, i, chunks[i].Sequence)
		}
	}
}

func TestProcessor_Process_ParagraphBoundary(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{ID: "test-doc"}

	// Paragraph break sits inside the tolerance window before position 100.
	para := strings.Repeat("x", 90) + "\n\n"
	text := para + strings.Repeat("y", 200)

	chunks, err := p.Process(context.Background(), doc, text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].End != len(para) {
		t.Errorf("expected first chunk to end at paragraph break %d, got %d", len(para), chunks[0].End)
	}
}

func TestProcessor_Process_SentenceBoundary(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{ID: "test-doc"}

	// No paragraph break, but a sentence end inside the tolerance window.
	lead := strings.Repeat("x", 88) + ". "
	text := lead + strings.Repeat("y", 200)

	chunks, err := p.Process(context.Background(), doc, text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].End != len(lead) {
		t.Errorf("expected first chunk to end at sentence boundary %d, got %d", len(lead), chunks[0].End)
	}
}

func TestProcessor_Process_WhitespaceBoundary(t *testing.T) {
	p, _ := New(WithChunkSize(100), WithOverlap(20))
	doc := &domain.Document{ID: "test-doc"}

	lead := strings.Repeat("x", 92) + " "
	text := lead + strings.Repeat("y", 200)

	chunks, err := p.Process(context.Background(), doc, text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].End != len(lead) {
		t.Errorf("expected first chunk to end at whitespace %d, got %d", len(lead), chunks[0].End)
	}
}

func TestProcessor_Process_SpansMatchText(t *testing.T) {
	p, _ := New(WithChunkSize(120), WithOverlap(30))
	doc := &domain.Document{ID: "test-doc"}

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	text := b.String()

	chunks, err := p.Process(context.Background(), doc, text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if text[c.Start:c.End] != c.Text {
			t.Errorf("chunk %d: span [%d,%d) does not match stored text", i, c.Start, c.End)
		}
		if c.DocumentID != doc.ID {
			t.Errorf("chunk %d: expected document ID %q, got %q", i, doc.ID, c.DocumentID)
		}
		if i > 0 && chunks[i].Start >= chunks[i].End {
			t.Errorf("chunk %d: empty span [%d,%d)", i, c.Start, c.End)
		}
		if i > 0 && chunks[i].Start <= chunks[i-1].Start {
			t.Errorf("chunk %d: start %d did not advance past previous start %d", i, c.Start, chunks[i-1].Start)
		}
	}

	// Coverage: last chunk reaches end of text, first starts at zero.
	if chunks[0].Start != 0 {
		t.Errorf("expected first chunk to start at 0, got %d", chunks[0].Start)
	}
	if chunks[len(chunks)-1].End != len(text) {
		t.Errorf("expected last chunk to end at %d, got %d", len(text), chunks[len(chunks)-1].End)
	}
}
