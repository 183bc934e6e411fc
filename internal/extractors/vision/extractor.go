// Package vision extracts text from images using a vision-capable chat model.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// transcribePrompt asks the model to act as an OCR engine rather than a
// caption writer.
const transcribePrompt = `Transcribe all text visible in this image. ` +
	`Preserve the reading order and line breaks. ` +
	`If the image contains no text, describe its content in one short paragraph. ` +
	`Return only the transcription or description, nothing else.`

// Config holds configuration for the vision extractor.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for any OpenAI-compatible endpoint.
	BaseURL string

	// Model is the vision-capable model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Extractor handles image documents by sending them to a vision-capable
// chat completion endpoint and asking for a transcription.
type Extractor struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// New creates a new vision extractor.
func New(cfg Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Extractor{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Formats returns the image formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{
		domain.FormatJPG,
		domain.FormatJPEG,
		domain.FormatPNG,
		domain.FormatGIF,
	}
}

// visionRequest is the chat completions request with image content parts.
type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type visionMessage struct {
	Role    string       `json:"role"`
	Content []visionPart `json:"content"`
}

type visionPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

// visionResponse is the chat completions response format.
type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Extract sends the image to the vision model and returns the transcription.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}

	mime := http.DetectContentType(content)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: content is %s, not an image", domain.ErrInvalidInput, mime)
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(content))

	reqBody := visionRequest{
		Model: e.model,
		Messages: []visionMessage{
			{
				Role: "user",
				Content: []visionPart{
					{Type: "text", Text: transcribePrompt},
					{Type: "image_url", ImageURL: &visionImageURL{URL: dataURI}},
				},
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var visionResp visionResponse
	if err := json.Unmarshal(body, &visionResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if visionResp.Error != nil {
		return "", fmt.Errorf("vision error: %s", visionResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(visionResp.Choices) == 0 {
		return "", fmt.Errorf("vision: no response choices returned")
	}

	return strings.TrimSpace(visionResp.Choices[0].Message.Content), nil
}
