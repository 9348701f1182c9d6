// Package extractor talks to an OpenAI-compatible API for the three
// extraction inputs: typed text, speech and photos. It returns the model's raw
// content; normalization happens in package extraction.
package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/extraction"
	"github.com/trackshelf/trackshelf-backend/pkg/config"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
)

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 2048

// UpstreamError is a non-2xx answer from the API
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("extractor: upstream status %d: %s", e.StatusCode, e.Body)
}

// RateLimited reports an exhausted quota or rate limit
func (e *UpstreamError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Client is safe for concurrent use.
type Client struct {
	cfg        config.LLMConfig
	httpClient *http.Client
	catalog    *domain.Catalog
	schema     *extraction.Schema
	logger     *logger.Logger
}

// New creates a client. schema is used for the image response format and for
// drift logging.
func New(cfg config.LLMConfig, catalog *domain.Catalog, schema *extraction.Schema, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		catalog:    catalog,
		schema:     schema,
		logger:     log.WithComponent("extractor"),
	}
}

// ParseText asks for a single-item JSON object describing text.
func (c *Client) ParseText(ctx context.Context, text string, today domain.Date) ([]byte, error) {
	body := map[string]any{
		"model":           c.cfg.TextModel,
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": textSystemPrompt},
			{"role": "user", "content": textUserPrompt(text, today, c.catalog)},
		},
	}
	return c.complete(ctx, "text", body)
}

// AnalyzeImage asks for the batch payload describing the photo.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mime string, today domain.Date) ([]byte, error) {
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)

	body := map[string]any{
		"model": c.cfg.VisionModel,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "product_collection_parse",
				"strict": true,
				"schema": c.schema.PayloadDoc,
			},
		},
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": imagePrompt(today, c.catalog)},
					{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
				},
			},
		},
	}

	content, err := c.complete(ctx, "image", body)
	if err != nil {
		return nil, err
	}
	if vErr := c.schema.ValidatePayload(content); vErr != nil {
		c.logger.Warn().Err(vErr).Int("content_len", len(content)).Msg("image payload deviates from schema")
	}
	return content, nil
}

// Transcribe converts German speech to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("extractor: create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("extractor: write audio: %w", err)
	}
	for k, v := range map[string]string{
		"model":           c.cfg.TranscriptionModel,
		"language":        "de",
		"response_format": "json",
	} {
		if err := writer.WriteField(k, v); err != nil {
			return "", fmt.Errorf("extractor: write %s field: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("extractor: close multipart writer: %w", err)
	}

	raw, err := c.do(ctx, "speech", "/audio/transcriptions", writer.FormDataContentType(), body)
	if err != nil {
		return "", err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("extractor: decode transcription: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}

// complete posts a chat completion and returns the first choice's content.
// An answer without choices yields empty content rather than an error; the
// normalizer turns that into defaults.
func (c *Client) complete(ctx context.Context, mode string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("extractor: marshal request: %w", err)
	}

	raw, err := c.do(ctx, mode, "/chat/completions", "application/json", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("extractor: decode completion: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Warn().Str("mode", mode).Msg("completion without choices")
		return []byte{}, nil
	}
	return []byte(strings.TrimSpace(cc.Choices[0].Message.Content)), nil
}

func (c *Client) do(ctx context.Context, mode, path, contentType string, body io.Reader) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("extractor: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("req_id", reqID).Str("mode", mode).
			Dur("elapsed", time.Since(start)).Msg("extractor request failed")
		return nil, fmt.Errorf("extractor: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("extractor: read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		c.logger.Error().Str("req_id", reqID).Str("mode", mode).Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).Msg("extractor upstream error")
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	c.logger.Debug().Str("req_id", reqID).Str("mode", mode).Int("bytes", len(raw)).
		Dur("elapsed", time.Since(start)).Msg("extractor request ok")
	return raw, nil
}
