// Package whisper implements the transcription engine using the OpenAI
// Whisper API (audio/transcriptions, verbose_json response format).
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.TranscriptionEngine = (*Engine)(nil)

// Defaults for the Whisper API.
const (
	// DefaultBaseURL is the OpenAI API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the Whisper transcription model.
	DefaultModel = "whisper-1"

	// DefaultTimeout covers uploading and transcribing a long recording.
	DefaultTimeout = 10 * time.Minute

	// maxUploadBytes is the API's per-file limit (25 MB).
	maxUploadBytes = 25 * 1024 * 1024

	serviceName = "whisper"
)

// Config holds configuration for the Whisper transcription engine.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the transcription model (default: whisper-1).
	Model string

	// Timeout is the request timeout (default: 10m).
	Timeout time.Duration
}

// Engine transcribes recordings via the Whisper API.
type Engine struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// verboseResponse is the Whisper verbose_json response format.
type verboseResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// NewEngine creates a Whisper transcription engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("whisper API key is required")
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

	return &Engine{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Transcribe uploads the recording and returns the timed transcription.
// language is the expected language code; empty means engine default.
func (e *Engine) Transcribe(ctx context.Context, audioPath, language string) (*domain.Transcription, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}
	if info.Size() > maxUploadBytes {
		// TODO: split oversized recordings into chunks and stitch the
		// timestamps, like the 25MB path the API forces on long meetings.
		return nil, fmt.Errorf("%w: audio exceeds whisper upload limit (%d bytes)",
			domain.ErrEngineFailure, info.Size())
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}

	fields := map[string]string{
		"model":           e.model,
		"response_format": "verbose_json",
	}
	if language != "" {
		fields["language"] = language
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write %s field: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: whisper: %w", domain.ErrEngineFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: whisper returned status %d", domain.ErrEngineFailure, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: whisper returned status %d: %s",
			domain.ErrEngineFailure, resp.StatusCode, string(respBody))
	}

	var decoded verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(decoded.Segments))
	for _, s := range decoded.Segments {
		segments = append(segments, domain.TranscriptSegment{
			Start:      s.Start,
			End:        s.End,
			Text:       strings.TrimSpace(s.Text),
			Confidence: s.AvgLogprob,
		})
	}

	lang := decoded.Language
	if lang == "" {
		lang = language
	}

	return &domain.Transcription{
		Text:     decoded.Text,
		Language: lang,
		Segments: segments,
		Service:  serviceName,
	}, nil
}

// Ping validates the API is reachable by listing models.
func (e *Engine) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("whisper: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("whisper: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whisper: API returned status %d", resp.StatusCode)
	}
	return nil
}
