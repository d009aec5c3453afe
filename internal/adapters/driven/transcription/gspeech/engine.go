// Package gspeech implements the transcription engine using Google Cloud
// Speech-to-Text v1.
//
// Recordings are sent inline as LINEAR16 content through the long-running
// recognize operation, which covers meetings beyond the one-minute limit of
// the synchronous endpoint.
package gspeech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.TranscriptionEngine = (*Engine)(nil)

const (
	// sampleRateHertz matches the normalized 16 kHz mono WAV format.
	sampleRateHertz = 16000

	// maxInlineBytes is the request size ceiling for inline audio content.
	maxInlineBytes = 10 * 1024 * 1024

	// pollInterval is how often the long-running operation is checked.
	pollInterval = 5 * time.Second

	serviceName = "google"
)

// Config holds configuration for the Google Speech engine.
type Config struct {
	// APIKey authenticates with an API key. Either APIKey or AccessToken
	// is required.
	APIKey string

	// AccessToken authenticates with an OAuth2 access token.
	AccessToken string
}

// Engine transcribes recordings via Google Cloud Speech-to-Text.
type Engine struct {
	svc *speech.Service
}

// NewEngine creates a Google Speech transcription engine.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	var opts []option.ClientOption
	switch {
	case cfg.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
		opts = append(opts, option.WithTokenSource(ts))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("google speech requires an API key or access token")
	}

	svc, err := speech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech service: %w", err)
	}

	return &Engine{svc: svc}, nil
}

// Transcribe sends the recording through a long-running recognize operation
// and converts the per-result word timings into timed segments.
func (e *Engine) Transcribe(ctx context.Context, audioPath, language string) (*domain.Transcription, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(data) > maxInlineBytes {
		return nil, fmt.Errorf("%w: audio exceeds inline content limit (%d bytes)",
			domain.ErrEngineFailure, len(data))
	}

	req := &speech.LongRunningRecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            sampleRateHertz,
			LanguageCode:               languageCode(language),
			EnableWordTimeOffsets:      true,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(data),
		},
	}

	op, err := e.svc.Speech.Longrunningrecognize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: google speech: %w", domain.ErrEngineFailure, err)
	}

	op, err = e.waitForOperation(ctx, op)
	if err != nil {
		return nil, err
	}

	var result speech.LongRunningRecognizeResponse
	if err := json.Unmarshal(op.Response, &result); err != nil {
		return nil, fmt.Errorf("decode recognize response: %w", err)
	}

	return buildTranscription(&result, language), nil
}

// waitForOperation polls the operation until it completes or ctx is done.
func (e *Engine) waitForOperation(ctx context.Context, op *speech.Operation) (*speech.Operation, error) {
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("google speech: %w", ctx.Err())
		case <-time.After(pollInterval):
		}

		var err error
		op, err = e.svc.Operations.Get(op.Name).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("%w: poll operation: %w", domain.ErrEngineFailure, err)
		}
	}

	if op.Error != nil {
		return nil, fmt.Errorf("%w: google speech: %s (code %d)",
			domain.ErrEngineFailure, op.Error.Message, op.Error.Code)
	}
	return op, nil
}

// Ping validates connectivity and credentials. The Speech API has no
// lightweight list endpoint, so this issues a recognize request with no
// audio: an invalid-argument rejection still proves the service is
// reachable and the credentials are accepted.
func (e *Engine) Ping(ctx context.Context) error {
	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: sampleRateHertz,
			LanguageCode:    "fr-FR",
		},
		Audio: &speech.RecognitionAudio{},
	}

	_, err := e.svc.Speech.Recognize(req).Context(ctx).Do()
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		return nil
	}
	return fmt.Errorf("google speech: ping failed: %w", err)
}

// buildTranscription flattens recognize results into timed segments, one
// per result, using word offsets for the segment boundaries.
func buildTranscription(resp *speech.LongRunningRecognizeResponse, language string) *domain.Transcription {
	var (
		segments []domain.TranscriptSegment
		parts    []string
		lastEnd  float64
	)

	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		text := strings.TrimSpace(alt.Transcript)
		if text == "" {
			continue
		}

		start := lastEnd
		end := parseOffset(result.ResultEndTime, lastEnd)
		if len(alt.Words) > 0 {
			start = parseOffset(alt.Words[0].StartTime, start)
			end = parseOffset(alt.Words[len(alt.Words)-1].EndTime, end)
		}
		lastEnd = end

		segments = append(segments, domain.TranscriptSegment{
			Start:      start,
			End:        end,
			Text:       text,
			Confidence: alt.Confidence,
		})
		parts = append(parts, text)
	}

	if segments == nil {
		segments = []domain.TranscriptSegment{}
	}

	return &domain.Transcription{
		Text:     strings.Join(parts, " "),
		Language: language,
		Segments: segments,
		Service:  serviceName,
	}
}

// parseOffset converts an API duration string ("12.340s") into seconds,
// falling back when the offset is absent.
func parseOffset(offset string, fallback float64) float64 {
	if offset == "" {
		return fallback
	}
	d, err := time.ParseDuration(offset)
	if err != nil {
		return fallback
	}
	return d.Seconds()
}

// languageCode widens a bare ISO 639-1 code into the BCP-47 form the API
// expects. Codes already carrying a region pass through unchanged.
func languageCode(language string) string {
	if language == "" {
		return "fr-FR"
	}
	if strings.Contains(language, "-") {
		return language
	}

	switch strings.ToLower(language) {
	case "fr":
		return "fr-FR"
	case "en":
		return "en-US"
	case "de":
		return "de-DE"
	case "es":
		return "es-ES"
	case "it":
		return "it-IT"
	default:
		return language
	}
}
