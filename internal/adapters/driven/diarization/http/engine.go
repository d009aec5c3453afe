// Package http implements the diarization engine as a client for a
// pyannote-style sidecar service.
//
// The sidecar exposes POST /diarize accepting a multipart audio upload and
// returning speaker turns, plus GET /health for connectivity checks. Running
// pyannote in a sidecar keeps the heavyweight model dependencies out of this
// binary.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.DiarizationEngine = (*Engine)(nil)

// Defaults for the diarization sidecar.
const (
	// DefaultTimeout is generous: diarization of a long recording can
	// take several minutes.
	DefaultTimeout = 10 * time.Minute

	// minTurnDuration is the threshold below which a turn is merged into
	// an adjacent turn from the same speaker.
	minTurnDuration = 1.0
)

// Config holds configuration for the diarization sidecar client.
type Config struct {
	// Endpoint is the sidecar base URL (required).
	Endpoint string

	// AuthToken is an optional bearer token.
	AuthToken string

	// Timeout is the request timeout (default: 10m).
	Timeout time.Duration
}

// Engine calls the diarization sidecar over HTTP.
type Engine struct {
	client    *nethttp.Client
	endpoint  string
	authToken string
}

// diarizeResponse is the sidecar response format.
type diarizeResponse struct {
	Turns []struct {
		Speaker string  `json:"speaker"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
	} `json:"turns"`
}

// NewEngine creates a diarization sidecar client.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("diarization endpoint is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Engine{
		client: &nethttp.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:  cfg.Endpoint,
		authToken: cfg.AuthToken,
	}, nil
}

// Diarize uploads the recording and returns speaker turns sorted ascending
// by start time. Turns shorter than one second are merged into adjacent
// turns from the same speaker.
func (e *Engine) Diarize(ctx context.Context, audioPath string, expectedSpeakers int) ([]domain.Turn, error) {
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

	if expectedSpeakers > 0 {
		if err := writer.WriteField("num_speakers", strconv.Itoa(expectedSpeakers)); err != nil {
			return nil, fmt.Errorf("write num_speakers field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, e.endpoint+"/diarize", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.authToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: diarization: %w", domain.ErrEngineFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: diarization returned status %d", domain.ErrEngineFailure, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: diarization returned status %d: %s",
			domain.ErrEngineFailure, resp.StatusCode, string(respBody))
	}

	var decoded diarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}

	turns := make([]domain.Turn, 0, len(decoded.Turns))
	for _, t := range decoded.Turns {
		turns = append(turns, domain.Turn{
			Speaker: t.Speaker,
			Start:   t.Start,
			End:     t.End,
		})
	}

	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Start < turns[j].Start
	})

	return mergeShortTurns(turns, minTurnDuration), nil
}

// Ping validates the sidecar is reachable via its health endpoint.
func (e *Engine) Ping(ctx context.Context) error {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, e.endpoint+"/health", nethttp.NoBody)
	if err != nil {
		return fmt.Errorf("diarization: failed to create ping request: %w", err)
	}
	if e.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.authToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("diarization: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return fmt.Errorf("diarization: health check returned status %d", resp.StatusCode)
	}
	return nil
}

// mergeShortTurns folds turns shorter than minDuration into the previous
// turn when the speaker matches. Short turns with no same-speaker neighbour
// are kept as-is; dropping them would lose transcript coverage.
func mergeShortTurns(turns []domain.Turn, minDuration float64) []domain.Turn {
	if len(turns) < 2 {
		return turns
	}

	merged := make([]domain.Turn, 0, len(turns))
	merged = append(merged, turns[0])

	for _, t := range turns[1:] {
		last := &merged[len(merged)-1]
		if t.Duration() < minDuration && t.Speaker == last.Speaker && last.End >= t.Start {
			if t.End > last.End {
				last.End = t.End
			}
			continue
		}
		merged = append(merged, t)
	}

	return merged
}
