// Package transcription provides factory functions for creating
// transcription engine adapters.
package transcription

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/minute-cli/internal/adapters/driven/transcription/gspeech"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/transcription/whisper"
	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for engine connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEngine creates the appropriate transcription engine based on
// settings. Returns nil if the provider is not configured.
func CreateEngine(settings *domain.TranscriptionSettings) (driven.TranscriptionEngine, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.TranscriptionWhisper:
		return whisper.NewEngine(whisper.Config{
			APIKey: settings.APIKey,
		})

	case domain.TranscriptionGoogle:
		return gspeech.NewEngine(context.Background(), gspeech.Config{
			APIKey:      settings.APIKey,
			AccessToken: settings.AccessToken,
		})

	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", settings.Provider)
	}
}

// CreateAndValidateEngine creates a transcription engine and validates
// connectivity. Returns the engine if successful, or an error with guidance.
func CreateAndValidateEngine(settings *domain.TranscriptionSettings) (driven.TranscriptionEngine, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	engine, err := CreateEngine(settings)
	if err != nil {
		return nil, fmt.Errorf("transcription engine: %w. Run 'minute settings wizard' to fix", err)
	}
	if engine == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := engine.Ping(ctx); err != nil {
		return nil, fmt.Errorf("transcription engine unreachable (%w). Run 'minute settings wizard' to fix", err)
	}

	return engine, nil
}

// ValidateConfig validates a transcription configuration by creating an
// engine and pinging it. Used by the settings wizard.
func ValidateConfig(settings *domain.TranscriptionSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	engine, err := CreateEngine(settings)
	if err != nil {
		return err
	}
	if engine == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return engine.Ping(ctx)
}
