// Package extraction provides factory functions for creating extraction
// engine adapters.
package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/minute-cli/internal/adapters/driven/extraction/anthropic"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/extraction/ollama"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/extraction/openai"
	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for engine connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEngine creates an extraction engine and validates
// connectivity. Returns the engine if successful, or an error with guidance.
func CreateAndValidateEngine(settings *domain.ExtractionSettings) (driven.ExtractionEngine, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	engine, err := CreateEngine(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'minute settings wizard' to fix",
			domain.ErrExtractionUnavailable, err)
	}

	if engine == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := engine.Ping(ctx); err != nil {
		engine.Close()
		return nil, fmt.Errorf("%w: engine unreachable (%w). Run 'minute settings wizard' to fix",
			domain.ErrExtractionUnavailable, err)
	}

	return engine, nil
}

// ValidateConfig validates an extraction configuration by creating an engine
// and pinging it. This is intended for use in the settings wizard to validate
// credentials on configuration.
func ValidateConfig(settings *domain.ExtractionSettings) error {
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
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return engine.Ping(ctx)
}

// CreateEngine creates the appropriate extraction engine based on settings.
// Returns nil if the provider is not configured.
func CreateEngine(settings *domain.ExtractionSettings) (driven.ExtractionEngine, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEngine(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEngine(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicEngine(settings)

	default:
		return nil, fmt.Errorf("unsupported extraction provider: %s", settings.Provider)
	}
}

// createOllamaEngine creates an Ollama extraction engine.
func createOllamaEngine(settings *domain.ExtractionSettings) driven.ExtractionEngine {
	return ollama.NewEngine(ollama.Config{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// createOpenAIEngine creates an OpenAI extraction engine.
func createOpenAIEngine(settings *domain.ExtractionSettings) (driven.ExtractionEngine, error) {
	return openai.NewEngine(openai.Config{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		RequestsPerMinute: settings.RequestsPerMinute,
	})
}

// createAnthropicEngine creates an Anthropic extraction engine.
func createAnthropicEngine(settings *domain.ExtractionSettings) (driven.ExtractionEngine, error) {
	return anthropic.NewEngine(anthropic.Config{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		RequestsPerMinute: settings.RequestsPerMinute,
	})
}
