// Package engines aggregates engine-level adapters shared across providers.
package engines

import (
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/extraction"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/transcription"
	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.EngineConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates engine provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new engine config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateExtraction validates an extraction configuration by pinging the provider.
func (v *ConfigValidator) ValidateExtraction(settings *domain.ExtractionSettings) error {
	return extraction.ValidateConfig(settings)
}

// ValidateTranscription validates a transcription configuration by pinging the provider.
func (v *ConfigValidator) ValidateTranscription(settings *domain.TranscriptionSettings) error {
	return transcription.ValidateConfig(settings)
}
