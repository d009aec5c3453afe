package driven

import "github.com/custodia-labs/minute-cli/internal/core/domain"

// EngineConfigValidator validates engine configurations by reaching the
// configured provider. Used by the settings wizard before persisting.
type EngineConfigValidator interface {
	// ValidateExtraction validates an extraction configuration.
	ValidateExtraction(settings *domain.ExtractionSettings) error

	// ValidateTranscription validates a transcription configuration.
	ValidateTranscription(settings *domain.TranscriptionSettings) error
}
