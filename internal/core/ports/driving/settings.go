package driving

import "github.com/custodia-labs/minute-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetExtractionProvider configures the extraction provider.
	SetExtractionProvider(provider domain.AIProvider, model, apiKey string) error

	// SetTranscriptionProvider configures the transcription engine.
	SetTranscriptionProvider(provider domain.TranscriptionProvider, apiKey, language string) error

	// SetDiarizationEndpoint configures the diarization sidecar.
	SetDiarizationEndpoint(endpoint, authToken string) error

	// Validate checks if current settings allow a pipeline run.
	Validate() error

	// ValidateExtractionConfig validates the current extraction
	// configuration by pinging the provider.
	ValidateExtractionConfig() error

	// ValidateTranscriptionConfig validates the current transcription
	// configuration by pinging the provider.
	ValidateTranscriptionConfig() error
}
