package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for chunk extraction.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// AllAIProviders returns the providers usable for extraction, in display
// order.
func AllAIProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultExtractionModels maps each provider to its default extraction model.
func DefaultExtractionModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// TranscriptionProvider identifies a speech-to-text engine.
type TranscriptionProvider string

// Available transcription providers.
const (
	// TranscriptionWhisper is the OpenAI Whisper API.
	TranscriptionWhisper TranscriptionProvider = "whisper"

	// TranscriptionGoogle is Google Cloud Speech-to-Text.
	TranscriptionGoogle TranscriptionProvider = "google"
)

// IsValid returns true if the transcription provider is recognised.
func (p TranscriptionProvider) IsValid() bool {
	return p == TranscriptionWhisper || p == TranscriptionGoogle
}

// Description returns a human-readable description of the provider.
func (p TranscriptionProvider) Description() string {
	switch p {
	case TranscriptionWhisper:
		return "OpenAI Whisper"
	case TranscriptionGoogle:
		return "Google Cloud Speech-to-Text"
	default:
		return unknownDescription
	}
}

// AllTranscriptionProviders returns the available transcription engines,
// in display order.
func AllTranscriptionProviders() []TranscriptionProvider {
	return []TranscriptionProvider{
		TranscriptionWhisper,
		TranscriptionGoogle,
	}
}

// String returns the string representation.
func (p TranscriptionProvider) String() string {
	return string(p)
}

// ExtractionSettings holds extraction engine configuration.
type ExtractionSettings struct {
	// Provider is the AI provider backing chunk extraction.
	Provider AIProvider

	// APIKey authenticates against cloud providers.
	APIKey string

	// Model is the model identifier (provider-specific default when empty).
	Model string

	// BaseURL overrides the provider endpoint (local or proxy setups).
	BaseURL string

	// RequestsPerMinute throttles extraction calls. Zero disables
	// client-side throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the settings identify a usable provider.
func (s *ExtractionSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// TranscriptionSettings holds speech-to-text configuration.
type TranscriptionSettings struct {
	// Provider selects the transcription engine.
	Provider TranscriptionProvider

	// APIKey authenticates the engine (Whisper key or Google API key).
	APIKey string

	// AccessToken is an optional OAuth2 access token for Google.
	AccessToken string

	// Language is the expected language code (default "fr").
	Language string
}

// IsConfigured returns true if the settings identify a usable engine.
func (s *TranscriptionSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	return s.APIKey != "" || s.AccessToken != ""
}

// DiarizationSettings holds speaker-diarization sidecar configuration.
type DiarizationSettings struct {
	// Endpoint is the base URL of the diarization service.
	Endpoint string

	// AuthToken is an optional bearer token for the service.
	AuthToken string
}

// IsConfigured returns true if a diarization endpoint is set.
func (s *DiarizationSettings) IsConfigured() bool {
	return s != nil && s.Endpoint != ""
}

// PipelineSettings tunes the analysis pipeline itself.
type PipelineSettings struct {
	// ChunkWindow is the extraction window length. Default 15 minutes.
	ChunkWindow time.Duration

	// ExtractParallelism bounds concurrent chunk extraction calls.
	// 1 means strictly sequential, which is the default.
	ExtractParallelism int

	// StageTimeout bounds each external-engine stage. Zero disables
	// per-stage deadlines.
	StageTimeout time.Duration
}

// DefaultPipelineSettings returns the pipeline defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		ChunkWindow:        15 * time.Minute,
		ExtractParallelism: 1,
	}
}

// AppSettings aggregates all configurable application settings.
type AppSettings struct {
	Extraction    ExtractionSettings
	Transcription TranscriptionSettings
	Diarization   DiarizationSettings
	Pipeline      PipelineSettings
}

// DefaultAppSettings returns the application defaults: no providers
// configured, default pipeline tuning, French transcription.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Transcription: TranscriptionSettings{
			Language: "fr",
		},
		Pipeline: DefaultPipelineSettings(),
	}
}
