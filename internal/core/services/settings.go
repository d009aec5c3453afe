package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAIProvider     = "ai.provider"
	keyAIModel        = "ai.model"
	keyAIBaseURL      = "ai.base_url"
	keyAIAPIKey       = "ai.api_key"
	keyAIRequestsPM   = "ai.requests_per_minute"
	keyTransProvider  = "transcription.provider"
	keyTransAPIKey    = "transcription.api_key"
	keyTransToken     = "transcription.access_token"
	keyTransLanguage  = "transcription.language"
	keyDiarEndpoint   = "diarization.endpoint"
	keyDiarAuthToken  = "diarization.auth_token"
	keyChunkMinutes   = "pipeline.chunk_minutes"
	keyParallelism    = "pipeline.extract_parallelism"
	keyStageTimeoutMn = "pipeline.stage_timeout_minutes"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EngineConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EngineConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Extraction: domain.ExtractionSettings{
			Provider:          domain.AIProvider(s.configStore.GetString(keyAIProvider)),
			Model:             s.configStore.GetString(keyAIModel),
			BaseURL:           s.configStore.GetString(keyAIBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyAIAPIKey),
			RequestsPerMinute: s.configStore.GetInt(keyAIRequestsPM),
		},
		Transcription: domain.TranscriptionSettings{
			Provider:    domain.TranscriptionProvider(s.configStore.GetString(keyTransProvider)),
			APIKey:      s.configStore.GetString(keyTransAPIKey),
			AccessToken: s.configStore.GetString(keyTransToken),
			Language:    s.getString(keyTransLanguage, defaults.Transcription.Language),
		},
		Diarization: domain.DiarizationSettings{
			Endpoint:  s.configStore.GetString(keyDiarEndpoint),
			AuthToken: s.configStore.GetString(keyDiarAuthToken),
		},
		Pipeline: domain.PipelineSettings{
			ChunkWindow:        s.getMinutes(keyChunkMinutes, defaults.Pipeline.ChunkWindow),
			ExtractParallelism: s.getInt(keyParallelism, defaults.Pipeline.ExtractParallelism),
			StageTimeout:       s.getMinutes(keyStageTimeoutMn, defaults.Pipeline.StageTimeout),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyAIProvider, settings.Extraction.Provider.String()); err != nil {
		return fmt.Errorf("save ai provider: %w", err)
	}
	if err := s.configStore.Set(keyAIModel, settings.Extraction.Model); err != nil {
		return fmt.Errorf("save ai model: %w", err)
	}
	if err := s.configStore.Set(keyAIBaseURL, settings.Extraction.BaseURL); err != nil {
		return fmt.Errorf("save ai base_url: %w", err)
	}
	if settings.Extraction.APIKey != "" {
		if err := s.configStore.Set(keyAIAPIKey, settings.Extraction.APIKey); err != nil {
			return fmt.Errorf("save ai api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyAIRequestsPM, settings.Extraction.RequestsPerMinute); err != nil {
		return fmt.Errorf("save ai requests_per_minute: %w", err)
	}

	if err := s.configStore.Set(keyTransProvider, settings.Transcription.Provider.String()); err != nil {
		return fmt.Errorf("save transcription provider: %w", err)
	}
	if settings.Transcription.APIKey != "" {
		if err := s.configStore.Set(keyTransAPIKey, settings.Transcription.APIKey); err != nil {
			return fmt.Errorf("save transcription api_key: %w", err)
		}
	}
	if settings.Transcription.AccessToken != "" {
		if err := s.configStore.Set(keyTransToken, settings.Transcription.AccessToken); err != nil {
			return fmt.Errorf("save transcription access_token: %w", err)
		}
	}
	if err := s.configStore.Set(keyTransLanguage, settings.Transcription.Language); err != nil {
		return fmt.Errorf("save transcription language: %w", err)
	}

	if err := s.configStore.Set(keyDiarEndpoint, settings.Diarization.Endpoint); err != nil {
		return fmt.Errorf("save diarization endpoint: %w", err)
	}
	if settings.Diarization.AuthToken != "" {
		if err := s.configStore.Set(keyDiarAuthToken, settings.Diarization.AuthToken); err != nil {
			return fmt.Errorf("save diarization auth_token: %w", err)
		}
	}

	if err := s.configStore.Set(keyChunkMinutes, int(settings.Pipeline.ChunkWindow/time.Minute)); err != nil {
		return fmt.Errorf("save pipeline chunk_minutes: %w", err)
	}
	if err := s.configStore.Set(keyParallelism, settings.Pipeline.ExtractParallelism); err != nil {
		return fmt.Errorf("save pipeline extract_parallelism: %w", err)
	}
	if err := s.configStore.Set(keyStageTimeoutMn, int(settings.Pipeline.StageTimeout/time.Minute)); err != nil {
		return fmt.Errorf("save pipeline stage_timeout_minutes: %w", err)
	}

	return nil
}

// SetExtractionProvider configures the extraction provider.
func (s *SettingsService) SetExtractionProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid extraction provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Extraction.Provider = provider

	if model != "" {
		settings.Extraction.Model = model
	} else if defaultModel, ok := domain.DefaultExtractionModels()[provider]; ok {
		settings.Extraction.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.Extraction.BaseURL == "" {
			settings.Extraction.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Extraction.BaseURL = ""
	}

	settings.Extraction.APIKey = apiKey

	return s.Save(settings)
}

// SetTranscriptionProvider configures the transcription engine.
func (s *SettingsService) SetTranscriptionProvider(provider domain.TranscriptionProvider, apiKey, language string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid transcription provider: %s", provider)
	}
	if apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Transcription.Provider = provider
	settings.Transcription.APIKey = apiKey
	if language != "" {
		settings.Transcription.Language = language
	}

	return s.Save(settings)
}

// SetDiarizationEndpoint configures the diarization sidecar.
func (s *SettingsService) SetDiarizationEndpoint(endpoint, authToken string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Diarization.Endpoint = endpoint
	settings.Diarization.AuthToken = authToken

	return s.Save(settings)
}

// Validate checks if current settings allow a pipeline run. Extraction and
// transcription configuration are required; diarization is optional because
// the pipeline degrades to synthetic turns without it.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Extraction.IsConfigured() {
		return fmt.Errorf("extraction provider is not configured")
	}
	if !settings.Transcription.IsConfigured() {
		return fmt.Errorf("transcription engine is not configured")
	}

	return nil
}

// ValidateExtractionConfig validates the current extraction configuration
// by pinging the provider.
func (s *SettingsService) ValidateExtractionConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateExtraction(&settings.Extraction)
}

// ValidateTranscriptionConfig validates the current transcription
// configuration by pinging the provider.
func (s *SettingsService) ValidateTranscriptionConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateTranscription(&settings.Transcription)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v := s.configStore.GetInt(key); v != 0 {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	if v := s.configStore.GetInt(key); v != 0 {
		return time.Duration(v) * time.Minute
	}
	return defaultVal
}
