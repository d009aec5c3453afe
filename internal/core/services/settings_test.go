package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minute-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// settingsMockValidator records validation calls.
type settingsMockValidator struct {
	extractionErr    error
	transcriptionErr error
	extractionCalls  int
}

func (m *settingsMockValidator) ValidateExtraction(_ *domain.ExtractionSettings) error {
	m.extractionCalls++
	return m.extractionErr
}

func (m *settingsMockValidator) ValidateTranscription(_ *domain.TranscriptionSettings) error {
	return m.transcriptionErr
}

func TestSettingsService_Defaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.False(t, settings.Extraction.IsConfigured())
	assert.False(t, settings.Transcription.IsConfigured())
	assert.False(t, settings.Diarization.IsConfigured())
	assert.Equal(t, "fr", settings.Transcription.Language)
	assert.Equal(t, 15*time.Minute, settings.Pipeline.ChunkWindow)
	assert.Equal(t, 1, settings.Pipeline.ExtractParallelism)
}

func TestSettingsService_SetExtractionProvider(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, svc.SetExtractionProvider(domain.AIProviderAnthropic, "", "sk-test"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.Extraction.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.Extraction.Model) // provider default
	assert.Equal(t, "sk-test", settings.Extraction.APIKey)
	assert.Empty(t, settings.Extraction.BaseURL)
	assert.True(t, settings.Extraction.IsConfigured())
}

func TestSettingsService_SetExtractionProvider_LocalBaseURL(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, svc.SetExtractionProvider(domain.AIProviderOllama, "mistral", ""))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "mistral", settings.Extraction.Model)
	assert.Equal(t, "http://localhost:11434", settings.Extraction.BaseURL)
}

func TestSettingsService_SetExtractionProvider_Invalid(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	err := svc.SetExtractionProvider("mystery", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid extraction provider")

	err = svc.SetExtractionProvider(domain.AIProviderOpenAI, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestSettingsService_SetTranscriptionProvider(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, svc.SetTranscriptionProvider(domain.TranscriptionWhisper, "sk-test", "en"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.TranscriptionWhisper, settings.Transcription.Provider)
	assert.Equal(t, "en", settings.Transcription.Language)
	assert.True(t, settings.Transcription.IsConfigured())
}

func TestSettingsService_SetDiarizationEndpoint(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, svc.SetDiarizationEndpoint("http://localhost:9090", "token"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", settings.Diarization.Endpoint)
	assert.Equal(t, "token", settings.Diarization.AuthToken)
	assert.True(t, settings.Diarization.IsConfigured())
}

func TestSettingsService_Validate(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(), nil)

	err := svc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extraction provider is not configured")

	require.NoError(t, svc.SetExtractionProvider(domain.AIProviderOllama, "", ""))
	err = svc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription engine is not configured")

	require.NoError(t, svc.SetTranscriptionProvider(domain.TranscriptionWhisper, "sk-test", ""))
	require.NoError(t, svc.Validate())
}

func TestSettingsService_ValidateExtractionConfig(t *testing.T) {
	validator := &settingsMockValidator{extractionErr: errors.New("unreachable")}
	svc := NewSettingsService(memory.NewConfigStore(), validator)

	err := svc.ValidateExtractionConfig()
	require.Error(t, err)
	assert.Equal(t, 1, validator.extractionCalls)

	validator.extractionErr = nil
	require.NoError(t, svc.ValidateExtractionConfig())
}

func TestSettingsService_SavePreservesSecrets(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil)

	require.NoError(t, svc.SetExtractionProvider(domain.AIProviderOpenAI, "", "sk-secret"))

	// Saving settings without an API key must not blank the stored one.
	settings, err := svc.Get()
	require.NoError(t, err)
	settings.Extraction.APIKey = ""
	require.NoError(t, svc.Save(settings))

	reloaded, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", reloaded.Extraction.APIKey)
}

func TestSettingsService_PipelineTuning(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil)

	settings, err := svc.Get()
	require.NoError(t, err)
	settings.Pipeline.ChunkWindow = 10 * time.Minute
	settings.Pipeline.ExtractParallelism = 3
	settings.Pipeline.StageTimeout = 20 * time.Minute
	require.NoError(t, svc.Save(settings))

	reloaded, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, reloaded.Pipeline.ChunkWindow)
	assert.Equal(t, 3, reloaded.Pipeline.ExtractParallelism)
	assert.Equal(t, 20*time.Minute, reloaded.Pipeline.StageTimeout)
}
