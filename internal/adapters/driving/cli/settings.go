package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, transcription engines and pipeline
options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsAICmd = &cobra.Command{
	Use:   "ai",
	Short: "Configure the extraction provider",
	Long:  `Configure the AI provider used for chunk extraction.`,
	RunE:  runSettingsAI,
}

var settingsTranscriptionCmd = &cobra.Command{
	Use:   "transcription",
	Short: "Configure the transcription engine",
	RunE:  runSettingsTranscription,
}

var settingsDiarizationCmd = &cobra.Command{
	Use:   "diarization",
	Short: "Configure the diarization sidecar",
	RunE:  runSettingsDiarization,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsAICmd)
	settingsCmd.AddCommand(settingsTranscriptionCmd)
	settingsCmd.AddCommand(settingsDiarizationCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Provider: %s\n", settings.Extraction.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Extraction.Model)
	if settings.Extraction.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Extraction.BaseURL)
	}
	if settings.Extraction.Provider.RequiresAPIKey() {
		if settings.Extraction.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Extraction.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.Extraction.RequestsPerMinute > 0 {
		cmd.Printf("  Rate limit: %d req/min\n", settings.Extraction.RequestsPerMinute)
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Extraction.IsConfigured()))
	cmd.Println()

	cmd.Println("[Transcription]")
	cmd.Printf("  Provider: %s\n", settings.Transcription.Provider.Description())
	cmd.Printf("  Language: %s\n", settings.Transcription.Language)
	if settings.Transcription.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Transcription.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Transcription.IsConfigured()))
	cmd.Println()

	cmd.Println("[Diarization]")
	if settings.Diarization.Endpoint != "" {
		cmd.Printf("  Endpoint: %s\n", settings.Diarization.Endpoint)
	} else {
		cmd.Printf("  Endpoint: (not set, speaker detection will be degraded)\n")
	}
	cmd.Printf("  Status: %s\n", configuredLabel(settings.Diarization.IsConfigured()))
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Chunk window: %s\n", settings.Pipeline.ChunkWindow)
	cmd.Printf("  Extract parallelism: %d\n", settings.Pipeline.ExtractParallelism)
	if settings.Pipeline.StageTimeout > 0 {
		cmd.Printf("  Stage timeout: %s\n", settings.Pipeline.StageTimeout)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'minute settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Minute Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Step 1: Configure Extraction Provider")
	cmd.Println("-------------------------------------")
	if err := configureExtractionProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Transcription Engine")
	cmd.Println("--------------------------------------")
	if err := configureTranscriptionProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure Diarization Sidecar (optional)")
	cmd.Println("------------------------------------------------")
	cmd.Println("Leave empty to skip; speaker detection then falls back to")
	cmd.Println("synthetic alternating speakers.")
	if err := configureDiarization(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsAI(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureExtractionProvider(cmd, bufio.NewReader(os.Stdin))
}

func runSettingsTranscription(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureTranscriptionProvider(cmd, bufio.NewReader(os.Stdin))
}

func runSettingsDiarization(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureDiarization(cmd, bufio.NewReader(os.Stdin))
}

func configureExtractionProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Extraction Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultExtractionModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetExtractionProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure extraction provider: %w", err)
	}

	// Validate the configuration by pinging the provider
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateExtractionConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("extraction configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Extraction provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureTranscriptionProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Transcription Engine")
	providers := domain.AllTranscriptionProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this engine")
	}

	cmd.Print("Enter language code [fr]: ")
	language := readLine(reader)
	if language == "" {
		language = "fr"
	}

	if err := settingsService.SetTranscriptionProvider(selectedProvider, apiKey, language); err != nil {
		return fmt.Errorf("failed to configure transcription engine: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateTranscriptionConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("transcription configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Transcription engine configured: %s\n\n", selectedProvider.Description())
	return nil
}

func configureDiarization(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Print("Enter diarization endpoint (empty to skip): ")
	endpoint := readLine(reader)

	var token string
	if endpoint != "" {
		cmd.Print("Enter auth token (empty if none): ")
		token = readPassword()
		cmd.Println()
	}

	if err := settingsService.SetDiarizationEndpoint(endpoint, token); err != nil {
		return fmt.Errorf("failed to configure diarization: %w", err)
	}

	if endpoint != "" {
		cmd.Printf("Diarization sidecar configured: %s\n\n", endpoint)
	} else {
		cmd.Println("Diarization skipped.")
		cmd.Println()
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
