// Command minute turns recorded meetings into structured analysis reports.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/minute-cli/internal/adapters/driven/audio/ffmpeg"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/config/file"
	diarization "github.com/custodia-labs/minute-cli/internal/adapters/driven/diarization/http"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/engines"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/extraction"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/report/html"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/minute-cli/internal/adapters/driven/transcription"
	"github.com/custodia-labs/minute-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
	"github.com/custodia-labs/minute-cli/internal/core/services"
	"github.com/custodia-labs/minute-cli/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initializing config store: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("initializing meeting store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	settingsService := services.NewSettingsService(configStore, engines.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	normalizer := ffmpeg.NewNormalizer(ffmpeg.Config{})
	renderer := html.NewRenderer()

	// Unconfigured or unreachable engines stay nil: the pipeline degrades
	// the corresponding stage instead of refusing to start.
	extractionEngine, err := extraction.CreateEngine(&settings.Extraction)
	if err != nil {
		logger.Warn("extraction engine unavailable: %v", err)
	}

	transcriptionEngine, err := transcription.CreateEngine(&settings.Transcription)
	if err != nil {
		logger.Warn("transcription engine unavailable: %v", err)
	}

	var diarizationEngine driven.DiarizationEngine
	if settings.Diarization.IsConfigured() {
		engine, err := diarization.NewEngine(diarization.Config{
			Endpoint:  settings.Diarization.Endpoint,
			AuthToken: settings.Diarization.AuthToken,
		})
		if err != nil {
			logger.Warn("diarization engine unavailable: %v", err)
		} else {
			diarizationEngine = engine
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home directory: %w", err)
	}
	workDir := filepath.Join(home, ".minute", "meetings")

	meetingService := services.NewMeetingService(store, normalizer)
	orchestrator := services.NewPipelineOrchestrator(
		store,
		normalizer,
		diarizationEngine,
		transcriptionEngine,
		extractionEngine,
		renderer,
		settings.Pipeline,
		workDir,
	)

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Meetings: meetingService,
		Pipeline: orchestrator,
		Settings: settingsService,
	})

	return cli.Execute()
}
