// Package cli implements the cobra command tree driving the application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
	"github.com/custodia-labs/minute-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute runs. Commands check for nil so
// a partially wired binary fails with a clear message instead of panicking.
var (
	meetingService  driving.MeetingService
	orchestrator    driving.PipelineOrchestrator
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "minute",
	Short: "Meeting audio analysis for construction site reviews",
	Long: `Minute turns recorded meetings into structured reports.

It runs a recording through speaker diarization, transcription and
AI-assisted extraction, then merges the per-window results into a single
analysis with an HTML report. Engine failures degrade the output instead
of failing the run.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		v, _ := cmd.Flags().GetBool("verbose") //nolint:errcheck // flag is declared below
		logger.SetVerbose(v)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
}

// Services aggregates the driving ports the CLI commands need.
type Services struct {
	Meetings driving.MeetingService
	Pipeline driving.PipelineOrchestrator
	Settings driving.SettingsService
}

// SetServices injects the core services into the command tree.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	meetingService = s.Meetings
	orchestrator = s.Pipeline
	settingsService = s.Settings
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
