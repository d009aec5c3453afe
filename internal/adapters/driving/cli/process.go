package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
)

var processCmd = &cobra.Command{
	Use:   "process <audio-file>",
	Short: "Analyse a meeting recording",
	Long: `Registers a recording and runs the full analysis pipeline on it:
normalization, speaker diarization, transcription, AI extraction and report
generation. Progress is displayed while the pipeline runs.

Unavailable engines degrade the analysis instead of failing it; only a
missing or unreadable audio file aborts the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("title", "", "meeting title (default: file name)")
	processCmd.Flags().String("project", "", "project the meeting belongs to")
	processCmd.Flags().String("date", "", "meeting date, YYYY-MM-DD (default: today)")
	processCmd.Flags().Int("speakers", 0, "expected number of speakers")
	processCmd.Flags().String("instructions", "", "free-form directives for the analysis")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if meetingService == nil || orchestrator == nil {
		return errors.New("pipeline services not configured")
	}

	req := driving.RegisterRequest{AudioPath: args[0]}
	req.Title, _ = cmd.Flags().GetString("title")                //nolint:errcheck // flag is declared above
	req.ProjectID, _ = cmd.Flags().GetString("project")          //nolint:errcheck // flag is declared above
	req.Date, _ = cmd.Flags().GetString("date")                  //nolint:errcheck // flag is declared above
	req.ExpectedSpeakers, _ = cmd.Flags().GetInt("speakers")     //nolint:errcheck // flag is declared above
	req.Instructions, _ = cmd.Flags().GetString("instructions")  //nolint:errcheck // flag is declared above

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	meeting, err := meetingService.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("register meeting: %w", err)
	}
	cmd.Printf("Meeting registered: %s (%s)\n", meeting.Title, meeting.ID)

	if err := processWithProgress(ctx, cmd, meeting.ID); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	processed, err := meetingService.Get(ctx, meeting.ID)
	if err != nil {
		return fmt.Errorf("get meeting: %w", err)
	}

	cmd.Println("Processing complete.")
	if len(processed.ParticipantsDetected) > 0 {
		cmd.Printf("Speakers detected: %d\n", len(processed.ParticipantsDetected))
	}
	if processed.ReportPath != "" {
		cmd.Printf("Report: %s\n", processed.ReportPath)
	}
	cmd.Printf("View the analysis with: minute analysis show %s\n", meeting.ID)

	return nil
}

// processWithProgress runs the pipeline while displaying status updates.
func processWithProgress(ctx context.Context, cmd *cobra.Command, meetingID string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- orchestrator.Process(ctx, meetingID)
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastMessage string
	for {
		select {
		case err := <-errCh:
			status, statusErr := orchestrator.Status(ctx, meetingID)
			if statusErr == nil && status != nil {
				cmd.Printf("\r[%3d%%] %s\n", status.Progress, status.Message)
			}
			return err
		case <-ticker.C:
			status, statusErr := orchestrator.Status(ctx, meetingID)
			if statusErr != nil || status == nil {
				continue
			}
			if status.Message != lastMessage {
				cmd.Printf("\r[%3d%%] %s", status.Progress, status.Message)
				if eta := formatETA(status); eta != "" {
					cmd.Printf(" (%s)", eta)
				}
				lastMessage = status.Message
			}
		}
	}
}

// formatETA renders the remaining-time estimate, empty when unknown.
func formatETA(status *domain.ProcessingStatus) string {
	if status.EstimatedTimeRemaining == nil || *status.EstimatedTimeRemaining <= 0 {
		return ""
	}
	remaining := *status.EstimatedTimeRemaining
	if remaining < 60 {
		return fmt.Sprintf("~%ds restants", remaining)
	}
	return fmt.Sprintf("~%dmin restantes", (remaining+30)/60)
}
