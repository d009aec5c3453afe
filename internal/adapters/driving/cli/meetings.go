package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered meetings",
	RunE:  runList,
}

var transcriptCmd = &cobra.Command{
	Use:   "transcript <meeting-id>",
	Short: "Show the aligned transcript of a processed meeting",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscript,
}

func init() {
	listCmd.Flags().String("project", "", "filter by project")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(transcriptCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if meetingService == nil {
		return errors.New("meeting service not configured")
	}

	project, _ := cmd.Flags().GetString("project") //nolint:errcheck // flag is declared above

	meetings, err := meetingService.List(cmd.Context(), project)
	if err != nil {
		return fmt.Errorf("list meetings: %w", err)
	}

	if len(meetings) == 0 {
		cmd.Println("No meetings registered.")
		return nil
	}

	cmd.Printf("%-36s  %-10s  %-10s  %s\n", "ID", "DATE", "STATUS", "TITLE")
	for _, m := range meetings {
		cmd.Printf("%-36s  %-10s  %-10s  %s\n", m.ID, m.Date, m.Status, m.Title)
	}
	cmd.Printf("\n%d meeting(s)\n", len(meetings))

	return nil
}

func runTranscript(cmd *cobra.Command, args []string) error {
	if meetingService == nil {
		return errors.New("meeting service not configured")
	}

	doc, err := meetingService.Transcript(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get transcript: %w", err)
	}

	for _, seg := range doc.Segments {
		total := int(seg.StartTime)
		cmd.Printf("[%02d:%02d] %s: %s\n", total/60, total%60, seg.Speaker, seg.Text)
	}

	if len(doc.Speakers) > 0 {
		cmd.Println()
		cmd.Println("Speaker statistics:")
		for speaker, stats := range doc.Speakers {
			cmd.Printf("  %s: %.0f%% (%d segments, %.0fs)\n",
				speaker, stats.Percentage, stats.SegmentCount, stats.TotalDuration)
		}
	}

	return nil
}
