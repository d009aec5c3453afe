package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <meeting-id>",
	Short: "Show the processing status of a meeting",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if orchestrator == nil {
		return errors.New("pipeline services not configured")
	}

	status, err := orchestrator.Status(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get status: %w", err)
	}

	cmd.Printf("Stage:    %s\n", status.Stage)
	cmd.Printf("Progress: %d%%\n", status.Progress)
	cmd.Printf("Message:  %s\n", status.Message)
	if eta := formatETA(status); eta != "" {
		cmd.Printf("ETA:      %s\n", eta)
	}
	if orchestrator.Active(args[0]) {
		cmd.Println("A run is currently active for this meeting.")
	}

	return nil
}
