package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
)

// settleDelay is how long a new file must stay unchanged before it is
// considered fully copied into the inbox.
const settleDelay = 2 * time.Second

// audioExtensions are the recording formats accepted by the inbox watcher.
var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".aac":  true,
}

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and analyse recordings dropped into it",
	Long: `Watches a directory for new audio files and runs the analysis
pipeline on each one as it appears. Files are picked up once their size
stops changing, so partially copied recordings are not processed.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("project", "", "project to register meetings under")
	watchCmd.Flags().Int("speakers", 0, "expected number of speakers")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if meetingService == nil || orchestrator == nil {
		return errors.New("pipeline services not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %s is not a directory", dir)
	}

	project, _ := cmd.Flags().GetString("project") //nolint:errcheck // flag is declared above
	speakers, _ := cmd.Flags().GetInt("speakers")  //nolint:errcheck // flag is declared above

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Printf("Watching %s for recordings (Ctrl+C to stop)...\n", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isRecording(event.Name) {
				continue
			}
			if !waitUntilSettled(ctx, event.Name) {
				continue
			}

			if err := processDropped(ctx, cmd, event.Name, project, speakers); err != nil {
				cmd.PrintErrf("failed to process %s: %v\n", filepath.Base(event.Name), err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("watch error: %v\n", err)
		}
	}
}

// processDropped registers and analyses one dropped recording.
func processDropped(ctx context.Context, cmd *cobra.Command, path, project string, speakers int) error {
	meeting, err := meetingService.Register(ctx, driving.RegisterRequest{
		AudioPath:        path,
		ProjectID:        project,
		ExpectedSpeakers: speakers,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	cmd.Printf("Processing %s (%s)...\n", meeting.Title, meeting.ID)
	if err := orchestrator.Process(ctx, meeting.ID); err != nil {
		return err
	}
	cmd.Printf("Done: %s\n", meeting.ID)
	return nil
}

// isRecording reports whether the path looks like an audio file worth
// processing. Hidden files are skipped: editors and copy tools drop
// temporary dot-files in the inbox.
func isRecording(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return audioExtensions[strings.ToLower(filepath.Ext(base))]
}

// waitUntilSettled waits for the file size to stop changing. Returns false
// when the file disappears or the context is cancelled.
func waitUntilSettled(ctx context.Context, path string) bool {
	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(settleDelay):
		}

		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.Size() == lastSize {
			return true
		}
		lastSize = info.Size()
	}
}
