package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRecording(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"wav file", "/inbox/reunion.wav", true},
		{"uppercase extension", "/inbox/REUNION.MP3", true},
		{"m4a file", "meeting.m4a", true},
		{"hidden file", "/inbox/.reunion.wav", false},
		{"text file", "/inbox/notes.txt", false},
		{"no extension", "/inbox/reunion", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRecording(tt.path))
		})
	}
}

func TestWaitUntilSettled(t *testing.T) {
	t.Run("stable file settles", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rec.wav")
		require.NoError(t, os.WriteFile(path, []byte("audio"), 0o600))

		assert.True(t, waitUntilSettled(context.Background(), path))
	})

	t.Run("missing file does not settle", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gone.wav")

		assert.False(t, waitUntilSettled(context.Background(), path))
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rec.wav")
		require.NoError(t, os.WriteFile(path, []byte("audio"), 0o600))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.False(t, waitUntilSettled(ctx, path))
	})
}

func TestWatchCmd_RejectsMissingDirectory(t *testing.T) {
	cleanupMeetings := setupMeetingTest(&mockMeetingService{})
	defer cleanupMeetings()
	cleanupOrch := setupOrchestratorTest(&mockOrchestrator{})
	defer cleanupOrch()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"watch", filepath.Join(t.TempDir(), "absent")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "watch directory")
}
