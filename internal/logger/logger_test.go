package logger

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be enabled")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be disabled")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("Status updated - %s: %d%% - %s", "transcription", 40, "Transcribing audio")

	got := buf.String()
	if !strings.Contains(got, "[DEBUG] Status updated - transcription: 40% - Transcribing audio") {
		t.Errorf("unexpected output: %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("expected trailing newline, got %q", got)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("Duration probe failed for %s: %v", "meeting.m4a", "ffprobe not found")

	if buf.Len() != 0 {
		t.Errorf("expected no output when not verbose, got %q", buf.String())
	}
}

func TestInfo(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("Registered meeting %s (%s)", "mtg_01HZX", "chantier")

	if got := buf.String(); got != "[INFO] Registered meeting mtg_01HZX (chantier)\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestWarn(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Warn("Stage %s degraded: %s", "diarization", "pyannote unavailable")

	if got := buf.String(); !strings.Contains(got, "[WARN] Stage diarization degraded: pyannote unavailable") {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	// Status checkpoints arrive from the pipeline goroutine while other
	// callers read the verbosity flag. Must not race.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(3)
		go func(n int) {
			defer wg.Done()
			Debug("Status updated - %s: %d%% - %s", "analysis", n*10, "Analyzing chunk")
		}(i)
		go func(n int) {
			defer wg.Done()
			Warn("Failed to persist status %s/%d for meeting %s: %v", "analysis", n*10, "mtg_01HZX", fmt.Errorf("disk full"))
		}(i)
		go func() {
			defer wg.Done()
			IsVerbose()
		}()
	}
	wg.Wait()
}
