// Package ffmpeg implements audio normalization and duration probing by
// shelling out to the ffmpeg and ffprobe binaries.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure Normalizer implements the interface.
var _ driven.AudioNormalizer = (*Normalizer)(nil)

// Target format for downstream engines: 16 kHz mono 16-bit PCM WAV.
const (
	targetSampleRate = 16000
	targetChannels   = 1
	targetCodec      = "pcm_s16le"
)

// Config holds configuration for the ffmpeg normalizer.
type Config struct {
	// FFmpegPath is the ffmpeg binary (default: "ffmpeg" from PATH).
	FFmpegPath string

	// FFprobePath is the ffprobe binary (default: "ffprobe" from PATH).
	FFprobePath string
}

// Normalizer converts recordings to the standard processing format.
type Normalizer struct {
	ffmpeg  string
	ffprobe string
}

// NewNormalizer creates an ffmpeg-backed audio normalizer.
func NewNormalizer(cfg Config) *Normalizer {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}

	return &Normalizer{
		ffmpeg:  cfg.FFmpegPath,
		ffprobe: cfg.FFprobePath,
	}
}

// Normalize converts the recording at rawPath into a 16 kHz mono WAV inside
// workDir and returns the path of the normalized file.
func (n *Normalizer) Normalize(ctx context.Context, rawPath, workDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(rawPath), filepath.Ext(rawPath))
	outPath := filepath.Join(workDir, base+"_normalized.wav")

	cmd := exec.CommandContext(ctx, n.ffmpeg,
		"-y", // overwrite a stale output from a previous run
		"-i", rawPath,
		"-ar", strconv.Itoa(targetSampleRate),
		"-ac", strconv.Itoa(targetChannels),
		"-acodec", targetCodec,
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: ffmpeg normalize: %w (%s)",
			domain.ErrEngineFailure, err, lastLine(stderr.String()))
	}

	return outPath, nil
}

// probeOutput is the subset of ffprobe JSON output we care about.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the recording length in seconds, probed with ffprobe.
func (n *Normalizer) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, n.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %w (%s)",
			domain.ErrEngineFailure, err, lastLine(stderr.String()))
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}

	if out.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", out.Format.Duration, err)
	}

	return duration, nil
}

// lastLine extracts the final non-empty line of command output. ffmpeg
// buries the actual error under pages of banner text.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
