package driven

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// AudioNormalizer prepares a recording for the downstream engines.
type AudioNormalizer interface {
	// Normalize converts the recording at rawPath into the standard
	// processing format (16 kHz mono WAV) inside workDir and returns the
	// path of the normalized file.
	Normalize(ctx context.Context, rawPath, workDir string) (string, error)

	// Duration returns the recording length in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}

// DiarizationEngine assigns time-stamped speaker labels to a recording.
type DiarizationEngine interface {
	// Diarize returns speaker turns sorted ascending by start time.
	// expectedSpeakers is a hint; zero means unknown.
	Diarize(ctx context.Context, audioPath string, expectedSpeakers int) ([]domain.Turn, error)

	// Ping validates the engine is reachable.
	Ping(ctx context.Context) error
}

// TranscriptionEngine converts a recording into timed text segments.
type TranscriptionEngine interface {
	// Transcribe returns the transcription of the recording. language is
	// the expected language code; empty means engine default.
	Transcribe(ctx context.Context, audioPath, language string) (*domain.Transcription, error)

	// Ping validates the engine is reachable.
	Ping(ctx context.Context) error
}

// ExtractionEngine runs one structured-extraction pass over a chunk's
// formatted transcript. The raw JSON payload is canonicalized by the
// fragment validator before it reaches the merger.
type ExtractionEngine interface {
	// ExtractFragment analyses one chunk transcript and returns the raw
	// extraction payload. instructions are free-form user directives
	// included in the prompt.
	ExtractFragment(ctx context.Context, transcript, instructions string, window domain.ChunkWindow) (json.RawMessage, error)

	// ModelName returns the model identifier used for extraction.
	ModelName() string

	// Ping validates the engine is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ReportRenderer produces a document artifact from the merged analysis.
// It sits downstream of the pipeline; rendering failures never fail a run.
type ReportRenderer interface {
	// Render writes the report artifact and returns its path.
	Render(ctx context.Context, analysis *domain.MergedAnalysis, segments []domain.Segment, info domain.MeetingInfo, outDir string) (string, error)
}
