package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProcessingInProgress indicates a pipeline run is already active
	// for the meeting. At most one run per meeting id may be active;
	// concurrent runs would interleave status writes and duplicate the
	// report output.
	ErrProcessingInProgress = errors.New("processing in progress")

	// ErrAudioUnreadable indicates the input recording is missing or cannot
	// be read. This is the only fatal input error: every downstream engine
	// failure degrades output quality instead of aborting the run.
	ErrAudioUnreadable = errors.New("audio file missing or unreadable")

	// ErrExtractionUnavailable indicates the extraction engine is not
	// configured. The pipeline completes with a degraded fallback analysis.
	ErrExtractionUnavailable = errors.New("extraction engine unavailable")

	// ErrEngineFailure indicates an external engine call failed. Stages
	// wrap it so the orchestrator can tell degraded-engine errors apart
	// from programming errors.
	ErrEngineFailure = errors.New("engine failure")

	// ErrStageTimeout indicates a pipeline stage exceeded its deadline.
	ErrStageTimeout = errors.New("stage timed out")

	// ErrRateLimited indicates the extraction API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
