package tui

import "errors"

// ErrMissingMeetingService is returned when the meeting service is not provided.
var ErrMissingMeetingService = errors.New("tui: meeting service is required")

// ErrMissingPipelineOrchestrator is returned when the pipeline orchestrator is not provided.
var ErrMissingPipelineOrchestrator = errors.New("tui: pipeline orchestrator is required")
