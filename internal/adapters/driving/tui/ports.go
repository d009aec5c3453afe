// Package tui provides an interactive terminal user interface for minute.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Meetings grants access to registered meetings and their outputs.
	Meetings driving.MeetingService

	// Pipeline reports processing status for running and finished runs.
	Pipeline driving.PipelineOrchestrator
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Meetings == nil {
		return ErrMissingMeetingService
	}
	if p.Pipeline == nil {
		return ErrMissingPipelineOrchestrator
	}
	return nil
}
