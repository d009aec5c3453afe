package driving

import (
	"context"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// PipelineOrchestrator drives the meeting analysis pipeline. One meeting's
// run executes as a single background task; at most one run per meeting id
// is active at a time.
type PipelineOrchestrator interface {
	// Process runs the full pipeline for a meeting until it reaches the
	// done or error stage. It returns domain.ErrProcessingInProgress when
	// a run for the same meeting is already active. The run never aborts
	// on engine failures: those degrade output quality instead.
	Process(ctx context.Context, meetingID string) error

	// Status returns the latest persisted processing status.
	Status(ctx context.Context, meetingID string) (*domain.ProcessingStatus, error)

	// Active reports whether a run is currently executing for the meeting.
	Active(meetingID string) bool
}

// MeetingService manages meeting registration and access to run outputs.
type MeetingService interface {
	// Register creates a meeting record for a recording on disk and
	// returns it. The recording must exist and be readable.
	Register(ctx context.Context, req RegisterRequest) (*domain.Meeting, error)

	// Get returns a meeting by id.
	Get(ctx context.Context, id string) (*domain.Meeting, error)

	// List returns meetings, optionally filtered by project.
	List(ctx context.Context, projectID string) ([]domain.Meeting, error)

	// Analysis returns the stored merged analysis for a meeting.
	Analysis(ctx context.Context, id string) (*domain.MergedAnalysis, error)

	// Transcript returns the stored transcript document for a meeting.
	Transcript(ctx context.Context, id string) (*domain.TranscriptDocument, error)
}

// RegisterRequest carries the inputs for registering a meeting.
type RegisterRequest struct {
	ProjectID        string
	UserID           string
	Title            string
	Date             string
	AudioPath        string
	Instructions     string
	ExpectedSpeakers int
}
