package driven

import (
	"context"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// MeetingStore persists meetings and the durable outputs of pipeline runs.
// All access is keyed by meeting id; runs for different meetings never share
// mutable state beyond this store.
type MeetingStore interface {
	// SaveMeeting stores or updates a meeting record.
	SaveMeeting(ctx context.Context, meeting *domain.Meeting) error

	// GetMeeting returns a meeting by id, or domain.ErrNotFound.
	GetMeeting(ctx context.Context, id string) (*domain.Meeting, error)

	// ListMeetings returns all meetings for a project, newest first.
	// An empty projectID lists every meeting.
	ListMeetings(ctx context.Context, projectID string) ([]domain.Meeting, error)

	// DeleteMeeting removes a meeting and its run outputs.
	DeleteMeeting(ctx context.Context, id string) error

	// SaveStatus replaces the meeting's processing status record.
	// Only the latest value is retained.
	SaveStatus(ctx context.Context, meetingID string, status domain.ProcessingStatus) error

	// GetStatus returns the latest processing status, or domain.ErrNotFound
	// when the meeting was never processed.
	GetStatus(ctx context.Context, meetingID string) (*domain.ProcessingStatus, error)

	// SaveAnalysis replaces the meeting's merged analysis wholesale.
	SaveAnalysis(ctx context.Context, meetingID string, analysis *domain.MergedAnalysis) error

	// GetAnalysis returns the stored analysis, or domain.ErrNotFound.
	GetAnalysis(ctx context.Context, meetingID string) (*domain.MergedAnalysis, error)

	// SaveTranscript replaces the meeting's transcript document.
	SaveTranscript(ctx context.Context, meetingID string, transcript *domain.TranscriptDocument) error

	// GetTranscript returns the stored transcript, or domain.ErrNotFound.
	GetTranscript(ctx context.Context, meetingID string) (*domain.TranscriptDocument, error)
}
