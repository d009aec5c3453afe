package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

func TestServer_handleListMeetings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns meetings", func(t *testing.T) {
		mockMeetings := &mockMeetingService{
			meetings: []domain.Meeting{
				{
					ID:                   "m-1",
					ProjectID:            "proj-1",
					Title:                "Point hebdo",
					Date:                 "2026-08-20",
					Status:               domain.MeetingCompleted,
					Duration:             1847.5,
					ParticipantsDetected: []string{"SPEAKER_00", "SPEAKER_01"},
					ReportPath:           "/data/m-1/rapport.html",
				},
			},
		}

		ports := &Ports{Meetings: mockMeetings}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleListMeetings(ctx, nil, ListMeetingsInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Meetings, 1)
		assert.Equal(t, "m-1", output.Meetings[0].ID)
		assert.Equal(t, "Point hebdo", output.Meetings[0].Title)
		assert.Equal(t, "completed", output.Meetings[0].Status)
		assert.Equal(t, []string{"SPEAKER_00", "SPEAKER_01"}, output.Meetings[0].Participants)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockMeetings := &mockMeetingService{err: errors.New("store unavailable")}

		ports := &Ports{Meetings: mockMeetings}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleListMeetings(ctx, nil, ListMeetingsInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "store unavailable")
	})
}

func TestServer_handleGetAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("returns analysis", func(t *testing.T) {
		mockMeetings := &mockMeetingService{
			analysis: &domain.MergedAnalysis{
				Meta: map[string]any{"meetingType": "suivi de projet"},
				Sections: map[string][]domain.Item{
					"actionsUrgentes": {{Text: "Relancer le fournisseur"}},
				},
				Chronology: []string{"Ouverture", "Budget"},
				Metrics: domain.MergedMetrics{
					Quality:          "complète",
					SegmentsAnalyzed: 38,
					TotalSegments:    40,
				},
			},
		}

		ports := &Ports{Meetings: mockMeetings}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleGetAnalysis(ctx, nil, GetAnalysisInput{MeetingID: "m-1"})

		require.NoError(t, err)
		assert.Equal(t, "suivi de projet", output.Meta["meetingType"])
		assert.Len(t, output.Sections["actionsUrgentes"], 1)
		assert.Equal(t, []string{"Ouverture", "Budget"}, output.Chronology)
		assert.Equal(t, "complète", output.Quality)
		assert.Equal(t, 38, output.Analyzed)
		assert.Equal(t, 40, output.Total)
	})

	t.Run("requires meeting id", func(t *testing.T) {
		ports := &Ports{Meetings: &mockMeetingService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGetAnalysis(ctx, nil, GetAnalysisInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "meeting_id is required")
	})

	t.Run("propagates not found", func(t *testing.T) {
		mockMeetings := &mockMeetingService{err: domain.ErrNotFound}

		ports := &Ports{Meetings: mockMeetings}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGetAnalysis(ctx, nil, GetAnalysisInput{MeetingID: "missing"})

		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleGetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status with active flag", func(t *testing.T) {
		eta := 90
		mockPipeline := &mockPipelineOrchestrator{
			status: &domain.ProcessingStatus{
				Stage:                  domain.StageTranscribing,
				Progress:               40,
				Message:                "Transcription en cours...",
				EstimatedTimeRemaining: &eta,
			},
			active: true,
		}

		ports := &Ports{Meetings: &mockMeetingService{}, Pipeline: mockPipeline}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleGetStatus(ctx, nil, GetStatusInput{MeetingID: "m-1"})

		require.NoError(t, err)
		assert.Equal(t, "transcribing", output.Stage)
		assert.Equal(t, 40, output.Progress)
		assert.Equal(t, "Transcription en cours...", output.Message)
		assert.True(t, output.Active)
		require.NotNil(t, output.EstimatedSecondsRemaining)
		assert.Equal(t, 90, *output.EstimatedSecondsRemaining)
	})

	t.Run("errors without pipeline port", func(t *testing.T) {
		ports := &Ports{Meetings: &mockMeetingService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGetStatus(ctx, nil, GetStatusInput{MeetingID: "m-1"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available")
	})

	t.Run("requires meeting id", func(t *testing.T) {
		ports := &Ports{Meetings: &mockMeetingService{}, Pipeline: &mockPipelineOrchestrator{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGetStatus(ctx, nil, GetStatusInput{})

		require.Error(t, err)
	})
}
