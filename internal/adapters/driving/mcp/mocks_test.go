package mcp

import (
	"context"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
)

// mockMeetingService is a mock implementation of driving.MeetingService.
type mockMeetingService struct {
	meetings   []domain.Meeting
	meeting    *domain.Meeting
	analysis   *domain.MergedAnalysis
	transcript *domain.TranscriptDocument
	err        error
}

func (m *mockMeetingService) Register(_ context.Context, _ driving.RegisterRequest) (*domain.Meeting, error) {
	return m.meeting, m.err
}

func (m *mockMeetingService) Get(_ context.Context, _ string) (*domain.Meeting, error) {
	return m.meeting, m.err
}

func (m *mockMeetingService) List(_ context.Context, _ string) ([]domain.Meeting, error) {
	return m.meetings, m.err
}

func (m *mockMeetingService) Analysis(_ context.Context, _ string) (*domain.MergedAnalysis, error) {
	return m.analysis, m.err
}

func (m *mockMeetingService) Transcript(_ context.Context, _ string) (*domain.TranscriptDocument, error) {
	return m.transcript, m.err
}

// mockPipelineOrchestrator is a mock implementation of driving.PipelineOrchestrator.
type mockPipelineOrchestrator struct {
	status *domain.ProcessingStatus
	active bool
	err    error
}

func (m *mockPipelineOrchestrator) Process(_ context.Context, _ string) error {
	return m.err
}

func (m *mockPipelineOrchestrator) Status(_ context.Context, _ string) (*domain.ProcessingStatus, error) {
	return m.status, m.err
}

func (m *mockPipelineOrchestrator) Active(_ string) bool {
	return m.active
}
