package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure MeetingStore implements the interface.
var _ driven.MeetingStore = (*MeetingStore)(nil)

// MeetingStore is an in-memory implementation of driven.MeetingStore,
// used in tests and as a fallback when no database is configured.
type MeetingStore struct {
	mu          sync.RWMutex
	meetings    map[string]domain.Meeting
	statuses    map[string]domain.ProcessingStatus
	analyses    map[string]domain.MergedAnalysis
	transcripts map[string]domain.TranscriptDocument
}

// NewMeetingStore creates a new in-memory meeting store.
func NewMeetingStore() *MeetingStore {
	return &MeetingStore{
		meetings:    make(map[string]domain.Meeting),
		statuses:    make(map[string]domain.ProcessingStatus),
		analyses:    make(map[string]domain.MergedAnalysis),
		transcripts: make(map[string]domain.TranscriptDocument),
	}
}

// SaveMeeting stores or updates a meeting record.
func (s *MeetingStore) SaveMeeting(_ context.Context, meeting *domain.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[meeting.ID] = *meeting
	return nil
}

// GetMeeting retrieves a meeting by id.
func (s *MeetingStore) GetMeeting(_ context.Context, id string) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &meeting, nil
}

// ListMeetings returns meetings newest first, optionally filtered by project.
func (s *MeetingStore) ListMeetings(_ context.Context, projectID string) ([]domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Meeting
	for id := range s.meetings {
		meeting := s.meetings[id]
		if projectID != "" && meeting.ProjectID != projectID {
			continue
		}
		result = append(result, meeting)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteMeeting removes a meeting and all of its run outputs.
func (s *MeetingStore) DeleteMeeting(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meetings, id)
	delete(s.statuses, id)
	delete(s.analyses, id)
	delete(s.transcripts, id)
	return nil
}

// SaveStatus replaces the meeting's processing status record.
func (s *MeetingStore) SaveStatus(_ context.Context, meetingID string, status domain.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[meetingID] = status
	return nil
}

// GetStatus returns the latest processing status.
func (s *MeetingStore) GetStatus(_ context.Context, meetingID string) (*domain.ProcessingStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[meetingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &status, nil
}

// SaveAnalysis replaces the meeting's merged analysis.
func (s *MeetingStore) SaveAnalysis(_ context.Context, meetingID string, analysis *domain.MergedAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[meetingID] = *analysis
	return nil
}

// GetAnalysis returns the stored analysis.
func (s *MeetingStore) GetAnalysis(_ context.Context, meetingID string) (*domain.MergedAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	analysis, ok := s.analyses[meetingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &analysis, nil
}

// SaveTranscript replaces the meeting's transcript document.
func (s *MeetingStore) SaveTranscript(_ context.Context, meetingID string, transcript *domain.TranscriptDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[meetingID] = *transcript
	return nil
}

// GetTranscript returns the stored transcript.
func (s *MeetingStore) GetTranscript(_ context.Context, meetingID string) (*domain.TranscriptDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transcript, ok := s.transcripts[meetingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &transcript, nil
}
