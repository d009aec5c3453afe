package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
	"github.com/custodia-labs/minute-cli/internal/logger"
)

var _ driving.MeetingService = (*MeetingService)(nil)

// MeetingService manages meeting records and read access to run outputs.
type MeetingService struct {
	store      driven.MeetingStore
	normalizer driven.AudioNormalizer
}

// NewMeetingService creates a meeting service. The normalizer is used only
// to probe recording duration at registration and may be nil.
func NewMeetingService(store driven.MeetingStore, normalizer driven.AudioNormalizer) *MeetingService {
	return &MeetingService{store: store, normalizer: normalizer}
}

// Register creates a meeting record for a recording on disk. The recording
// must exist; its duration is probed best-effort and refined later by the
// pipeline run.
func (s *MeetingService) Register(ctx context.Context, req driving.RegisterRequest) (*domain.Meeting, error) {
	audioPath := strings.TrimSpace(req.AudioPath)
	if audioPath == "" {
		return nil, fmt.Errorf("%w: audio path is required", domain.ErrInvalidInput)
	}
	absPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("resolve audio path: %w", err)
	}
	if info, err := os.Stat(absPath); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrAudioUnreadable, absPath)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	expectedSpeakers := req.ExpectedSpeakers
	if expectedSpeakers < 1 {
		expectedSpeakers = 2
	}

	meeting := &domain.Meeting{
		ID:               uuid.NewString(),
		ProjectID:        strings.TrimSpace(req.ProjectID),
		UserID:           strings.TrimSpace(req.UserID),
		Title:            title,
		Date:             date,
		AudioPath:        absPath,
		Instructions:     strings.TrimSpace(req.Instructions),
		ExpectedSpeakers: expectedSpeakers,
		Status:           domain.MeetingPending,
		CreatedAt:        time.Now(),
	}

	if s.normalizer != nil {
		if duration, err := s.normalizer.Duration(ctx, absPath); err == nil {
			meeting.Duration = duration
		} else {
			logger.Debug("Duration probe failed for %s: %v", absPath, err)
		}
	}

	if err := s.store.SaveMeeting(ctx, meeting); err != nil {
		return nil, fmt.Errorf("save meeting: %w", err)
	}
	if err := s.store.SaveStatus(ctx, meeting.ID, domain.ProcessingStatus{
		Stage:     domain.StagePending,
		Progress:  0,
		Message:   "En attente de traitement",
		UpdatedAt: time.Now(),
	}); err != nil {
		logger.Warn("Failed to write initial status for meeting %s: %v", meeting.ID, err)
	}

	logger.Info("Registered meeting %s (%s)", meeting.ID, meeting.Title)
	return meeting, nil
}

// Get returns a meeting by id.
func (s *MeetingService) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	meeting, err := s.store.GetMeeting(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return meeting, nil
}

// List returns meetings, newest first, optionally filtered by project.
func (s *MeetingService) List(ctx context.Context, projectID string) ([]domain.Meeting, error) {
	meetings, err := s.store.ListMeetings(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// Analysis returns the stored merged analysis for a meeting.
func (s *MeetingService) Analysis(ctx context.Context, id string) (*domain.MergedAnalysis, error) {
	analysis, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return analysis, nil
}

// Transcript returns the stored transcript document for a meeting.
func (s *MeetingService) Transcript(ctx context.Context, id string) (*domain.TranscriptDocument, error) {
	transcript, err := s.store.GetTranscript(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return transcript, nil
}
