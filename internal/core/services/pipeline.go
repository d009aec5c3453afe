package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
	"github.com/custodia-labs/minute-cli/internal/logger"
)

// Ensure PipelineOrchestrator implements the interface.
var _ driving.PipelineOrchestrator = (*PipelineOrchestrator)(nil)

// Fixed progress checkpoints persisted before each stage.
const (
	progressPending      = 5
	progressNormalizing  = 10
	progressDiarizing    = 20
	progressDiarized     = 40
	progressTranscribing = 50
	progressAligning     = 70
	progressAnalyzing    = 80
	progressMerging      = 90
	progressReporting    = 95
	progressDone         = 100
)

// stageEstimates are rough per-stage durations in seconds used for the
// estimated-time-remaining hint, scaled by remaining progress.
var stageEstimates = map[domain.Stage]int{
	domain.StagePending:      210,
	domain.StageNormalizing:  200,
	domain.StageDiarizing:    180,
	domain.StageTranscribing: 120,
	domain.StageAligning:     60,
	domain.StageAnalyzing:    55,
	domain.StageMerging:      15,
	domain.StageReporting:    10,
}

// PipelineOrchestrator drives the meeting analysis pipeline: normalize,
// diarize, transcribe, align, chunked extraction, merge, render. Every
// external-engine stage has a synthetic fallback so a failing engine
// degrades output quality rather than aborting the run; only a missing or
// unreadable recording is fatal.
type PipelineOrchestrator struct {
	store         driven.MeetingStore
	normalizer    driven.AudioNormalizer
	diarization   driven.DiarizationEngine
	transcription driven.TranscriptionEngine
	extraction    driven.ExtractionEngine
	renderer      driven.ReportRenderer
	settings      domain.PipelineSettings

	// workDir hosts per-meeting artifacts (normalized audio, reports).
	workDir string

	// Run-exclusivity: at most one active run per meeting id. Concurrent
	// runs would interleave status writes and duplicate report output.
	mu     sync.Mutex
	active map[string]bool
}

// NewPipelineOrchestrator creates a pipeline orchestrator. The diarization,
// transcription, extraction and renderer ports are optional: nil engines
// behave like permanently failing ones and trigger the same fallbacks.
func NewPipelineOrchestrator(
	store driven.MeetingStore,
	normalizer driven.AudioNormalizer,
	diarization driven.DiarizationEngine,
	transcription driven.TranscriptionEngine,
	extraction driven.ExtractionEngine,
	renderer driven.ReportRenderer,
	settings domain.PipelineSettings,
	workDir string,
) *PipelineOrchestrator {
	if settings.ChunkWindow <= 0 {
		settings.ChunkWindow = DefaultChunkWindow
	}
	if settings.ExtractParallelism <= 0 {
		settings.ExtractParallelism = 1
	}
	return &PipelineOrchestrator{
		store:         store,
		normalizer:    normalizer,
		diarization:   diarization,
		transcription: transcription,
		extraction:    extraction,
		renderer:      renderer,
		settings:      settings,
		workDir:       workDir,
		active:        make(map[string]bool),
	}
}

// Process runs the full pipeline for one meeting. It returns
// domain.ErrProcessingInProgress when a run for the same meeting is already
// active; reprocessing replaces the previous analysis wholesale.
func (o *PipelineOrchestrator) Process(ctx context.Context, meetingID string) error {
	if !o.acquire(meetingID) {
		return fmt.Errorf("meeting %s: %w", meetingID, domain.ErrProcessingInProgress)
	}
	defer o.release(meetingID)

	meeting, err := o.store.GetMeeting(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("get meeting: %w", err)
	}

	meeting.Status = domain.MeetingProcessing
	if err := o.store.SaveMeeting(ctx, meeting); err != nil {
		return fmt.Errorf("mark meeting processing: %w", err)
	}

	logger.Info("Starting processing for meeting %s", meetingID)

	if err := o.run(ctx, meeting); err != nil {
		o.setStatus(ctx, meetingID, domain.StageError, 0, "Erreur: "+err.Error())
		meeting.Status = domain.MeetingError
		meeting.Error = err.Error()
		if saveErr := o.store.SaveMeeting(ctx, meeting); saveErr != nil {
			logger.Warn("Failed to record meeting failure: %v", saveErr)
		}
		return err
	}

	meeting.Status = domain.MeetingCompleted
	meeting.Error = ""
	meeting.ProcessedAt = time.Now()
	if err := o.store.SaveMeeting(ctx, meeting); err != nil {
		return fmt.Errorf("mark meeting completed: %w", err)
	}

	o.setStatus(ctx, meetingID, domain.StageDone, progressDone, "Traitement terminé avec succès")
	logger.Info("Processing completed for meeting %s", meetingID)
	return nil
}

// run executes the stage sequence. Returned errors are fatal: either the
// recording is unusable or something unexpected broke. Engine failures are
// converted into degradations instead.
//
//nolint:gocyclo // Orchestration function with necessary sequential stages
func (o *PipelineOrchestrator) run(ctx context.Context, meeting *domain.Meeting) error {
	var degradations []domain.Degradation
	degrade := func(stage domain.Stage, reason string) {
		degradations = append(degradations, domain.Degradation{Stage: stage, Reason: reason})
		logger.Warn("Stage %s degraded: %s", stage, reason)
	}

	o.setStatus(ctx, meeting.ID, domain.StagePending, progressPending, "Initialisation du traitement...")

	// The recording itself is the only fatal input.
	if info, err := os.Stat(meeting.AudioPath); err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrAudioUnreadable, meeting.AudioPath)
	}

	workDir := filepath.Join(o.workDir, meeting.ID)
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}

	// Stage: normalize. Failure degrades to processing the raw recording.
	o.setStatus(ctx, meeting.ID, domain.StageNormalizing, progressNormalizing, "Normalisation de l'audio...")
	audioPath := meeting.AudioPath
	if normalized, err := o.normalize(ctx, meeting.AudioPath, workDir); err != nil {
		degrade(domain.StageNormalizing, err.Error())
	} else {
		audioPath = normalized
	}

	duration := meeting.Duration
	if o.normalizer != nil {
		if measured, err := o.normalizer.Duration(ctx, audioPath); err == nil && measured > 0 {
			duration = measured
		}
	}
	if duration <= 0 {
		duration = 60
	}

	// Stage: diarize. Failure degrades to evenly-spaced synthetic turns.
	o.setStatus(ctx, meeting.ID, domain.StageDiarizing, progressDiarizing, "Détection des intervenants...")
	turns, err := o.diarize(ctx, audioPath, meeting.ExpectedSpeakers)
	if err != nil || len(turns) == 0 {
		if err != nil {
			degrade(domain.StageDiarizing, err.Error())
		} else {
			degrade(domain.StageDiarizing, "diarization returned no turns")
		}
		turns = SyntheticTurns(duration, meeting.ExpectedSpeakers)
	}
	speakerCount := countSpeakers(turns)
	o.setStatus(ctx, meeting.ID, domain.StageDiarizing, progressDiarized,
		fmt.Sprintf("Détection terminée: %d intervenant(s)", speakerCount))

	// Stage: transcribe. Failure degrades to a placeholder transcript.
	o.setStatus(ctx, meeting.ID, domain.StageTranscribing, progressTranscribing, "Transcription en cours...")
	transcription, err := o.transcribe(ctx, audioPath)
	if err != nil {
		degrade(domain.StageTranscribing, err.Error())
		transcription = SyntheticTranscription(duration)
	}

	// Stage: align.
	o.setStatus(ctx, meeting.ID, domain.StageAligning, progressAligning, "Alignement des segments...")
	segments := AlignSegments(turns, transcription.Segments)

	transcript := &domain.TranscriptDocument{
		FullText: CleanTranscriptText(transcription.Text),
		Language: transcription.Language,
		Service:  transcription.Service,
		Segments: segments,
		Speakers: SpeakerStatistics(segments),
	}
	if err := o.store.SaveTranscript(ctx, meeting.ID, transcript); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}

	info := domain.MeetingInfo{
		ProjectName:      meeting.ProjectID,
		Title:            meeting.Title,
		Date:             meeting.Date,
		Duration:         duration,
		ExpectedSpeakers: meeting.ExpectedSpeakers,
		Participants:     speakerNames(turns),
		Instructions:     meeting.Instructions,
	}

	// Stage: chunked extraction. Failed chunks are skipped, not retried.
	o.setStatus(ctx, meeting.ID, domain.StageAnalyzing, progressAnalyzing, "Analyse IA en cours...")
	chunks := PlanChunks(segments, o.settings.ChunkWindow)
	fragments, extractionDegradations := o.extractFragments(ctx, chunks, meeting.Instructions)
	degradations = append(degradations, extractionDegradations...)

	// Stage: merge. Zero surviving fragments means the deterministic
	// fallback analysis; merging is skipped entirely.
	o.setStatus(ctx, meeting.ID, domain.StageMerging, progressMerging, "Fusion des analyses...")
	var analysis *domain.MergedAnalysis
	if len(fragments) == 0 {
		degrade(domain.StageMerging, "no chunk fragment survived extraction")
		analysis = FallbackAnalysis(segments, info, degradations)
	} else {
		analysis = MergeFragments(fragments, info, degradations)
	}
	if err := o.store.SaveAnalysis(ctx, meeting.ID, analysis); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	meeting.ParticipantsDetected = info.Participants
	meeting.Duration = duration

	// Stage: render. A renderer failure is logged, never fatal.
	o.setStatus(ctx, meeting.ID, domain.StageReporting, progressReporting, "Génération du rapport...")
	if o.renderer != nil {
		reportPath, err := o.renderer.Render(ctx, analysis, segments, info, workDir)
		if err != nil {
			degrade(domain.StageReporting, err.Error())
		} else {
			meeting.ReportPath = reportPath
		}
	}

	return nil
}

// extractFragments runs one extraction call per chunk with bounded
// parallelism and validates each raw payload. Chunk order is preserved in
// the returned fragment list regardless of completion order, since merge
// semantics depend on complete, ordered fragment availability.
func (o *PipelineOrchestrator) extractFragments(ctx context.Context, chunks []domain.Chunk, instructions string) ([]domain.Fragment, []domain.Degradation) {
	if o.extraction == nil {
		return nil, []domain.Degradation{{
			Stage:  domain.StageAnalyzing,
			Reason: domain.ErrExtractionUnavailable.Error(),
		}}
	}

	results := make([]*domain.Fragment, len(chunks))
	reasons := make([]string, len(chunks))

	sem := make(chan struct{}, o.settings.ExtractParallelism)
	var wg sync.WaitGroup
	for i := range chunks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			fragment, err := o.extractOne(ctx, chunks[i], instructions)
			if err != nil {
				reasons[i] = fmt.Sprintf("chunk %d skipped: %v", chunks[i].Index, err)
				return
			}
			results[i] = fragment
		}(i)
	}
	wg.Wait()

	var fragments []domain.Fragment
	var degradations []domain.Degradation
	for i := range results {
		if results[i] != nil {
			fragments = append(fragments, *results[i])
			continue
		}
		degradations = append(degradations, domain.Degradation{
			Stage:  domain.StageAnalyzing,
			Reason: reasons[i],
		})
	}
	return fragments, degradations
}

func (o *PipelineOrchestrator) extractOne(ctx context.Context, chunk domain.Chunk, instructions string) (*domain.Fragment, error) {
	transcript := FormatChunkTranscript(chunk.Segments)
	window := chunk.Window()

	ctx, cancel := o.stageContext(ctx)
	defer cancel()

	raw, err := o.extraction.ExtractFragment(ctx, transcript, instructions, window)
	if err != nil {
		return nil, err
	}

	fragment, err := ValidateFragment(raw, window)
	if err != nil {
		return nil, err
	}
	fragment.Metrics.TotalSegments = len(chunk.Segments)
	if fragment.Metrics.SegmentsAnalyzed > len(chunk.Segments) {
		fragment.Metrics.SegmentsAnalyzed = len(chunk.Segments)
	}
	return fragment, nil
}

func (o *PipelineOrchestrator) normalize(ctx context.Context, rawPath, workDir string) (string, error) {
	if o.normalizer == nil {
		return "", errors.New("audio normalizer not configured")
	}
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.normalizer.Normalize(ctx, rawPath, workDir)
}

func (o *PipelineOrchestrator) diarize(ctx context.Context, audioPath string, expectedSpeakers int) ([]domain.Turn, error) {
	if o.diarization == nil {
		return nil, errors.New("diarization engine not configured")
	}
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.diarization.Diarize(ctx, audioPath, expectedSpeakers)
}

func (o *PipelineOrchestrator) transcribe(ctx context.Context, audioPath string) (*domain.Transcription, error) {
	if o.transcription == nil {
		return nil, errors.New("transcription engine not configured")
	}
	ctx, cancel := o.stageContext(ctx)
	defer cancel()
	return o.transcription.Transcribe(ctx, audioPath, "")
}

// stageContext bounds one external-engine call with the configured stage
// timeout. A timed-out engine degrades like a failing one; cancellation of
// the parent context still aborts the run.
func (o *PipelineOrchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.settings.StageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.settings.StageTimeout)
}

// Status returns the latest persisted processing status.
func (o *PipelineOrchestrator) Status(ctx context.Context, meetingID string) (*domain.ProcessingStatus, error) {
	return o.store.GetStatus(ctx, meetingID)
}

// Active reports whether a run is currently executing for the meeting.
func (o *PipelineOrchestrator) Active(meetingID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active[meetingID]
}

// setStatus persists a processing status update. Status-write failures are
// logged but never interrupt the run.
func (o *PipelineOrchestrator) setStatus(ctx context.Context, meetingID string, stage domain.Stage, progress int, message string) {
	status := domain.ProcessingStatus{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		UpdatedAt: time.Now(),
	}
	if estimate, ok := stageEstimates[stage]; ok && !stage.IsTerminal() {
		remaining := estimate
		if progress > 0 {
			remaining = estimate * (100 - progress) / 100
		}
		status.EstimatedTimeRemaining = &remaining
	}

	if err := o.store.SaveStatus(ctx, meetingID, status); err != nil {
		logger.Warn("Failed to persist status %s/%d for meeting %s: %v", stage, progress, meetingID, err)
		return
	}
	logger.Debug("Status updated - %s: %d%% - %s", stage, progress, message)
}

func (o *PipelineOrchestrator) acquire(meetingID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active[meetingID] {
		return false
	}
	o.active[meetingID] = true
	return true
}

func (o *PipelineOrchestrator) release(meetingID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, meetingID)
}

func countSpeakers(turns []domain.Turn) int {
	set := map[string]bool{}
	for _, turn := range turns {
		set[turn.Speaker] = true
	}
	return len(set)
}

func speakerNames(turns []domain.Turn) []string {
	set := map[string]bool{}
	var names []string
	for _, turn := range turns {
		if !set[turn.Speaker] {
			set[turn.Speaker] = true
			names = append(names, turn.Speaker)
		}
	}
	return names
}
