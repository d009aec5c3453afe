package domain

import "time"

// Stage identifies a step of the meeting processing pipeline.
type Stage string

// Pipeline stages, in execution order. StageError is reachable from any stage.
const (
	StagePending      Stage = "pending"
	StageNormalizing  Stage = "normalizing"
	StageDiarizing    Stage = "diarizing"
	StageTranscribing Stage = "transcribing"
	StageAligning     Stage = "aligning"
	StageAnalyzing    Stage = "analyzing"
	StageMerging      Stage = "merging"
	StageReporting    Stage = "reporting"
	StageDone         Stage = "done"
	StageError        Stage = "error"
)

// IsValid returns true if the stage is recognised.
func (s Stage) IsValid() bool {
	switch s {
	case StagePending, StageNormalizing, StageDiarizing, StageTranscribing,
		StageAligning, StageAnalyzing, StageMerging, StageReporting,
		StageDone, StageError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further stage follows.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageError
}

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// MeetingStatus is the terminal status recorded on the meeting itself,
// as opposed to the per-stage ProcessingStatus updated during a run.
type MeetingStatus string

// Meeting statuses.
const (
	MeetingPending    MeetingStatus = "pending"
	MeetingProcessing MeetingStatus = "processing"
	MeetingCompleted  MeetingStatus = "completed"
	MeetingError      MeetingStatus = "error"
)

// Meeting represents a recorded meeting registered for analysis.
type Meeting struct {
	// ID is the unique identifier for the meeting.
	ID string

	// ProjectID groups meetings under a project.
	ProjectID string

	// UserID identifies the owning user or tenant. It is carried
	// explicitly through every call; there is no ambient current-user state.
	UserID string

	// Title is the human-readable meeting title.
	Title string

	// Date is the meeting date as entered by the user.
	Date string

	// AudioPath is the location of the uploaded recording.
	AudioPath string

	// Instructions are free-form user directives passed to the
	// extraction engine (focus areas, meeting type hints).
	Instructions string

	// ExpectedSpeakers is the participant count the user announced.
	ExpectedSpeakers int

	// Duration is the recording length in seconds, measured at registration.
	Duration float64

	// Status is the terminal processing status of the meeting.
	Status MeetingStatus

	// Error holds the failure message when Status is MeetingError.
	Error string

	// ParticipantsDetected lists the speaker labels found by diarization.
	ParticipantsDetected []string

	// ReportPath is the rendered report artifact, when one was produced.
	ReportPath string

	// CreatedAt is when the meeting was registered.
	CreatedAt time.Time

	// ProcessedAt is when the last pipeline run finished.
	ProcessedAt time.Time
}

// ProcessingStatus is the repeatedly-mutated progress record for one run.
// Only the latest value is retained; there is no history.
type ProcessingStatus struct {
	Stage    Stage  `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`

	// EstimatedTimeRemaining is a rough seconds estimate, nil once done.
	EstimatedTimeRemaining *int `json:"estimated_time_remaining"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Degradation records why a pipeline stage fell back to synthetic output
// instead of aborting the run. Collected degradations are attached to the
// final analysis so callers can see not just that quality dropped, but why.
type Degradation struct {
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}
