package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/minute-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MeetingStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.MeetingStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.minute/data/meetings.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".minute", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "meetings.db")

	// WAL mode for better concurrency between the pipeline run and
	// status polling.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveMeeting stores or updates a meeting record.
func (s *Store) SaveMeeting(ctx context.Context, meeting *domain.Meeting) error {
	participantsJSON, err := json.Marshal(meeting.ParticipantsDetected)
	if err != nil {
		return fmt.Errorf("marshalling participants: %w", err)
	}

	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO meetings (id, project_id, user_id, title, date, audio_path,
			instructions, expected_speakers, duration, status, error,
			participants, report_path, created_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			user_id = excluded.user_id,
			title = excluded.title,
			date = excluded.date,
			audio_path = excluded.audio_path,
			instructions = excluded.instructions,
			expected_speakers = excluded.expected_speakers,
			duration = excluded.duration,
			status = excluded.status,
			error = excluded.error,
			participants = excluded.participants,
			report_path = excluded.report_path,
			processed_at = excluded.processed_at
	`, meeting.ID, meeting.ProjectID, meeting.UserID, meeting.Title, meeting.Date,
		meeting.AudioPath, meeting.Instructions, meeting.ExpectedSpeakers,
		meeting.Duration, string(meeting.Status), meeting.Error,
		string(participantsJSON), meeting.ReportPath, meeting.CreatedAt,
		nullTime(meeting.ProcessedAt))

	if err != nil {
		return fmt.Errorf("saving meeting: %w", err)
	}
	return nil
}

// GetMeeting retrieves a meeting by id.
func (s *Store) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, user_id, title, date, audio_path, instructions,
			expected_speakers, duration, status, error, participants,
			report_path, created_at, processed_at
		FROM meetings WHERE id = ?
	`, id)

	meeting, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning meeting: %w", err)
	}
	return meeting, nil
}

// ListMeetings returns meetings newest first, optionally filtered by project.
func (s *Store) ListMeetings(ctx context.Context, projectID string) ([]domain.Meeting, error) {
	query := `
		SELECT id, project_id, user_id, title, date, audio_path, instructions,
			expected_speakers, duration, status, error, participants,
			report_path, created_at, processed_at
		FROM meetings
	`
	args := []any{}
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning meeting: %w", err)
		}
		meetings = append(meetings, *meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meetings: %w", err)
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting; run outputs cascade.
func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting meeting: %w", err)
	}
	return nil
}

// SaveStatus replaces the meeting's processing status record.
func (s *Store) SaveStatus(ctx context.Context, meetingID string, status domain.ProcessingStatus) error {
	var eta sql.NullInt64
	if status.EstimatedTimeRemaining != nil {
		eta = sql.NullInt64{Int64: int64(*status.EstimatedTimeRemaining), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_statuses (meeting_id, stage, progress, message, eta_seconds, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(meeting_id) DO UPDATE SET
			stage = excluded.stage,
			progress = excluded.progress,
			message = excluded.message,
			eta_seconds = excluded.eta_seconds,
			updated_at = excluded.updated_at
	`, meetingID, string(status.Stage), status.Progress, status.Message, eta, status.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving status: %w", err)
	}
	return nil
}

// GetStatus returns the latest processing status.
func (s *Store) GetStatus(ctx context.Context, meetingID string) (*domain.ProcessingStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT stage, progress, message, eta_seconds, updated_at
		FROM processing_statuses WHERE meeting_id = ?
	`, meetingID)

	var status domain.ProcessingStatus
	var stage string
	var eta sql.NullInt64
	if err := row.Scan(&stage, &status.Progress, &status.Message, &eta, &status.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning status: %w", err)
	}
	status.Stage = domain.Stage(stage)
	if eta.Valid {
		value := int(eta.Int64)
		status.EstimatedTimeRemaining = &value
	}
	return &status, nil
}

// SaveAnalysis replaces the meeting's merged analysis.
func (s *Store) SaveAnalysis(ctx context.Context, meetingID string, analysis *domain.MergedAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshalling analysis: %w", err)
	}
	return s.savePayload(ctx, "analyses", meetingID, payload)
}

// GetAnalysis returns the stored analysis.
func (s *Store) GetAnalysis(ctx context.Context, meetingID string) (*domain.MergedAnalysis, error) {
	payload, err := s.getPayload(ctx, "analyses", meetingID)
	if err != nil {
		return nil, err
	}
	var analysis domain.MergedAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return nil, fmt.Errorf("unmarshalling analysis: %w", err)
	}
	return &analysis, nil
}

// SaveTranscript replaces the meeting's transcript document.
func (s *Store) SaveTranscript(ctx context.Context, meetingID string, transcript *domain.TranscriptDocument) error {
	payload, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("marshalling transcript: %w", err)
	}
	return s.savePayload(ctx, "transcripts", meetingID, payload)
}

// GetTranscript returns the stored transcript.
func (s *Store) GetTranscript(ctx context.Context, meetingID string) (*domain.TranscriptDocument, error) {
	payload, err := s.getPayload(ctx, "transcripts", meetingID)
	if err != nil {
		return nil, err
	}
	var transcript domain.TranscriptDocument
	if err := json.Unmarshal(payload, &transcript); err != nil {
		return nil, fmt.Errorf("unmarshalling transcript: %w", err)
	}
	return &transcript, nil
}

// savePayload upserts a JSON run output. Both payload tables share the
// same shape.
func (s *Store) savePayload(ctx context.Context, table, meetingID string, payload []byte) error {
	//nolint:gosec // table is a compile-time constant, never user input
	query := fmt.Sprintf(`
		INSERT INTO %s (meeting_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(meeting_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, table)

	if _, err := s.db.ExecContext(ctx, query, meetingID, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("saving %s payload: %w", table, err)
	}
	return nil
}

func (s *Store) getPayload(ctx context.Context, table, meetingID string) ([]byte, error) {
	//nolint:gosec // table is a compile-time constant, never user input
	query := fmt.Sprintf("SELECT payload FROM %s WHERE meeting_id = ?", table)

	var payload string
	if err := s.db.QueryRowContext(ctx, query, meetingID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning %s payload: %w", table, err)
	}
	return []byte(payload), nil
}

// scanner abstracts sql.Row and sql.Rows for scanMeeting.
type scanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row scanner) (*domain.Meeting, error) {
	var meeting domain.Meeting
	var status, participantsJSON string
	var processedAt sql.NullTime

	if err := row.Scan(&meeting.ID, &meeting.ProjectID, &meeting.UserID,
		&meeting.Title, &meeting.Date, &meeting.AudioPath, &meeting.Instructions,
		&meeting.ExpectedSpeakers, &meeting.Duration, &status, &meeting.Error,
		&participantsJSON, &meeting.ReportPath, &meeting.CreatedAt, &processedAt); err != nil {
		return nil, err
	}

	meeting.Status = domain.MeetingStatus(status)
	if processedAt.Valid {
		meeting.ProcessedAt = processedAt.Time
	}
	if err := json.Unmarshal([]byte(participantsJSON), &meeting.ParticipantsDetected); err != nil {
		return nil, fmt.Errorf("unmarshalling participants: %w", err)
	}
	return &meeting, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
