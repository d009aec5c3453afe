package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
	"github.com/custodia-labs/minute-cli/internal/core/ports/driving"
)

type mockMeetingService struct {
	meeting *domain.Meeting
	err     error
}

func (m *mockMeetingService) Register(_ context.Context, _ driving.RegisterRequest) (*domain.Meeting, error) {
	return m.meeting, m.err
}

func (m *mockMeetingService) Get(_ context.Context, _ string) (*domain.Meeting, error) {
	return m.meeting, m.err
}

func (m *mockMeetingService) List(_ context.Context, _ string) ([]domain.Meeting, error) {
	return nil, m.err
}

func (m *mockMeetingService) Analysis(_ context.Context, _ string) (*domain.MergedAnalysis, error) {
	return nil, m.err
}

func (m *mockMeetingService) Transcript(_ context.Context, _ string) (*domain.TranscriptDocument, error) {
	return nil, m.err
}

type mockPipeline struct {
	status *domain.ProcessingStatus
	active bool
	err    error
}

func (m *mockPipeline) Process(_ context.Context, _ string) error { return m.err }

func (m *mockPipeline) Status(_ context.Context, _ string) (*domain.ProcessingStatus, error) {
	return m.status, m.err
}

func (m *mockPipeline) Active(_ string) bool { return m.active }

func newTestPorts() *Ports {
	return &Ports{
		Meetings: &mockMeetingService{},
		Pipeline: &mockPipeline{},
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts(), "m-1")

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.False(t, app.Ready())
}

func TestNewApp_MissingPorts(t *testing.T) {
	t.Run("missing meetings", func(t *testing.T) {
		app, err := NewApp(&Ports{Pipeline: &mockPipeline{}}, "m-1")
		require.ErrorIs(t, err, ErrMissingMeetingService)
		assert.Nil(t, app)
	})

	t.Run("missing pipeline", func(t *testing.T) {
		app, err := NewApp(&Ports{Meetings: &mockMeetingService{}}, "m-1")
		require.ErrorIs(t, err, ErrMissingPipelineOrchestrator)
		assert.Nil(t, app)
	})
}

func TestApp_WindowSizeMakesReady(t *testing.T) {
	app, err := NewApp(newTestPorts(), "m-1")
	require.NoError(t, err)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app = model.(*App)

	assert.True(t, app.Ready())
}

func TestApp_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		t.Run(key, func(t *testing.T) {
			app, err := NewApp(newTestPorts(), "m-1")
			require.NoError(t, err)

			var msg tea.KeyMsg
			switch key {
			case "esc":
				msg = tea.KeyMsg{Type: tea.KeyEsc}
			case "ctrl+c":
				msg = tea.KeyMsg{Type: tea.KeyCtrlC}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
			}

			_, cmd := app.Update(msg)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestApp_StatusUpdateSchedulesNextPoll(t *testing.T) {
	app, err := NewApp(newTestPorts(), "m-1")
	require.NoError(t, err)

	status := &domain.ProcessingStatus{
		Stage:    domain.StageTranscribing,
		Progress: 40,
		Message:  "Transcription en cours...",
	}

	model, cmd := app.Update(statusMsg{status: status, active: true})
	app = model.(*App)

	assert.Equal(t, status, app.CurrentStatus())
	assert.NotNil(t, cmd, "a running stage schedules the next poll")
}

func TestApp_TerminalStageStopsPolling(t *testing.T) {
	ports := newTestPorts()
	ports.Meetings = &mockMeetingService{
		meeting: &domain.Meeting{ID: "m-1", ReportPath: "/data/m-1/rapport.html"},
	}

	app, err := NewApp(ports, "m-1")
	require.NoError(t, err)

	status := &domain.ProcessingStatus{Stage: domain.StageDone, Progress: 100, Message: "Terminé"}
	model, cmd := app.Update(statusMsg{status: status})
	app = model.(*App)

	require.NotNil(t, cmd, "terminal stage still refreshes the meeting once")
	msg := cmd()
	meeting, ok := msg.(meetingMsg)
	require.True(t, ok)
	assert.Equal(t, "/data/m-1/rapport.html", meeting.meeting.ReportPath)

	// The follow-up meeting message must not schedule another poll.
	_, cmd = app.Update(meeting)
	assert.Nil(t, cmd)
}

func TestApp_StatusErrorShown(t *testing.T) {
	app, err := NewApp(newTestPorts(), "m-1")
	require.NoError(t, err)

	model, _ := app.Update(statusMsg{err: errors.New("status unavailable")})
	app = model.(*App)

	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "status unavailable")
}

func TestApp_ViewRendersStatus(t *testing.T) {
	ports := newTestPorts()
	ports.Meetings = &mockMeetingService{
		meeting: &domain.Meeting{ID: "m-1", Title: "Point hebdo", Date: "2026-08-20"},
	}

	app, err := NewApp(ports, "m-1")
	require.NoError(t, err)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app = model.(*App)
	model, _ = app.Update(meetingMsg{meeting: &domain.Meeting{ID: "m-1", Title: "Point hebdo", Date: "2026-08-20"}})
	app = model.(*App)
	model, _ = app.Update(statusMsg{status: &domain.ProcessingStatus{
		Stage:    domain.StageAnalyzing,
		Progress: 70,
		Message:  "Analyse des segments...",
	}})
	app = model.(*App)

	view := app.View()
	assert.Contains(t, view, "Point hebdo")
	assert.Contains(t, view, "analyzing")
	assert.Contains(t, view, "70%")
	assert.Contains(t, view, "Analyse des segments...")
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app, err := NewApp(newTestPorts(), "m-1")
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_ViewWithoutMeeting(t *testing.T) {
	app, err := NewApp(newTestPorts(), "")
	require.NoError(t, err)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app = model.(*App)

	assert.Contains(t, app.View(), "No meeting selected")
}
