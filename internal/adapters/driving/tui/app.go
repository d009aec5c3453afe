package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/minute-cli/internal/core/domain"
)

// pollInterval is how often the status view refreshes from the orchestrator.
const pollInterval = 500 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	stageStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	doneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

// statusMsg carries a status poll result.
type statusMsg struct {
	status *domain.ProcessingStatus
	active bool
	err    error
}

// meetingMsg carries the meeting details fetch result.
type meetingMsg struct {
	meeting *domain.Meeting
	err     error
}

// tickMsg triggers the next status poll.
type tickMsg time.Time

// App is the pipeline status TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// meetingID is the meeting whose run is being watched.
	meetingID string

	meeting *domain.Meeting
	status  *domain.ProcessingStatus
	active  bool

	spinner  spinner.Model
	progress progress.Model

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new status TUI for the given meeting.
func NewApp(ports *Ports, meetingID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
	)

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		meetingID: meetingID,
		spinner:   sp,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("minute - Pipeline Status"),
		a.spinner.Tick,
	}
	if a.meetingID != "" {
		cmds = append(cmds, a.fetchMeeting(), a.fetchStatus())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.progress.Width = min(msg.Width-8, 60)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return a, tea.Quit
		}
		return a, nil

	case meetingMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.meeting = msg.meeting
		return a, nil

	case statusMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.status = msg.status
		a.active = msg.active
		if a.terminal() {
			// Refresh the meeting once more to pick up the report path
			return a, a.fetchMeeting()
		}
		return a, a.scheduleTick()

	case tickMsg:
		return a, a.fetchStatus()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case progress.FrameMsg:
		model, cmd := a.progress.Update(msg)
		a.progress = model.(progress.Model)
		return a, cmd
	}

	return a, nil
}

// View implements tea.Model.
// It renders the status view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Minute - Pipeline Status"))
	b.WriteString("\n")

	if a.meetingID == "" {
		b.WriteString("No meeting selected.\n")
		b.WriteString(helpStyle.Render("[q] quit"))
		return b.String()
	}

	if a.meeting != nil {
		b.WriteString(labelStyle.Render("Meeting: "))
		b.WriteString(a.meeting.Title)
		if a.meeting.Date != "" {
			fmt.Fprintf(&b, " (%s)", a.meeting.Date)
		}
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("ID: "))
	b.WriteString(a.meetingID)
	b.WriteString("\n\n")

	if a.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", a.err)))
		b.WriteString("\n")
	}

	if a.status != nil {
		b.WriteString(a.viewStatus())
	} else if a.err == nil {
		b.WriteString(a.spinner.View())
		b.WriteString(" Loading status...\n")
	}

	b.WriteString(helpStyle.Render("[q] quit"))
	return b.String()
}

// viewStatus renders the stage, progress bar and status message.
func (a *App) viewStatus() string {
	s := a.status

	var head string
	switch s.Stage {
	case domain.StageDone:
		head = doneStyle.Render("✓ done")
	case domain.StageError:
		head = errorStyle.Render("✗ error")
	default:
		head = a.spinner.View() + " " + stageStyle.Render(string(s.Stage))
	}

	out := head + "\n\n"
	out += a.progress.ViewAs(float64(s.Progress)/100) + fmt.Sprintf(" %d%%\n\n", s.Progress)
	out += s.Message + "\n"

	if s.EstimatedTimeRemaining != nil && *s.EstimatedTimeRemaining > 0 {
		out += labelStyle.Render(fmt.Sprintf("~%ds remaining", *s.EstimatedTimeRemaining)) + "\n"
	}

	if s.Stage == domain.StageDone && a.meeting != nil && a.meeting.ReportPath != "" {
		out += labelStyle.Render("Report: ") + a.meeting.ReportPath + "\n"
	}

	return out
}

// terminal reports whether the watched run has reached a final stage.
func (a *App) terminal() bool {
	if a.status == nil {
		return false
	}
	return a.status.Stage == domain.StageDone || a.status.Stage == domain.StageError
}

// fetchMeeting loads the meeting details.
func (a *App) fetchMeeting() tea.Cmd {
	return func() tea.Msg {
		meeting, err := a.ports.Meetings.Get(a.ctx, a.meetingID)
		return meetingMsg{meeting: meeting, err: err}
	}
}

// fetchStatus polls the orchestrator for the latest run status.
func (a *App) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := a.ports.Pipeline.Status(a.ctx, a.meetingID)
		return statusMsg{
			status: status,
			active: a.ports.Pipeline.Active(a.meetingID),
			err:    err,
		}
	}
}

// scheduleTick queues the next status poll.
func (a *App) scheduleTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentStatus returns the last polled status (for testing).
func (a *App) CurrentStatus() *domain.ProcessingStatus {
	return a.status
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}
