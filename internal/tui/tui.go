// Package tui provides a Bubble Tea terminal user interface for the
// khinsider downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/khinsider-downloader/internal/config"
	"github.com/handiism/khinsider-downloader/internal/download"
	nethttp "github.com/handiism/khinsider-downloader/internal/http"
	"github.com/handiism/khinsider-downloader/internal/khinsider"
	"github.com/handiism/khinsider-downloader/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateConfirm
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	album     *model.Album
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager

	// Progress events flow through this channel into Update
	events chan download.ProgressEvent

	// Download progress
	plannedFiles int32
	doneFiles    int32
	elapsed      time.Duration
	curWritten   int64
	curTotal     int64

	// Options
	covers   bool
	playlist bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = khinsider.AlbumURLPrefix + "name"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan download.ProgressEvent, 64),
		covers:    settings.DownloadCovers,
		playlist:  settings.CreatePlaylist,
		verbose:   settings.Verbose,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when a progress event arrives.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when the album page has been extracted.
	InitDoneMsg struct {
		Album   *model.Album
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when the download session ends.
	DownloadDoneMsg struct {
		Elapsed time.Duration
		Done    int32
		Planned int32
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateConfirm {
				m.state = StateInput
				m.album = nil
				m.manager = nil
				m.textInput.Focus()
				return m, textinput.Blink
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter", "y":
			if m.state == StateInput && msg.String() == "enter" && m.textInput.Value() != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.waitForEvent(), m.spinner.Tick)
			}
			if m.state == StateConfirm {
				m.state = StateDownloading
				return m, tea.Batch(m.startDownload(), m.tickProgress(), m.waitForEvent())
			}

		case "n":
			if m.state == StateConfirm {
				m.state = StateInput
				m.album = nil
				m.manager = nil
				m.textInput.Focus()
				return m, textinput.Blink
			}

		case "c":
			if m.state == StateInput {
				m.covers = !m.covers
			}

		case "p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for new download
				m.state = StateInput
				m.logs = nil
				m.album = nil
				m.err = nil
				m.doneFiles = 0
				m.plannedFiles = 0
				m.elapsed = 0
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{
				Message: msg.Event.Message,
				Level:   msg.Event.Level,
			})
			// Keep only last 10 logs
			if len(m.logs) > 10 {
				m.logs = m.logs[len(m.logs)-10:]
			}
		}
		cmds = append(cmds, m.waitForEvent())

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.album = msg.Album
			m.manager = msg.Manager
			m.state = StateConfirm
		}

	case DownloadDoneMsg:
		m.elapsed = msg.Elapsed
		m.doneFiles = msg.Done
		m.plannedFiles = msg.Planned
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			done, planned, elapsed := m.manager.GetProgress()
			m.doneFiles = done
			m.plannedFiles = planned
			m.elapsed = elapsed
			m.curWritten, m.curTotal = m.manager.CurrentTransfer()

			var percent float64
			if planned > 0 {
				percent = float64(done) / float64(planned)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent forwards the next progress event into the update loop.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("KHInsider Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download video game soundtracks"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateConfirm:
		b.WriteString(m.viewConfirm())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter album URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	// Options
	coversCheck := "[ ]"
	if m.covers {
		coversCheck = "[x]"
	}
	playlistCheck := "[ ]"
	if m.playlist {
		playlistCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Download covers (c)\n", coversCheck))
	b.WriteString(fmt.Sprintf("  %s Create playlist (p)\n", playlistCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Format: %s | Output: %s", m.settings.Format, m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching album info..."))
	b.WriteString("\n\n")

	// Show logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewConfirm() string {
	var b strings.Builder

	if m.album == nil {
		return b.String()
	}

	b.WriteString(albumStyle.Render(m.album.Name))
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d", len(m.album.Tracks))))
	b.WriteString("\n")
	if total := m.album.TotalDuration(); total > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("Length: %s", total.Round(time.Second))))
		b.WriteString("\n")
	}
	for _, fs := range m.album.FormatSizes() {
		b.WriteString(infoStyle.Render(fmt.Sprintf("%s: %s", strings.ToUpper(fs.Format), fs.Size)))
		b.WriteString("\n")
	}
	if len(m.album.Covers) > 0 {
		b.WriteString(infoStyle.Render(fmt.Sprintf("Covers: %d", len(m.album.Covers))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Format: %s | Output: %s", m.settings.Format, m.settings.OutputDir)))
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Start download?"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.album != nil {
		b.WriteString(albumStyle.Render(m.album.Name))
		b.WriteString("\n")
		line := fmt.Sprintf("%d tracks", len(m.album.Tracks))
		if formats := m.album.Formats(); len(formats) > 0 {
			line += " | " + strings.ToUpper(strings.Join(formats, ", "))
		}
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n\n")
	}

	// Progress bar
	var percent float64
	if m.plannedFiles > 0 {
		percent = float64(m.doneFiles) / float64(m.plannedFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	status := fmt.Sprintf("Files: %d/%d | Transfer time: %s",
		m.doneFiles, m.plannedFiles, m.elapsed.Round(time.Second))
	if m.curTotal > 0 && m.curWritten < m.curTotal {
		status += fmt.Sprintf(" | Current: %.1f/%.1f MB",
			float64(m.curWritten)/1024/1024, float64(m.curTotal)/1024/1024)
	}
	b.WriteString(infoStyle.Render(status))
	b.WriteString("\n\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	name := ""
	if m.album != nil {
		name = m.album.Name
	}
	box := boxStyle.Render(fmt.Sprintf(
		"Download Complete!\n\n"+
			"Album: %s\n"+
			"Files: %d/%d\n"+
			"Transfer time: %s",
		name,
		m.doneFiles,
		m.plannedFiles,
		m.elapsed.Round(time.Second),
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "x"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "+"
		case download.LevelInfo:
			style = infoStyle
			prefix = ">"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • c: covers • p: playlist • v: verbose • esc: quit"
	case StateConfirm:
		return "y/enter: download • n/esc: back"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload fetches the album page and creates the manager.
func (m *Model) initializeDownload() tea.Cmd {
	ctx := m.ctx
	events := m.events
	url := m.textInput.Value()

	// Apply options
	settings := *m.settings
	settings.DownloadCovers = m.covers
	settings.CreatePlaylist = m.playlist
	settings.Verbose = m.verbose

	return func() tea.Msg {
		client := nethttp.NewClient(settings.Timeout())
		manager := download.NewManager(&settings, client, func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		}, nil)

		album, err := manager.Initialize(ctx, url)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Album:   album,
			Manager: manager,
		}
	}
}

// startDownload runs the download session in the background.
func (m *Model) startDownload() tea.Cmd {
	ctx := m.ctx
	manager := m.manager

	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}

		elapsed, err := manager.Run(ctx)
		done, planned, _ := manager.GetProgress()

		return DownloadDoneMsg{
			Elapsed: elapsed,
			Done:    done,
			Planned: planned,
			Err:     err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
