package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/model"
)

// newSpinner creates a spinner with the striko style (dots animation).
func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
		FPS:    time.Second / 6,
	}
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)
	return sp
}

// newURLInput creates the URL input of the request line.
func newURLInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "https://api.example.com/users"
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Prompt = ""

	// Match the input background to the request line background
	ti.TextStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(InputAreaBg)
	ti.PlaceholderStyle = lipgloss.NewStyle().
		Foreground(DimColor).
		Background(InputAreaBg)
	ti.Cursor.Style = lipgloss.NewStyle().
		Foreground(AccentColor).
		Background(InputAreaBg)

	return ti
}

// newSaveInput creates the collection prompt shown by ctrl+s.
func newSaveInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "collection name"
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = "save to › "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(AccentColor)
	return ti
}

// newGlamourRenderer creates a glamour renderer for response bodies.
func newGlamourRenderer(width int) *glamour.TermRenderer {
	if width < 40 {
		width = 40
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// NewModel creates the request panel for session, opening a blank request
// when the session has none. activityCh is a subscription to the session's
// activity tracker; it may be nil.
func NewModel(session *core.Session, activityCh <-chan struct{}) Model {
	panel := session.Panel()
	var req model.Request
	if panel.Request != nil {
		req = *panel.Request
	} else {
		req = session.NewRequest()
	}

	m := Model{
		session:    session,
		urlInput:   newURLInput(),
		saveInput:  newSaveInput(),
		spinner:    newSpinner(),
		renderer:   newGlamourRenderer(80),
		selected:   -1,
		activityCh: activityCh,
		animSpring: harmonica.NewSpring(harmonica.FPS(30), 6.0, 0.3),
		animTarget: 1,
		request:    req,
		response:   panel.Response,
	}
	m.urlInput.SetValue(req.URL)
	return m
}

// Init loads the sidebar and starts listening for activity changes.
// This is called once when the program starts.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		refreshCmd(m.session),
		waitForActivity(m.activityCh),
	)
}
