package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/model"
)

// sidebarWidth is the width of the activity column, border included.
const sidebarWidth = 34

// Model is the Bubble Tea model for the striko request panel.
// It manages:
// - the URL input and method of the live request
// - a viewport with the last response
// - the activity sidebar
// - the save-to-collection prompt
type Model struct {
	session *core.Session

	viewport  viewport.Model
	urlInput  textinput.Model
	saveInput textinput.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer

	width  int
	height int
	ready  bool

	request  model.Request
	response *model.Response
	sending  bool
	saving   bool // save-to-collection prompt is open

	activity    []model.Request
	selected    int // index into activity, -1 when nothing is selected
	collections []model.Collection
	envCount    int

	notice string // one-line feedback, cleared on the next key
	errMsg string

	// Activity change notifications from the session tracker
	activityCh <-chan struct{}

	// Send cancellation
	cancelSend context.CancelFunc

	// Animation state (harmonica spring for the pulsing sending dot)
	animSpring harmonica.Spring
	animPos    float64
	animVel    float64
	animTarget float64
}

// sendDoneMsg carries the outcome of a send.
type sendDoneMsg struct {
	resp model.Response
	err  error
}

// activityChangedMsg signals that the activity list changed.
type activityChangedMsg struct{}

// snapshotMsg carries a refreshed sidebar.
type snapshotMsg struct {
	snap core.Snapshot
	err  error
}

// saveDoneMsg carries the outcome of a save-to-collection.
type saveDoneMsg struct {
	result core.SaveResult
	err    error
}

// animTickMsg drives the harmonica spring animation
type animTickMsg time.Time
