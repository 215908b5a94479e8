package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/holps-7/striko/pkg/core"
)

// sendCmd sends the live request without blocking the UI.
func sendCmd(ctx context.Context, session *core.Session) tea.Cmd {
	return func() tea.Msg {
		resp, err := session.Send(ctx)
		return sendDoneMsg{resp: resp, err: err}
	}
}

// refreshCmd reloads the sidebar.
func refreshCmd(session *core.Session) tea.Cmd {
	return func() tea.Msg {
		snap, err := session.Snapshot(context.Background())
		return snapshotMsg{snap: snap, err: err}
	}
}

// saveCmd saves the live request into a collection.
func saveCmd(session *core.Session, target core.SaveTarget) tea.Cmd {
	return func() tea.Msg {
		result, err := session.SaveToCollection(context.Background(), target)
		return saveDoneMsg{result: result, err: err}
	}
}

// waitForActivity blocks until the activity list changes. It returns nil
// once the subscription is closed.
func waitForActivity(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return activityChangedMsg{}
	}
}

func animTick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles all messages and updates the model state.
// This is the main event loop handler for the Bubble Tea application.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		updated, cmd, handled := m.handleKeyMsg(msg)
		if handled {
			return updated, cmd
		}
		m = updated

	case tea.WindowSizeMsg:
		m = m.handleWindowResize(msg)

	case sendDoneMsg:
		m = m.handleSendDone(msg)

	case activityChangedMsg:
		m.activity = m.session.Activity()
		m.clampSelection()
		cmds = append(cmds, waitForActivity(m.activityCh))

	case snapshotMsg:
		m = m.handleSnapshot(msg)

	case saveDoneMsg:
		m = m.handleSaveDone(msg)
		cmds = append(cmds, refreshCmd(m.session))

	case animTickMsg:
		if m.sending {
			m = m.stepAnimation()
			cmds = append(cmds, animTick())
		}

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Route regular input to whichever field has focus
	if m.saving {
		var cmd tea.Cmd
		m.saveInput, cmd = m.saveInput.Update(msg)
		cmds = append(cmds, cmd)
	} else if !m.sending {
		before := m.urlInput.Value()
		var cmd tea.Cmd
		m.urlInput, cmd = m.urlInput.Update(msg)
		cmds = append(cmds, cmd)
		if m.urlInput.Value() != before {
			m.request.URL = m.urlInput.Value()
			m.session.UpdateRequest(m.request, false)
		}
	}

	// Keys reach the viewport only through handleKeyMsg
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleWindowResize adjusts the layout when the terminal is resized.
func (m Model) handleWindowResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	// request line + blank + footer + prompt line
	chrome := 4
	viewportHeight := m.height - chrome
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	viewportWidth := m.width - sidebarWidth - 2
	if viewportWidth < 20 {
		viewportWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(viewportWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
	}

	m.urlInput.Width = m.width - len(m.request.Method) - 8
	m.renderer = newGlamourRenderer(viewportWidth - 4)
	m.updateViewportContent()
	return m
}

// handleSendDone shows the response, or the reason nothing was sent.
func (m Model) handleSendDone(msg sendDoneMsg) Model {
	m.sending = false
	if m.cancelSend != nil {
		m.cancelSend()
		m.cancelSend = nil
	}

	switch {
	case errors.Is(msg.err, core.ErrEmptyURL):
		m.errMsg = "enter a URL first"
	case msg.err != nil:
		m.errMsg = msg.err.Error()
	default:
		panel := m.session.Panel()
		m.response = panel.Response
		m.errMsg = ""
		if panel.Response == nil {
			// The panel moved to another request while this one was in flight
			m.notice = "response discarded"
		}
	}

	m.updateViewportContent()
	return m
}

func (m Model) handleSnapshot(msg snapshotMsg) Model {
	if msg.err != nil {
		m.errMsg = fmt.Sprintf("refresh failed: %v", msg.err)
		return m
	}
	m.activity = msg.snap.Activities
	m.collections = msg.snap.Collections
	m.envCount = len(msg.snap.Environments)
	m.clampSelection()
	return m
}

func (m Model) handleSaveDone(msg saveDoneMsg) Model {
	if msg.err != nil {
		m.errMsg = "save failed: " + msg.err.Error()
		return m
	}
	r := msg.result
	switch {
	case r.Created:
		m.notice = fmt.Sprintf("created collection %q", r.Collection.Name)
	case r.Replaced != nil:
		m.notice = fmt.Sprintf("updated request in %q", r.Collection.Name)
	default:
		m.notice = fmt.Sprintf("added request to %q", r.Collection.Name)
	}
	return m
}

func (m *Model) clampSelection() {
	if len(m.activity) == 0 {
		m.selected = -1
		return
	}
	if m.selected >= len(m.activity) {
		m.selected = len(m.activity) - 1
	}
}

// stepAnimation advances the spring and flips its target at either end so
// the sending dot pulses.
func (m Model) stepAnimation() Model {
	m.animPos, m.animVel = m.animSpring.Update(m.animPos, m.animVel, m.animTarget)
	if math.Abs(m.animPos-m.animTarget) < 0.05 {
		m.animTarget = 1 - m.animTarget
	}
	return m
}
