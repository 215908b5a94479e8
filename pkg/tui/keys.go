package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/model"
)

// handleKeyMsg processes keyboard input. handled is false when the key should
// also reach the focused text input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if m.saving {
		return m.handleSaveKey(msg)
	}

	m.notice = ""

	switch msg.String() {
	case "ctrl+c":
		if m.cancelSend != nil {
			m.cancelSend()
		}
		return m, tea.Quit, true

	case "esc":
		if m.sending && m.cancelSend != nil {
			m.cancelSend()
			return m, nil, true
		}
		return m, tea.Quit, true

	case "tab":
		return m.handleCycleMethod()

	case "enter":
		return m.handleSend()

	case "ctrl+up":
		return m.moveSelection(-1), nil, true

	case "ctrl+down":
		return m.moveSelection(1), nil, true

	case "ctrl+o":
		return m.handleOpenSelected()

	case "ctrl+d":
		return m.handleDeleteSelected()

	case "ctrl+n":
		return m.handleNewRequest()

	case "ctrl+s":
		return m.handleOpenSavePrompt()

	case "ctrl+r":
		return m, refreshCmd(m.session), true

	case "ctrl+y":
		return m.handleCopyResponse()

	case "home":
		m.viewport.GotoTop()
		return m, nil, true

	case "end":
		m.viewport.GotoBottom()
		return m, nil, true

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true

	default:
		return m, nil, false
	}
}

// handleSaveKey handles keys while the collection prompt is open.
func (m Model) handleSaveKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true

	case "esc":
		return m.closeSavePrompt(), nil, true

	case "enter":
		name := strings.TrimSpace(m.saveInput.Value())
		if name == "" {
			return m, nil, true
		}
		target := m.saveTarget(name)
		m = m.closeSavePrompt()
		return m, saveCmd(m.session, target), true

	default:
		return m, nil, false
	}
}

// saveTarget picks an existing collection matching name by id or
// case-insensitive name, or asks for a new one.
func (m Model) saveTarget(name string) core.SaveTarget {
	for _, c := range m.collections {
		if c.ID == name || strings.EqualFold(c.Name, name) {
			return core.SaveTarget{CollectionID: c.ID}
		}
	}
	return core.SaveTarget{NewName: name}
}

func (m Model) handleOpenSavePrompt() (Model, tea.Cmd, bool) {
	m.saving = true
	m.saveInput.SetValue("")
	m.urlInput.Blur()
	return m, tea.Batch(m.saveInput.Focus(), textinput.Blink), true
}

func (m Model) closeSavePrompt() Model {
	m.saving = false
	m.saveInput.Blur()
	m.urlInput.Focus()
	return m
}

// handleCycleMethod switches to the next method in panel order.
func (m Model) handleCycleMethod() (Model, tea.Cmd, bool) {
	if m.sending {
		return m, nil, true
	}
	current := model.NormalizeMethod(m.request.Method)
	next := model.Methods[0]
	for i, method := range model.Methods {
		if method == current {
			next = model.Methods[(i+1)%len(model.Methods)]
			break
		}
	}
	m.request.Method = next
	m.session.UpdateRequest(m.request, false)
	return m, nil, true
}

// handleSend starts sending the live request.
func (m Model) handleSend() (Model, tea.Cmd, bool) {
	if m.sending {
		return m, nil, true
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.sending = true
	m.cancelSend = cancel
	m.errMsg = ""
	m.animPos, m.animVel, m.animTarget = 0, 0, 1
	m.updateViewportContent()

	return m, tea.Batch(
		sendCmd(ctx, m.session),
		m.spinner.Tick,
		animTick(),
	), true
}

func (m Model) moveSelection(delta int) Model {
	if len(m.activity) == 0 {
		m.selected = -1
		return m
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.activity) {
		m.selected = len(m.activity) - 1
	}
	return m
}

// handleOpenSelected loads the selected activity entry into the panel.
func (m Model) handleOpenSelected() (Model, tea.Cmd, bool) {
	if m.selected < 0 || m.selected >= len(m.activity) {
		return m, nil, true
	}
	req := m.activity[m.selected]
	m.session.LoadRequest(req)
	m.request = req
	m.response = nil
	m.urlInput.SetValue(req.URL)
	m.urlInput.CursorEnd()
	m.updateViewportContent()
	return m, nil, true
}

// handleDeleteSelected removes the selected entry from the activity list.
func (m Model) handleDeleteSelected() (Model, tea.Cmd, bool) {
	if m.selected < 0 || m.selected >= len(m.activity) {
		return m, nil, true
	}
	m.session.DeleteActivity(m.activity[m.selected].ID)
	m.activity = m.session.Activity()
	m.clampSelection()
	return m, nil, true
}

// handleNewRequest opens a blank request.
func (m Model) handleNewRequest() (Model, tea.Cmd, bool) {
	m.request = m.session.NewRequest()
	m.response = nil
	m.errMsg = ""
	m.urlInput.SetValue("")
	m.updateViewportContent()
	return m, nil, true
}

// handleCopyResponse copies the last response body to the clipboard.
func (m Model) handleCopyResponse() (Model, tea.Cmd, bool) {
	if m.response == nil {
		return m, nil, true
	}
	if err := clipboard.WriteAll(bodyText(m.response.Data)); err != nil {
		m.errMsg = "copy failed: " + err.Error()
		return m, nil, true
	}
	m.notice = "response copied"
	return m, nil, true
}
