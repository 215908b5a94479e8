package tui

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/model"
	"github.com/holps-7/striko/pkg/storage"
)

type stubSender struct{}

func (stubSender) Execute(ctx context.Context, req model.Request) model.Response {
	return model.Response{
		Status:     200,
		StatusText: "OK",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Data:       map[string]any{"ok": true},
		Time:       12,
		Size:       11,
	}
}

func newTestModel(t *testing.T) (Model, *core.Session) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := core.NewSession(stubSender{},
		storage.NewCollectionStore(dir, logger),
		storage.NewEnvironmentStore(dir, logger),
		logger)
	m := NewModel(session, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), session
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestModel_OpensBlankRequest(t *testing.T) {
	m, session := newTestModel(t)

	assert.Equal(t, core.StateEditing, session.State())
	assert.Equal(t, model.MethodGet, m.request.Method)
	assert.Contains(t, m.View(), "Activity")
}

func TestModel_TabCyclesMethod(t *testing.T) {
	m, session := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.MethodPost, m.request.Method)
	assert.Equal(t, model.MethodPost, session.Panel().Request.Method)

	for range model.Methods[1:] {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.Equal(t, model.MethodGet, m.request.Method, "wraps around")
}

func TestModel_TypeAndSend(t *testing.T) {
	m, session := newTestModel(t)

	m = typeText(t, m, "https://x.test/users")
	assert.Equal(t, "https://x.test/users", session.Panel().Request.URL)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.sending)
	assert.Contains(t, m.View(), "sending")

	done := sendCmd(context.Background(), session)()
	updated, _ := m.Update(done)
	m = updated.(Model)

	assert.False(t, m.sending)
	require.NotNil(t, m.response)
	assert.Equal(t, 200, m.response.Status)
	assert.Contains(t, m.renderResponse(), "200 OK")
	assert.Contains(t, m.renderResponse(), "11 B")
	assert.Len(t, session.Activity(), 1)
}

func TestModel_SendEmptyURLShowsError(t *testing.T) {
	m, session := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	updated, _ := m.Update(sendCmd(context.Background(), session)())
	m = updated.(Model)

	assert.Equal(t, "enter a URL first", m.errMsg)
	assert.Nil(t, m.response)
}

func TestModel_ActivitySelectOpenDelete(t *testing.T) {
	m, session := newTestModel(t)
	session.SaveToActivity(model.Request{ID: "a", URL: "https://a.test", Method: "GET"})
	session.SaveToActivity(model.Request{ID: "b", URL: "https://b.test", Method: "PUT"})

	updated, _ := m.Update(activityChangedMsg{})
	m = updated.(Model)
	require.Len(t, m.activity, 2)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlDown})
	assert.Equal(t, 0, m.selected)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlDown})
	assert.Equal(t, 1, m.selected, "selection stops at the last entry")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, "a", m.request.ID)
	assert.Equal(t, "https://a.test", m.urlInput.Value())
	assert.Equal(t, "a", session.Panel().Request.ID)
	assert.Equal(t, "a", session.Activity()[0].ID, "opening moves the entry to the front")

	updated, _ = m.Update(activityChangedMsg{})
	m = updated.(Model)
	m.selected = 0
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	require.Len(t, session.Activity(), 1)
	assert.Equal(t, "b", session.Activity()[0].ID)
	assert.Len(t, m.activity, 1)
}

func TestModel_NewRequest(t *testing.T) {
	m, session := newTestModel(t)
	m = typeText(t, m, "https://old.test")
	first := m.request.ID

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.NotEqual(t, first, m.request.ID)
	assert.Empty(t, m.urlInput.Value())
	assert.Empty(t, session.Activity())
}

func TestModel_SaveToCollectionPrompt(t *testing.T) {
	m, session := newTestModel(t)
	m = typeText(t, m, "https://x.test")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, m.saving)

	m = typeText(t, m, "Users")
	assert.Equal(t, "https://x.test", m.request.URL, "prompt input does not touch the URL")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.saving)

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	assert.Equal(t, `created collection "Users"`, m.notice)

	cols, err := session.Collections(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 1)

	m.collections = cols
	assert.Equal(t, core.SaveTarget{CollectionID: cols[0].ID}, m.saveTarget("users"))
	assert.Equal(t, core.SaveTarget{NewName: "Orders"}, m.saveTarget("Orders"))
}

func TestModel_EscClosesPrompt(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.saving)
	assert.Nil(t, cmd)
}

func TestBodyText(t *testing.T) {
	assert.Equal(t, "", bodyText(nil))
	assert.Equal(t, "plain", bodyText("plain"))
	assert.Equal(t, "{\n  \"a\": 1\n}", bodyText(map[string]any{"a": 1}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
