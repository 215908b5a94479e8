package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holps-7/striko/pkg/model"
	"github.com/holps-7/striko/pkg/storage"
)

// fakeSender answers every request with resp and remembers what it was sent.
// When block is set, Execute waits on it before returning.
type fakeSender struct {
	mu      sync.Mutex
	resp    model.Response
	sent    []model.Request
	started chan struct{}
	block   chan struct{}
}

func (f *fakeSender) Execute(ctx context.Context, req model.Request) model.Response {
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.resp
}

func newTestSession(t *testing.T, sender Sender) *Session {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSession(sender,
		storage.NewCollectionStore(dir, logger),
		storage.NewEnvironmentStore(dir, logger),
		logger)
}

func okResponse() model.Response {
	return model.Response{Status: 200, StatusText: "OK", Headers: map[string]string{}, Data: "ok", Time: 3, Size: 2}
}

func TestSession_NewRequestDoesNotRecordActivity(t *testing.T) {
	s := newTestSession(t, &fakeSender{resp: okResponse()})
	assert.Equal(t, StateIdle, s.State())

	req := s.NewRequest()
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, "New Request", req.Name)
	assert.Equal(t, model.MethodGet, req.Method)
	assert.Empty(t, s.Activity())
}

func TestSession_LoadRequestRecordsActivity(t *testing.T) {
	s := newTestSession(t, &fakeSender{resp: okResponse()})

	s.LoadRequest(model.Request{ID: "blank"})
	assert.Equal(t, StateEditing, s.State())
	assert.Empty(t, s.Activity(), "requests without a URL are not recorded")

	s.LoadRequest(model.Request{ID: "r1", URL: "https://x.test"})
	require.Len(t, s.Activity(), 1)
	assert.Equal(t, "r1", s.Activity()[0].ID)
}

func TestSession_SendEmptyURL(t *testing.T) {
	sender := &fakeSender{resp: okResponse()}
	s := newTestSession(t, sender)

	_, err := s.Send(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveRequest)

	s.NewRequest()
	_, err = s.Send(context.Background())
	assert.ErrorIs(t, err, ErrEmptyURL)
	assert.Equal(t, StateEditing, s.State())
	assert.Empty(t, sender.sent)
	assert.Empty(t, s.Activity())
}

func TestSession_SendRequestEmptyURLLeavesPanel(t *testing.T) {
	sender := &fakeSender{resp: okResponse()}
	s := newTestSession(t, sender)

	s.LoadRequest(model.Request{ID: "a", URL: "https://a.test"})
	_, err := s.Send(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateDisplayingResponse, s.State())

	var events []Event
	s.SetEventCallback(func(ev Event) { events = append(events, ev) })

	_, err = s.SendRequest(context.Background(), model.Request{ID: "b", URL: "  "})
	assert.ErrorIs(t, err, ErrEmptyURL)

	panel := s.Panel()
	assert.Equal(t, StateDisplayingResponse, panel.State)
	require.NotNil(t, panel.Request)
	assert.Equal(t, "a", panel.Request.ID)
	assert.NotNil(t, panel.Response)
	assert.Len(t, sender.sent, 1)
	assert.Empty(t, events)
}

func TestState_TextRoundTrip(t *testing.T) {
	for st := StateIdle; st <= StateDisplayingResponse; st++ {
		text, err := st.MarshalText()
		require.NoError(t, err)
		var got State
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, st, got)
	}
	var bad State
	assert.Error(t, bad.UnmarshalText([]byte("flying")))
}

func TestSession_IDLessRequestsGetAnID(t *testing.T) {
	s := newTestSession(t, &fakeSender{resp: okResponse()})

	s.UpdateRequest(model.Request{URL: "https://x.test"}, true)
	first := s.Panel().Request.ID
	assert.NotEmpty(t, first)
	require.Len(t, s.Activity(), 1)
	assert.Equal(t, first, s.Activity()[0].ID)

	s.UpdateRequest(model.Request{URL: "https://x.test/v2"}, false)
	assert.Equal(t, first, s.Panel().Request.ID, "edits keep the live id")

	_, err := s.SendRequest(context.Background(), model.Request{URL: "https://x.test/v3"})
	require.NoError(t, err)
	assert.Equal(t, first, s.Panel().Request.ID)

	s.LoadRequest(model.Request{URL: "https://y.test"})
	assert.NotEmpty(t, s.Panel().Request.ID)
	assert.NotEqual(t, first, s.Panel().Request.ID)
}

func TestSession_SendRecordsAndDisplays(t *testing.T) {
	sender := &fakeSender{resp: okResponse()}
	s := newTestSession(t, sender)

	var events []Event
	s.SetEventCallback(func(ev Event) { events = append(events, ev) })

	req := model.NewRequest()
	req.URL = "https://x.test/users"
	resp, err := s.SendRequest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, StateDisplayingResponse, s.State())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, req.URL, sender.sent[0].URL)

	act := s.Activity()
	require.Len(t, act, 1)
	assert.Equal(t, req.ID, act[0].ID)

	panel := s.Panel()
	require.NotNil(t, panel.Response)
	assert.Equal(t, 200, panel.Response.Status)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "response", last.Type)
	require.NotNil(t, last.Response)
	assert.Equal(t, 200, last.Response.Status)
}

func TestSession_FailedSendStillRecorded(t *testing.T) {
	sender := &fakeSender{resp: model.Response{Status: 0, StatusText: model.NetworkErrorText, Data: map[string]any{"error": "refused"}}}
	s := newTestSession(t, sender)

	s.UpdateRequest(model.Request{ID: "r1", URL: "http://127.0.0.1:1"}, false)
	resp, err := s.Send(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Failed())
	assert.Len(t, s.Activity(), 1)
}

func TestSession_UpdateRequestLeavesResponseView(t *testing.T) {
	s := newTestSession(t, &fakeSender{resp: okResponse()})

	s.UpdateRequest(model.Request{ID: "r1", URL: "https://x.test"}, false)
	assert.Empty(t, s.Activity())
	_, err := s.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDisplayingResponse, s.State())

	s.UpdateRequest(model.Request{ID: "r1", URL: "https://x.test/v2"}, true)
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, "https://x.test/v2", s.Activity()[0].URL)
	assert.NotNil(t, s.Panel().Response, "last response is kept while editing")
}

func TestSession_RejectsOverlappingSends(t *testing.T) {
	sender := &fakeSender{resp: okResponse(), started: make(chan struct{}, 1), block: make(chan struct{})}
	s := newTestSession(t, sender)
	s.UpdateRequest(model.Request{ID: "r1", URL: "https://x.test"}, false)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background())
		done <- err
	}()
	<-sender.started

	assert.Equal(t, StateSending, s.State())
	_, err := s.Send(context.Background())
	assert.ErrorIs(t, err, ErrSendInFlight)
	_, err = s.SendRequest(context.Background(), model.Request{ID: "r2", URL: "https://y.test"})
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(sender.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateDisplayingResponse, s.State())
}

func TestSession_LoadDuringSendDropsStaleResponse(t *testing.T) {
	sender := &fakeSender{resp: okResponse(), started: make(chan struct{}, 1), block: make(chan struct{})}
	s := newTestSession(t, sender)
	s.UpdateRequest(model.Request{ID: "r1", URL: "https://x.test"}, false)

	done := make(chan struct{})
	go func() {
		_, _ = s.Send(context.Background())
		close(done)
	}()
	<-sender.started

	s.LoadRequest(model.Request{ID: "r2", URL: "https://y.test"})
	close(sender.block)
	<-done

	panel := s.Panel()
	assert.Equal(t, StateEditing, panel.State)
	assert.Nil(t, panel.Response)
	assert.Equal(t, "r2", panel.Request.ID)
}

func TestSession_DeleteActivity(t *testing.T) {
	s := newTestSession(t, &fakeSender{resp: okResponse()})
	s.SaveToActivity(model.Request{ID: "r1", URL: "https://x.test"})

	assert.True(t, s.DeleteActivity("r1"))
	assert.False(t, s.DeleteActivity("r1"))
	assert.Empty(t, s.Activity())
}

func TestSession_SaveToCollection(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &fakeSender{resp: okResponse()})

	_, err := s.SaveToCollection(ctx, SaveTarget{NewName: "Users"})
	assert.ErrorIs(t, err, ErrNoActiveRequest)

	s.UpdateRequest(model.Request{ID: "r1", Name: "List users", URL: "https://x.test/users", Method: "GET"}, false)

	_, err = s.SaveToCollection(ctx, SaveTarget{})
	assert.ErrorIs(t, err, ErrNoSaveTarget)

	created, err := s.SaveToCollection(ctx, SaveTarget{NewName: "  Users "})
	require.NoError(t, err)
	assert.True(t, created.Created)
	assert.Equal(t, "Users", created.Collection.Name)
	require.Len(t, created.Collection.Requests, 1)

	s.UpdateRequest(model.Request{ID: "r1", Name: "List users", URL: "https://x.test/users?page=2", Method: "GET"}, false)
	updated, err := s.SaveToCollection(ctx, SaveTarget{CollectionID: created.Collection.ID})
	require.NoError(t, err)
	assert.False(t, updated.Created)
	require.NotNil(t, updated.Replaced)
	assert.Equal(t, "https://x.test/users", updated.Replaced.URL)
	assert.Contains(t, updated.Diff, `-  "url": "https://x.test/users",`)
	assert.Contains(t, updated.Diff, `+  "url": "https://x.test/users?page=2",`)
	assert.Len(t, updated.Collection.Requests, 1)

	_, err = s.SaveToCollection(ctx, SaveTarget{CollectionID: "missing"})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestSession_SaveEnvironmentAssignsID(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, &fakeSender{resp: okResponse()})

	env, err := s.SaveEnvironment(ctx, model.Environment{Name: "dev", Variables: map[string]string{"A": "1"}})
	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)

	c, err := s.SaveCollection(ctx, model.Collection{Name: "Empty"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	s.SaveToActivity(model.Request{ID: "r1", URL: "https://x.test"})

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Activities, 1)
	require.Len(t, snap.Collections, 1)
	assert.Equal(t, "Empty", snap.Collections[0].Name)
	require.Len(t, snap.Environments, 1)
	assert.Equal(t, "1", snap.Environments[0].Variables["A"])
}

func TestInitializeFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".striko")

	created, err := InitializeFolder(dir)
	require.NoError(t, err)
	assert.True(t, created)
	assert.DirExists(t, storage.CollectionsDir(dir))
	assert.DirExists(t, storage.EnvironmentsDir(dir))
	assert.FileExists(t, filepath.Join(dir, ConfigFileName))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{"log_level":"debug"}`), 0644))
	created, err = InitializeFolder(dir)
	require.NoError(t, err)
	assert.False(t, created)

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"log_level":"debug"}`, string(data), "existing config is kept")
}
