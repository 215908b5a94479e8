package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/holps-7/striko/pkg/activity"
	"github.com/holps-7/striko/pkg/model"
	"github.com/holps-7/striko/pkg/storage"
)

// ErrNoSaveTarget is returned by SaveToCollection when neither a collection
// id nor a new collection name is given.
var ErrNoSaveTarget = errors.New("no collection id or new collection name given")

// Sender performs one HTTP exchange. *executor.Executor implements it.
type Sender interface {
	Execute(ctx context.Context, req model.Request) model.Response
}

// Session owns one request panel. Hosts (TUI, API server, CLI) drive it
// through its methods; all methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	state    State
	request  *model.Request
	response *model.Response
	sending  bool
	sendID   string

	sender       Sender
	activity     *activity.Tracker
	collections  *storage.CollectionStore
	environments *storage.EnvironmentStore
	logger       *slog.Logger
	onEvent      EventCallback
}

// NewSession creates an idle session with an empty activity list.
func NewSession(sender Sender, collections *storage.CollectionStore, environments *storage.EnvironmentStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		state:        StateIdle,
		sender:       sender,
		activity:     activity.NewTracker(),
		collections:  collections,
		environments: environments,
		logger:       logger,
	}
}

// SetEventCallback registers the function that receives session events.
func (s *Session) SetEventCallback(cb EventCallback) {
	s.mu.Lock()
	s.onEvent = cb
	s.mu.Unlock()
}

// Tracker exposes the activity list for change subscriptions.
func (s *Session) Tracker() *activity.Tracker {
	return s.activity
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	cb := s.onEvent
	s.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

// setRequestLocked replaces the live request. While a send is running the
// panel stays in StateSending.
func (s *Session) setRequestLocked(req model.Request, clearResponse bool) {
	r := req.Clone()
	s.request = &r
	if clearResponse {
		s.response = nil
	}
	if !s.sending {
		s.state = StateEditing
	}
}

func (s *Session) stateEvent() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := Event{Type: "state", State: s.state}
	if s.request != nil {
		r := s.request.Clone()
		ev.Request = &r
	}
	return ev
}

// NewRequest opens a blank request. It is not recorded as activity.
func (s *Session) NewRequest() model.Request {
	req := model.NewRequest()

	s.mu.Lock()
	s.setRequestLocked(req, true)
	s.mu.Unlock()

	s.logger.Debug("new request", "id", req.ID)
	s.emit(s.stateEvent())
	return req
}

// LoadRequest opens req in the panel and records it as activity.
func (s *Session) LoadRequest(req model.Request) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.setRequestLocked(req, true)
	s.mu.Unlock()

	s.activity.Record(req)
	s.logger.Debug("request loaded", "id", req.ID, "url", req.URL)
	s.emit(s.stateEvent())
}

// withIDLocked gives an id-less edit the id of the live request, or a fresh
// one when nothing is open.
func (s *Session) withIDLocked(req model.Request) model.Request {
	if req.ID != "" {
		return req
	}
	if s.request != nil && s.request.ID != "" {
		req.ID = s.request.ID
	} else {
		req.ID = uuid.NewString()
	}
	return req
}

// UpdateRequest replaces the live request with an edited version. The last
// response is kept but the panel returns to editing. When saveToActivity is
// set the edited request is also recorded.
func (s *Session) UpdateRequest(req model.Request, saveToActivity bool) {
	s.mu.Lock()
	req = s.withIDLocked(req)
	s.setRequestLocked(req, false)
	s.mu.Unlock()

	if saveToActivity {
		s.activity.Record(req)
	}
	s.emit(s.stateEvent())
}

// SaveToActivity records req without touching the panel.
func (s *Session) SaveToActivity(req model.Request) bool {
	return s.activity.Record(req)
}

// Send executes the live request. An empty URL is rejected before anything
// changes. Whatever the outcome of the exchange, the request is recorded as
// activity and the response is returned.
func (s *Session) Send(ctx context.Context) (model.Response, error) {
	s.mu.Lock()
	req, err := s.beginSendLocked()
	s.mu.Unlock()
	if err != nil {
		return model.Response{}, err
	}
	return s.finishSend(ctx, req), nil
}

// SendRequest makes req the live request and sends it. A rejected request
// leaves the panel as it was.
func (s *Session) SendRequest(ctx context.Context, req model.Request) (model.Response, error) {
	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return model.Response{}, ErrSendInFlight
	}
	if strings.TrimSpace(req.URL) == "" {
		s.mu.Unlock()
		return model.Response{}, ErrEmptyURL
	}
	s.setRequestLocked(s.withIDLocked(req), false)
	sent, err := s.beginSendLocked()
	s.mu.Unlock()
	if err != nil {
		return model.Response{}, err
	}
	return s.finishSend(ctx, sent), nil
}

func (s *Session) beginSendLocked() (model.Request, error) {
	if s.sending {
		return model.Request{}, ErrSendInFlight
	}
	if s.request == nil {
		return model.Request{}, ErrNoActiveRequest
	}
	if strings.TrimSpace(s.request.URL) == "" {
		return model.Request{}, ErrEmptyURL
	}
	s.sending = true
	s.sendID = s.request.ID
	s.state = StateSending
	return s.request.Clone(), nil
}

func (s *Session) finishSend(ctx context.Context, req model.Request) model.Response {
	s.emit(s.stateEvent())

	resp := s.sender.Execute(ctx, req)

	s.mu.Lock()
	s.sending = false
	if s.request != nil && s.request.ID == s.sendID {
		r := resp
		s.response = &r
		s.state = StateDisplayingResponse
	} else {
		// The panel moved on to another request while this one was in flight.
		s.state = StateEditing
	}
	s.sendID = ""
	s.mu.Unlock()

	s.activity.Record(req)

	if resp.Failed() {
		s.logger.Warn("request failed", "method", model.NormalizeMethod(req.Method), "url", req.URL, "error", resp.ErrorMessage(), "ms", resp.Time)
	} else {
		s.logger.Info("request sent", "method", model.NormalizeMethod(req.Method), "url", req.URL, "status", resp.Status, "ms", resp.Time)
	}

	ev := s.stateEvent()
	ev.Type = "response"
	ev.Response = &resp
	s.emit(ev)
	return resp
}

// Panel returns copies of the live request and its last response.
func (s *Session) Panel() PanelState {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := PanelState{State: s.state}
	if s.request != nil {
		r := s.request.Clone()
		p.Request = &r
	}
	if s.response != nil {
		r := *s.response
		p.Response = &r
	}
	return p
}

// State returns the panel state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activity lists recent requests, newest first.
func (s *Session) Activity() []model.Request {
	return s.activity.List()
}

// DeleteActivity removes one entry from the activity list.
func (s *Session) DeleteActivity(id string) bool {
	removed := s.activity.Remove(id)
	if removed {
		s.logger.Debug("activity removed", "id", id)
	}
	return removed
}

// SaveToCollection writes the live request into an existing collection, or
// into a new one named target.NewName.
func (s *Session) SaveToCollection(ctx context.Context, target SaveTarget) (SaveResult, error) {
	s.mu.Lock()
	if s.request == nil {
		s.mu.Unlock()
		return SaveResult{}, ErrNoActiveRequest
	}
	req := s.request.Clone()
	s.mu.Unlock()

	if target.CollectionID != "" {
		c, replaced, err := s.collections.AddRequest(ctx, target.CollectionID, req)
		if errors.Is(err, storage.ErrNotFound) {
			return SaveResult{}, fmt.Errorf("%w: %s", ErrCollectionNotFound, target.CollectionID)
		}
		if err != nil {
			return SaveResult{}, err
		}

		result := SaveResult{Collection: c, Replaced: replaced}
		if replaced != nil {
			result.Diff = RequestDiff(*replaced, req)
		}
		s.logger.Info("request saved to collection", "collection", c.Name, "request", req.ID, "replaced", replaced != nil)
		return result, nil
	}

	name := strings.TrimSpace(target.NewName)
	if name == "" {
		return SaveResult{}, ErrNoSaveTarget
	}
	c, err := s.collections.Create(ctx, name, req)
	if err != nil {
		return SaveResult{}, err
	}
	s.logger.Info("collection created", "collection", c.Name, "id", c.ID, "request", req.ID)
	return SaveResult{Collection: c, Created: true}, nil
}

// Collections lists saved collections.
func (s *Session) Collections(ctx context.Context) ([]model.Collection, error) {
	return s.collections.List(ctx)
}

// Collection loads one collection by id.
func (s *Session) Collection(ctx context.Context, id string) (model.Collection, bool, error) {
	c, found, err := s.collections.Get(ctx, id)
	var corrupt *storage.CorruptRecordError
	if errors.As(err, &corrupt) {
		s.logger.Warn("corrupt collection", "path", corrupt.Path, "error", corrupt.Err)
	}
	return c, found, err
}

// SaveCollection writes c whole. A collection without an id gets one.
func (s *Session) SaveCollection(ctx context.Context, c model.Collection) (model.Collection, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.collections.Save(ctx, c); err != nil {
		return model.Collection{}, err
	}
	s.logger.Debug("collection saved", "id", c.ID)
	return c, nil
}

// Environments lists saved environments.
func (s *Session) Environments(ctx context.Context) ([]model.Environment, error) {
	return s.environments.List(ctx)
}

// SaveEnvironment writes env whole. An environment without an id gets one.
func (s *Session) SaveEnvironment(ctx context.Context, env model.Environment) (model.Environment, error) {
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if err := s.environments.Save(ctx, env); err != nil {
		return model.Environment{}, err
	}
	s.logger.Debug("environment saved", "id", env.ID)
	return env, nil
}

// Snapshot gathers the activity list and all saved records for the sidebar.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	cols, err := s.Collections(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	envs, err := s.Environments(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Activities:   s.Activity(),
		Collections:  cols,
		Environments: envs,
	}, nil
}
