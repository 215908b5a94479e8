package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/model"
)

// clientBuffer is how many pushes a slow WebSocket client may lag behind
// before further pushes to it are dropped.
const clientBuffer = 16

// setData carries the whole sidebar: {"type":"setData","activities":[...],...}.
type setData struct {
	Type string `json:"type"`
	core.Snapshot
}

func setDataMessage(snap core.Snapshot) setData {
	return setData{Type: "setData", Snapshot: snap}
}

// panelMessage reports a request panel change ("state" or "response").
type panelMessage struct {
	Type     string          `json:"type"`
	State    core.State      `json:"state"`
	Request  *model.Request  `json:"request,omitempty"`
	Response *model.Response `json:"response,omitempty"`
}

// clientMessage is what a WebSocket client may send. Only "refresh" is
// understood.
type clientMessage struct {
	Type string `json:"type"`
}

type hub struct {
	mu      sync.Mutex
	clients map[chan any]struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[chan any]struct{})}
}

// join registers a client. The channel is closed by leave or closeAll.
func (h *hub) join() (chan any, func()) {
	ch := make(chan any, clientBuffer)

	h.mu.Lock()
	if h.closed {
		close(ch)
		h.mu.Unlock()
		return ch, func() {}
	}
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) broadcast(msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

func (s *Server) forwardActivity(changes <-chan struct{}) {
	for range changes {
		s.broadcastSnapshot(context.Background())
	}
}

func (s *Server) forwardEvent(ev core.Event) {
	if ev.Type != "state" && ev.Type != "response" {
		return
	}
	s.hub.broadcast(panelMessage{Type: ev.Type, State: ev.State, Request: ev.Request, Response: ev.Response})
}

func (s *Server) broadcastSnapshot(ctx context.Context) {
	if s.hub.size() == 0 {
		return
	}
	snap, err := s.session.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("building sidebar snapshot", "error", err)
		return
	}
	s.hub.broadcast(setDataMessage(snap))
}

// handleWS streams sidebar snapshots and panel events. The first message is
// always a full setData.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", "error", err)
		return
	}
	defer conn.Close()

	ch, leave := s.hub.join()
	defer leave()

	snap, err := s.session.Snapshot(r.Context())
	if err != nil {
		s.logger.Warn("building sidebar snapshot", "error", err)
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	if err := conn.WriteJSON(setDataMessage(snap)); err != nil {
		return
	}
	s.logger.Info("websocket client connected", "remote", r.RemoteAddr)

	readDone := make(chan struct{})
	refresh := make(chan struct{}, 1)
	go func() {
		defer close(readDone)
		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "refresh" {
				select {
				case refresh <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-refresh:
			snap, err := s.session.Snapshot(r.Context())
			if err != nil {
				s.logger.Warn("building sidebar snapshot", "error", err)
				continue
			}
			if err := conn.WriteJSON(setDataMessage(snap)); err != nil {
				return
			}
		case <-readDone:
			s.logger.Info("websocket client disconnected", "remote", r.RemoteAddr)
			return
		case <-s.done:
			return
		}
	}
}
