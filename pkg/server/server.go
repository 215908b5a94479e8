// Package server exposes a session over a local JSON API and pushes sidebar
// updates to WebSocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/model"
	"github.com/holps-7/striko/pkg/storage"
)

// Config configures the API host.
type Config struct {
	ListenAddr string
	// AllowedOrigins lists browser origins besides loopback ones that may
	// call the API, e.g. "vscode-webview://abc".
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server is the HTTP + WebSocket surface of one session.
type Server struct {
	cfg      Config
	session  *core.Session
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
	hub      *hub

	closeOnce    sync.Once
	stopActivity func()
	done         chan struct{}
}

// NewServer wires the routes and starts forwarding activity changes to
// WebSocket clients. Call Close to stop forwarding.
func NewServer(cfg Config, session *core.Session) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:     cfg,
		session: session,
		router:  r,
		logger:  logger,
		hub:     newHub(),
		done:    make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.allowOrigin(r.Header.Get("Origin"))
		},
	}

	changes, stop := session.Tracker().Subscribe()
	s.stopActivity = stop
	go s.forwardActivity(changes)
	session.SetEventCallback(s.forwardEvent)

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	// Request panel
	r.Post("/send", s.handleSend)
	r.Post("/load", s.handleLoad)
	r.Post("/new", s.handleNew)
	r.Put("/request", s.handleUpdateRequest)
	r.Get("/state", s.handleState)

	// Activity
	r.Get("/activity", s.handleListActivity)
	r.Post("/activity", s.handleSaveActivity)
	r.Delete("/activity/{id}", s.handleDeleteActivity)

	// Collections
	r.Get("/collections", s.handleListCollections)
	r.Put("/collections", s.handleSaveCollection)
	r.Post("/collections", s.handleCreateCollection)
	r.Get("/collections/{id}", s.handleGetCollection)
	r.Post("/collections/{id}/requests", s.handleSaveToCollection)

	// Environments
	r.Get("/environments", s.handleListEnvironments)
	r.Put("/environments", s.handleSaveEnvironment)

	// Sidebar snapshot and push
	r.Get("/sidebar", s.handleSidebar)
	r.Get("/ws", s.handleWS)
}

// corsMiddleware refuses browser requests whose origin is neither loopback
// nor configured. Refused requests never reach a handler, including simple
// ones that skip preflight.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !s.allowOrigin(origin) {
			s.logger.Warn("origin refused", "origin", origin, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, "origin not allowed")
			return
		}
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowOrigin reports whether a page at origin may use the API. Requests
// without an Origin header do not come from a browser page.
func (s *Server) allowOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("http_request", "method", r.Method, "path", r.URL.Path)
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // sends can take as long as the target API
	}
}

// Close stops forwarding activity changes and disconnects WebSocket clients.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.session.SetEventCallback(nil)
		s.stopActivity()
		close(s.done)
		s.hub.closeAll()
	})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// storeError maps a storage failure to a response.
func (s *Server) storeError(w http.ResponseWriter, what string, err error) {
	var corrupt *storage.CorruptRecordError
	switch {
	case errors.As(err, &corrupt):
		s.logger.Warn(what, "path", corrupt.Path, "error", corrupt.Err)
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, storage.ErrMissingID), errors.Is(err, storage.ErrInvalidID), errors.Is(err, storage.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Warn(what, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Request panel ---

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req *model.Request
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	var (
		resp model.Response
		err  error
	)
	if req != nil {
		resp, err = s.session.SendRequest(r.Context(), *req)
	} else {
		resp, err = s.session.Send(r.Context())
	}

	switch {
	case errors.Is(err, core.ErrEmptyURL), errors.Is(err, core.ErrNoActiveRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrSendInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req model.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "request id is required")
		return
	}
	s.session.LoadRequest(req)
	writeJSON(w, http.StatusOK, s.session.Panel())
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.session.NewRequest()
	writeJSON(w, http.StatusCreated, s.session.Panel())
}

func (s *Server) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Request        *model.Request `json:"request"`
		SaveToActivity bool           `json:"saveToActivity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Request == nil {
		writeError(w, http.StatusBadRequest, "missing request")
		return
	}
	s.session.UpdateRequest(*body.Request, body.SaveToActivity)
	writeJSON(w, http.StatusOK, s.session.Panel())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Panel())
}

// --- Activity ---

func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Activity())
}

func (s *Server) handleSaveActivity(w http.ResponseWriter, r *http.Request) {
	var req model.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "request id is required")
		return
	}
	recorded := s.session.SaveToActivity(req)
	writeJSON(w, http.StatusOK, map[string]bool{"recorded": recorded})
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.session.DeleteActivity(id) {
		writeError(w, http.StatusNotFound, "activity entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Collections ---

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.session.Collections(r.Context())
	if err != nil {
		s.storeError(w, "listing collections", err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, found, err := s.session.Collection(r.Context(), id)
	if err != nil {
		s.storeError(w, "getting collection", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSaveCollection(w http.ResponseWriter, r *http.Request) {
	var c model.Collection
	if err := decodeBody(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	saved, err := s.session.SaveCollection(r.Context(), c)
	if err != nil {
		s.storeError(w, "saving collection", err)
		return
	}
	s.logger.Info("saved collection", "id", saved.ID, "name", saved.Name)
	s.broadcastSnapshot(r.Context())
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	s.saveToCollection(w, r, core.SaveTarget{NewName: body.Name})
}

func (s *Server) handleSaveToCollection(w http.ResponseWriter, r *http.Request) {
	s.saveToCollection(w, r, core.SaveTarget{CollectionID: chi.URLParam(r, "id")})
}

func (s *Server) saveToCollection(w http.ResponseWriter, r *http.Request, target core.SaveTarget) {
	result, err := s.session.SaveToCollection(r.Context(), target)
	switch {
	case errors.Is(err, core.ErrNoActiveRequest), errors.Is(err, core.ErrNoSaveTarget):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, core.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.storeError(w, "saving request to collection", err)
		return
	}

	s.broadcastSnapshot(r.Context())
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// --- Environments ---

func (s *Server) handleListEnvironments(w http.ResponseWriter, r *http.Request) {
	envs, err := s.session.Environments(r.Context())
	if err != nil {
		s.storeError(w, "listing environments", err)
		return
	}
	writeJSON(w, http.StatusOK, envs)
}

func (s *Server) handleSaveEnvironment(w http.ResponseWriter, r *http.Request) {
	var env model.Environment
	if err := decodeBody(r, &env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	saved, err := s.session.SaveEnvironment(r.Context(), env)
	if err != nil {
		s.storeError(w, "saving environment", err)
		return
	}
	s.logger.Info("saved environment", "id", saved.ID, "name", saved.Name)
	s.broadcastSnapshot(r.Context())
	writeJSON(w, http.StatusOK, saved)
}

// --- Sidebar ---

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Snapshot(r.Context())
	if err != nil {
		s.storeError(w, "building sidebar", err)
		return
	}
	writeJSON(w, http.StatusOK, setDataMessage(snap))
}
