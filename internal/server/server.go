// Package server exposes editing sessions over HTTP.
//
// Each session wraps one editor.Session behind a per-session mutex; the
// HTTP layer serializes mutations so concurrent requests against the same
// session apply in some total order. Sessions persist to the snapshot
// store after every successful mutation and are restored transparently
// when a request arrives for a session that is no longer in memory.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shelfworks/shelfstack/pkg/catalog"
	"github.com/shelfworks/shelfstack/pkg/editor"
	"github.com/shelfworks/shelfstack/pkg/export"
	"github.com/shelfworks/shelfstack/pkg/layouts"
	"github.com/shelfworks/shelfstack/pkg/observability"
	"github.com/shelfworks/shelfstack/pkg/snapshot"
)

// Config carries the server's collaborators and settings.
type Config struct {
	Library  *layouts.Library
	Catalog  catalog.Source
	Store    snapshot.Store
	Logger   *log.Logger
	Geometry export.Geometry
	// Rules toggles business placement checks for new sessions.
	Rules bool
	// SessionTTL bounds how long idle sessions persist. Zero means
	// snapshot.DefaultTTL.
	SessionTTL time.Duration
}

// Server is the HTTP editing API.
type Server struct {
	library  *layouts.Library
	catalog  catalog.Source
	store    snapshot.Store
	logger   *log.Logger
	geometry export.Geometry
	rules    bool
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionHandle
}

// sessionHandle serializes access to one editor session.
type sessionHandle struct {
	mu      sync.Mutex
	session *editor.Session
}

// New builds a server from its configuration.
func New(cfg Config) *Server {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = snapshot.DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	geo := cfg.Geometry
	if geo == (export.Geometry{}) {
		geo = export.DefaultGeometry
	}
	return &Server{
		library:  cfg.Library,
		catalog:  cfg.Catalog,
		store:    cfg.Store,
		logger:   logger,
		geometry: geo,
		rules:    cfg.Rules,
		ttl:      ttl,
		sessions: make(map[string]*sessionHandle),
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/layouts", s.handleListLayouts)
		r.Get("/layouts/{layoutID}", s.handleGetLayout)
		r.Get("/skus", s.handleListSKUs)
		r.Get("/skus/{sku}", s.handleGetSKU)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Post("/items", s.handleAddItem)
			r.Delete("/items", s.handleRemoveItems)
			r.Delete("/items/{itemID}", s.handleRemoveItem)
			r.Post("/items/{itemID}/move", s.handleMoveStack)
			r.Post("/items/{itemID}/stack", s.handleStackOnto)
			r.Post("/items/{itemID}/duplicate", s.handleDuplicate)
			r.Post("/items/{itemID}/replace", s.handleReplaceItem)
			r.Post("/items/{itemID}/width", s.handleUpdateWidth)
			r.Post("/rows/{doorID}/{rowID}/reorder", s.handleReorderStack)

			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Post("/clear", s.handleClearAll)

			r.Get("/targets", s.handleLegalTargets)
			r.Get("/conflicts", s.handleConflicts)
			r.Get("/export", s.handleExport)
			r.Get("/preview.svg", s.handlePreviewSVG)
			r.Get("/preview.png", s.handlePreviewPNG)
		})
	})

	return r
}

// logRequests logs method, path, and duration for every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started).Round(time.Microsecond),
		)
	})
}

// acquire returns the handle for a session, restoring it from the snapshot
// store when it is not in memory. The caller must Unlock the handle's mutex.
func (s *Server) acquire(ctx context.Context, sessionID string) (*sessionHandle, error) {
	s.mu.Lock()
	h, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		h.mu.Lock()
		return h, nil
	}

	started := time.Now()
	rec, found, err := s.store.Load(ctx, sessionID)
	observability.Store().OnLoad(ctx, "server", sessionID, found, time.Since(started), err)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errSessionNotFound(sessionID)
	}

	h = &sessionHandle{session: editor.Restore(rec, s.rules)}
	s.mu.Lock()
	// another request may have restored it concurrently; keep the first
	if existing, ok := s.sessions[sessionID]; ok {
		h = existing
	} else {
		s.sessions[sessionID] = h
	}
	s.mu.Unlock()

	h.mu.Lock()
	return h, nil
}

// persist writes the session state through to the snapshot store. Persist
// failures are logged, not surfaced; the in-memory session stays
// authoritative.
func (s *Server) persist(ctx context.Context, sessionID string, h *sessionHandle) {
	started := time.Now()
	err := s.store.Save(ctx, sessionID, h.session.Record(), s.ttl)
	observability.Store().OnSave(ctx, "server", sessionID, time.Since(started), err)
	if err != nil {
		s.logger.Error("persist session", "session", sessionID, "err", err)
	}
}
