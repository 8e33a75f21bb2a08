package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shelfworks/shelfstack/pkg/editor"
	"github.com/shelfworks/shelfstack/pkg/errors"
	"github.com/shelfworks/shelfstack/pkg/export"
	"github.com/shelfworks/shelfstack/pkg/observability"
	"github.com/shelfworks/shelfstack/pkg/planogram"
	"github.com/shelfworks/shelfstack/pkg/preview"
)

func errSessionNotFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
}

// statusFor maps error codes to HTTP status codes. Placement rejections are
// client errors carrying the code in the body so the UI can explain the
// rejected drop.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeCapacityExceeded,
		errors.ErrCodeInvalidStack,
		errors.ErrCodeProductTypeNotAllowed,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidTarget,
		errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeItemNotFound,
		errors.ErrCodeLayoutNotFound,
		errors.ErrCodeSKUNotFound,
		errors.ErrCodeRowNotFound,
		errors.ErrCodeDoorNotFound,
		errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.writeJSON(w, statusFor(err), errorBody{Code: code, Message: errors.UserMessage(err)})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// sessionState is the session representation returned by most endpoints.
type sessionState struct {
	ID        string              `json:"id"`
	LayoutID  string              `json:"layoutId"`
	Rules     bool                `json:"rules"`
	Container planogram.Container `json:"container"`
	CanUndo   bool                `json:"canUndo"`
	CanRedo   bool                `json:"canRedo"`
}

func stateOf(id string, h *sessionHandle) sessionState {
	return sessionState{
		ID:        id,
		LayoutID:  h.session.LayoutID,
		Rules:     h.session.RulesEnabled(),
		Container: h.session.Container(),
		CanUndo:   h.session.CanUndo(),
		CanRedo:   h.session.CanRedo(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// Layouts and catalog
// =============================================================================

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"layouts": s.library.IDs()})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.library.Get(chi.URLParam(r, "layoutID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleListSKUs(w http.ResponseWriter, r *http.Request) {
	skus, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"skus": skus})
}

func (s *Server) handleGetSKU(w http.ResponseWriter, r *http.Request) {
	sku, err := s.catalog.Lookup(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sku)
}

// =============================================================================
// Session lifecycle
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LayoutID string `json:"layoutId"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	tpl, err := s.library.Get(req.LayoutID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess := editor.New(tpl.ID, tpl.Container(), s.rules)
	h := &sessionHandle{session: sess}

	s.mu.Lock()
	s.sessions[sess.ID] = h
	s.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	s.persist(r.Context(), sess.ID, h)
	s.writeJSON(w, http.StatusCreated, stateOf(sess.ID, h))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	h, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer h.mu.Unlock()
	s.writeJSON(w, http.StatusOK, stateOf(id, h))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	err := s.store.Delete(r.Context(), id)
	observability.Store().OnDelete(r.Context(), "server", id, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Mutations
// =============================================================================

// mutate runs fn under the session lock and, on success, persists the new
// state and returns it.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(h *sessionHandle) error) {
	id := chi.URLParam(r, "sessionID")
	h, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer h.mu.Unlock()

	if err := fn(h); err != nil {
		s.writeError(w, err)
		return
	}
	s.persist(r.Context(), id, h)
	s.writeJSON(w, http.StatusOK, stateOf(id, h))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU    string `json:"sku"`
		DoorID string `json:"doorId"`
		RowID  string `json:"rowId"`
		Index  int    `json:"index"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := s.catalog.Lookup(r.Context(), req.SKU)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.AddItem(r.Context(), req.DoorID, req.RowID, entry.Instantiate(), req.Index)
	})
}

func (s *Server) handleMoveStack(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	var req struct {
		DoorID string `json:"doorId"`
		RowID  string `json:"rowId"`
		Index  int    `json:"index"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.MoveStack(r.Context(), itemID, req.DoorID, req.RowID, req.Index)
	})
}

func (s *Server) handleStackOnto(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	var req struct {
		Target string `json:"target"` // "door:row:index"
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	target, err := planogram.ParseStackRef(req.Target)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.StackOnto(r.Context(), itemID, target)
	})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.RemoveItem(r.Context(), itemID)
	})
}

func (s *Server) handleRemoveItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemIDs []string `json:"itemIds"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.RemoveItems(r.Context(), req.ItemIDs)
	})
}

func (s *Server) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	var req struct {
		Onto bool `json:"onto"` // true stacks the copy on the original
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		if req.Onto {
			return h.session.DuplicateOntoStack(r.Context(), itemID)
		}
		return h.session.DuplicateAsNewStack(r.Context(), itemID)
	})
}

func (s *Server) handleReplaceItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	var req struct {
		SKU string `json:"sku"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := s.catalog.Lookup(r.Context(), req.SKU)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.ReplaceItem(r.Context(), itemID, entry.Instantiate())
	})
}

func (s *Server) handleUpdateWidth(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	var req struct {
		WidthMM int `json:"widthMm"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.UpdateAdjustableWidth(r.Context(), itemID, req.WidthMM)
	})
}

func (s *Server) handleReorderStack(w http.ResponseWriter, r *http.Request) {
	doorID := chi.URLParam(r, "doorID")
	rowID := chi.URLParam(r, "rowID")
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, func(h *sessionHandle) error {
		return h.session.ReorderStack(r.Context(), doorID, rowID, req.From, req.To)
	})
}

// =============================================================================
// History
// =============================================================================

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(h *sessionHandle) error {
		h.session.Undo(r.Context())
		return nil
	})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(h *sessionHandle) error {
		h.session.Redo(r.Context())
		return nil
	})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(h *sessionHandle) error {
		h.session.ClearAll(r.Context())
		return nil
	})
}

// =============================================================================
// Validation and export
// =============================================================================

func (s *Server) handleLegalTargets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	doorID := r.URL.Query().Get("door")
	skuID := r.URL.Query().Get("sku")
	itemID := r.URL.Query().Get("item")

	h, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer h.mu.Unlock()

	var cand planogram.Candidate
	switch {
	case itemID != "":
		c := h.session.Container()
		loc, ok := planogram.Locate(c, itemID)
		if !ok {
			s.writeError(w, errors.New(errors.ErrCodeItemNotFound, "item %s not in layout", itemID))
			return
		}
		item := c.Doors[loc.DoorID].Rows[loc.RowID].Stacks[loc.StackIndex].Items[loc.ItemIndex]
		cand = planogram.CandidateFromItem(item)
	case skuID != "":
		entry, err := s.catalog.Lookup(r.Context(), skuID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		cand = planogram.CandidateFromItem(entry.Instantiate())
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "targets query needs sku or item"))
		return
	}

	targets := h.session.LegalTargets(r.Context(), doorID, cand)
	s.writeJSON(w, http.StatusOK, map[string][]string{
		"rows":   targets.RowStrings(),
		"stacks": targets.StackStrings(),
	})
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	h, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer h.mu.Unlock()
	s.writeJSON(w, http.StatusOK, h.session.Conflicts(r.Context()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	scale := 1.0
	if raw := r.URL.Query().Get("scale"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "scale must be a positive number, got %q", raw))
			return
		}
		scale = parsed
	}

	h, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer h.mu.Unlock()

	doc := h.session.Export(r.Context(), s.geometry)
	if scale != 1 {
		doc = export.ScaleDocument(doc, scale)
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePreviewSVG(w http.ResponseWriter, r *http.Request) {
	s.handlePreview(w, r, "image/svg+xml", preview.NewRenderer().RenderToSVG)
}

func (s *Server) handlePreviewPNG(w http.ResponseWriter, r *http.Request) {
	s.handlePreview(w, r, "image/png", preview.NewRenderer().RenderToPNG)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, contentType string, render func(io.Writer, export.Document) error) {
	id := chi.URLParam(r, "sessionID")
	h, err := s.acquire(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc := h.session.Export(r.Context(), s.geometry)
	h.mu.Unlock()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	if err := render(w, doc); err != nil {
		s.logger.Error("render preview", "session", id, "err", err)
	}
}
