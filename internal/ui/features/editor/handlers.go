// Package editor exposes the live document over HTTP: cell edits, row
// and column operations, undo/redo, and an SSE stream that pushes the
// document state whenever it changes.
package editor

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leapgrid/internal/session"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Handlers provides HTTP handlers for the editor feature.
type Handlers struct {
	sess     *session.Session
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	return &Handlers{
		sess:     sess,
		notifier: notify,
		logger:   logger,
	}
}

// Routes mounts the editor endpoints.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/document", h.GetDocument)
	r.Post("/document/open", h.OpenDocument)
	r.Post("/document/save", h.SaveDocument)
	r.Post("/cells", h.SetCell)
	r.Post("/rows", h.AppendRow)
	r.Delete("/rows/{index}", h.DeleteRow)
	r.Post("/columns", h.AddColumn)
	r.Delete("/columns/{name}", h.DeleteColumn)
	r.Post("/undo", h.Undo)
	r.Post("/redo", h.Redo)
	r.Get("/updates", h.Updates)
}

// DocumentState is the wire form of the session state.
type DocumentState struct {
	Path      string                     `json:"path"`
	Columns   []string                   `json:"columns"`
	Rows      [][]string                 `json:"rows"`
	Formats   map[string]core.FormatSpec `json:"formats,omitempty"`
	Dirty     bool                       `json:"dirty"`
	CanUndo   bool                       `json:"can_undo"`
	CanRedo   bool                       `json:"can_redo"`
	UndoStack []string                   `json:"undo_stack"`
	RedoStack []string                   `json:"redo_stack"`
	Open      bool                       `json:"open"`
}

func (h *Handlers) state() DocumentState {
	undo, redo := h.sess.HistoryLabels()
	st := DocumentState{
		CanUndo:   h.sess.CanUndo(),
		CanRedo:   h.sess.CanRedo(),
		UndoStack: undo,
		RedoStack: redo,
	}

	doc := h.sess.Snapshot()
	if doc == nil {
		return st
	}
	st.Open = true
	st.Path = doc.BoundPath
	st.Columns = doc.Columns
	st.Rows = doc.Rows
	st.Formats = doc.Formats
	st.Dirty = doc.Dirty
	return st
}

// GetDocument returns the current document state.
func (h *Handlers) GetDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.state())
}

// OpenDocument loads a document from disk, replacing the current one.
func (h *Handlers) OpenDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	if err := h.sess.Open(req.Path); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.logger.Info("document opened via api", "path", req.Path)

	h.notifier.Broadcast()
	writeJSON(w, http.StatusOK, h.state())
}

// SaveDocument writes the document to its bound file.
func (h *Handlers) SaveDocument(w http.ResponseWriter, _ *http.Request) {
	if err := h.sess.Save(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.notifier.Broadcast()
	writeJSON(w, http.StatusOK, h.state())
}

// SetCell applies one cell edit.
func (h *Handlers) SetCell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Row   int    `json:"row"`
		Col   int    `json:"col"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.apply(w, "edit cell", func(doc *core.Document) error {
		return doc.SetCell(req.Row, req.Col, req.Value)
	})
}

// AppendRow adds a row to the end of the document.
func (h *Handlers) AppendRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Values []string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.apply(w, "add row", func(doc *core.Document) error {
		return doc.AppendRow(req.Values)
	})
}

// DeleteRow removes a row by index.
func (h *Handlers) DeleteRow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid row index", http.StatusBadRequest)
		return
	}

	h.apply(w, "delete row", func(doc *core.Document) error {
		return doc.DeleteRow(index)
	})
}

// AddColumn appends a column.
func (h *Handlers) AddColumn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Default string `json:"default"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.apply(w, "add column "+req.Name, func(doc *core.Document) error {
		return doc.AppendColumn(req.Name, req.Default)
	})
}

// DeleteColumn removes a column by name.
func (h *Handlers) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.apply(w, "delete column "+name, func(doc *core.Document) error {
		return doc.DeleteColumn(name)
	})
}

// Undo reverts the last edit.
func (h *Handlers) Undo(w http.ResponseWriter, _ *http.Request) {
	if h.sess.Undo() {
		h.notifier.Broadcast()
	}
	writeJSON(w, http.StatusOK, h.state())
}

// Redo re-applies the last undone edit.
func (h *Handlers) Redo(w http.ResponseWriter, _ *http.Request) {
	if h.sess.Redo() {
		h.notifier.Broadcast()
	}
	writeJSON(w, http.StatusOK, h.state())
}

// Updates is the long-lived SSE endpoint. It subscribes to the
// notifier and pushes the full document state on every change.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	// Send the current state up front so late joiners are in sync.
	if err := sse.MarshalAndPatchSignals(h.state()); err != nil {
		_ = sse.ConsoleError(err)
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.MarshalAndPatchSignals(h.state()); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
		}
	}
}

func (h *Handlers) apply(w http.ResponseWriter, label string, fn func(*core.Document) error) {
	if err := h.sess.Apply(label, fn); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, core.ErrNoDocument) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.notifier.Broadcast()
	writeJSON(w, http.StatusOK, h.state())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
