// Package history exposes the version store and auto-save settings
// over HTTP: listing, restoring, and deleting saved versions, plus the
// audit trail of auto-save attempts.
package history

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
	"github.com/leapstack-labs/leapgrid/internal/versions"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Handlers provides HTTP handlers for the history feature.
type Handlers struct {
	sess     *session.Session
	saver    *versions.AutoSaver
	state    core.SettingsStore
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, saver *versions.AutoSaver, state core.SettingsStore, notify *notifier.Notifier, logger *slog.Logger) *Handlers {
	return &Handlers{
		sess:     sess,
		saver:    saver,
		state:    state,
		notifier: notify,
		logger:   logger,
	}
}

// Routes mounts the history endpoints.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/versions", h.ListVersions)
	r.Post("/versions", h.SaveVersion)
	r.Post("/versions/{file}/restore", h.RestoreVersion)
	r.Delete("/versions/{file}", h.DeleteVersion)
	r.Get("/autosave", h.GetAutoSave)
	r.Put("/autosave", h.SetAutoSave)
	r.Get("/autosave/events", h.ListEvents)
	r.Get("/updates", h.Updates)
}

// ListVersions returns the saved versions of the open document, newest
// first.
func (h *Handlers) ListVersions(w http.ResponseWriter, _ *http.Request) {
	records, err := h.sess.Versions()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoDocument) || errors.Is(err, core.ErrNoBoundPath) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// SaveVersion saves the current document contents as a new version.
func (h *Handlers) SaveVersion(w http.ResponseWriter, _ *http.Request) {
	rec, err := h.sess.SaveVersion()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoDocument) || errors.Is(err, core.ErrNoBoundPath) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	h.notifier.Broadcast()
	writeJSON(w, http.StatusCreated, rec)
}

// RestoreVersion swaps a saved version into the session. The replaced
// contents go on the undo stack, so the restore itself is undoable.
func (h *Handlers) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.findVersion(w, chi.URLParam(r, "file"))
	if !ok {
		return
	}

	if err := h.sess.Restore(rec); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.notifier.Broadcast()
	writeJSON(w, http.StatusOK, map[string]string{"restored": rec.FileName})
}

// DeleteVersion removes a saved version file.
func (h *Handlers) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.findVersion(w, chi.URLParam(r, "file"))
	if !ok {
		return
	}

	if err := h.sess.Store().DeleteVersion(rec); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.notifier.Broadcast()
	w.WriteHeader(http.StatusNoContent)
}

// GetAutoSave returns the saver's live settings.
func (h *Handlers) GetAutoSave(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.saver.Settings())
}

// SetAutoSave reconfigures the running saver and persists the settings.
func (h *Handlers) SetAutoSave(w http.ResponseWriter, r *http.Request) {
	var settings core.AutoSaveSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.saver.Configure(settings); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := h.state.SaveAutoSave(settings); err != nil {
		h.logger.Warn("failed to persist auto-save settings", "error", err)
	}

	h.notifier.Broadcast()
	writeJSON(w, http.StatusOK, settings)
}

// ListEvents returns the auto-save audit trail, newest first. The
// limit query parameter caps the result; it defaults to 50.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := h.state.ListAutoSaveEvents(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// versionsState is the SSE payload: the version list plus the live
// auto-save settings.
type versionsState struct {
	Versions []core.VersionRecord  `json:"versions"`
	AutoSave core.AutoSaveSettings `json:"autosave"`
}

// Updates is the long-lived SSE endpoint for the history view.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	push := func() {
		records, err := h.sess.Versions()
		if err != nil {
			records = nil
		}
		st := versionsState{Versions: records, AutoSave: h.saver.Settings()}
		if err := sse.MarshalAndPatchSignals(st); err != nil {
			_ = sse.ConsoleError(err)
		}
	}

	push()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			push()
		}
	}
}

// findVersion resolves a version file name to a record for the open
// document.
func (h *Handlers) findVersion(w http.ResponseWriter, file string) (core.VersionRecord, bool) {
	records, err := h.sess.Versions()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoDocument) || errors.Is(err, core.ErrNoBoundPath) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return core.VersionRecord{}, false
	}

	for _, rec := range records {
		if rec.FileName == file {
			return rec, true
		}
	}

	http.Error(w, "version not found: "+file, http.StatusNotFound)
	return core.VersionRecord{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
