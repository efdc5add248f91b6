package versions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapgrid/internal/codec"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// DocumentSource hands the auto-saver a consistent view of the live
// document. Checkpoint must return a deep copy taken under the owner's
// lock together with the edit generation at capture time, or nil when
// no document is open. MarkClean clears the dirty flag after a
// successful save, but only when the generation still matches: an edit
// that landed while the save was in flight is not in the written bytes
// and must stay dirty for the next tick.
type DocumentSource interface {
	Checkpoint() (*core.Document, uint64)
	MarkClean(gen uint64)
}

// AutoSaver periodically persists the live document: a version copy
// first, then the bound file itself. Ticks that find nothing to do are
// silent; ticks that fail are logged and recorded but never abort the
// loop. A flaky disk must not take the editing session down with it.
type AutoSaver struct {
	store  *Store
	source DocumentSource
	logger *slog.Logger

	audit   core.SettingsStore
	onSaved func(core.AutoSaveEvent)

	mu          sync.Mutex
	settings    core.AutoSaveSettings
	reconfigure chan struct{}
}

// AutoSaverOption configures an AutoSaver.
type AutoSaverOption func(*AutoSaver)

// WithAuditStore records every save attempt as an audit event.
func WithAuditStore(store core.SettingsStore) AutoSaverOption {
	return func(a *AutoSaver) { a.audit = store }
}

// WithSaveCallback is invoked after each save attempt, successful or
// not. Used by the UI layer to push notifications.
func WithSaveCallback(fn func(core.AutoSaveEvent)) AutoSaverOption {
	return func(a *AutoSaver) { a.onSaved = fn }
}

// WithAutoSaverLogger sets the structured logger.
func WithAutoSaverLogger(logger *slog.Logger) AutoSaverOption {
	return func(a *AutoSaver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAutoSaver creates an auto-saver over the given store and document
// source, starting from the given settings.
func NewAutoSaver(store *Store, source DocumentSource, settings core.AutoSaveSettings, opts ...AutoSaverOption) *AutoSaver {
	a := &AutoSaver{
		store:       store,
		source:      source,
		logger:      slog.New(slog.DiscardHandler),
		settings:    settings,
		reconfigure: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	store.SetKeep(settings.KeepVersions)
	return a
}

// Settings returns the current auto-save settings.
func (a *AutoSaver) Settings() core.AutoSaveSettings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// Configure replaces the auto-save settings. A running loop picks the
// change up immediately; the retention bound applies from the next
// save.
func (a *AutoSaver) Configure(settings core.AutoSaveSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	a.store.SetKeep(settings.KeepVersions)

	select {
	case a.reconfigure <- struct{}{}:
	default:
	}
	return nil
}

// Run drives the save loop until ctx is cancelled. When auto-save is
// disabled the loop parks until the next Configure call.
func (a *AutoSaver) Run(ctx context.Context) {
	for {
		settings := a.Settings()
		if !settings.Enabled {
			select {
			case <-ctx.Done():
				return
			case <-a.reconfigure:
				continue
			}
		}

		ticker := time.NewTicker(settings.Interval())
	tick:
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-a.reconfigure:
				ticker.Stop()
				break tick
			case <-ticker.C:
				a.Tick()
			}
		}
	}
}

// Tick runs one save cycle. It is a no-op unless a document is open,
// has unsaved changes, and is bound to a file. Errors end up in the log
// and the audit trail, not in the caller's lap.
func (a *AutoSaver) Tick() {
	doc, gen := a.source.Checkpoint()
	if doc == nil {
		return
	}
	if !doc.Dirty {
		return
	}
	if doc.BoundPath == "" {
		a.logger.Debug("auto-save skipped: document not bound to a file")
		return
	}

	rec, err := a.store.SaveVersion(doc)
	if err != nil {
		a.logger.Warn("auto-save failed to write version", "path", doc.BoundPath, "error", err)
		a.record(doc.BoundPath, "", core.AutoSaveStatusFailed, err)
		return
	}

	if err := codec.WriteDocument(doc, doc.BoundPath); err != nil {
		a.logger.Warn("auto-save failed to write file", "path", doc.BoundPath, "error", err)
		a.record(doc.BoundPath, rec.FileName, core.AutoSaveStatusFailed, err)
		return
	}

	a.source.MarkClean(gen)
	a.logger.Info("auto-saved", "path", doc.BoundPath, "version", rec.FileName)
	a.record(doc.BoundPath, rec.FileName, core.AutoSaveStatusSaved, nil)
}

func (a *AutoSaver) record(path, versionFile, status string, saveErr error) {
	event := core.AutoSaveEvent{
		ID:           uuid.NewString(),
		DocumentPath: path,
		VersionFile:  versionFile,
		Status:       status,
		OccurredAt:   time.Now(),
	}
	if saveErr != nil {
		event.Error = saveErr.Error()
	}

	if a.audit != nil {
		if err := a.audit.RecordAutoSave(event); err != nil {
			a.logger.Warn("failed to record auto-save event", "error", err)
		}
	}
	if a.onSaved != nil {
		a.onSaved(event)
	}
}
