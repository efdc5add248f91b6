// Package session owns the live document. It is the single designated
// writer: every mutation, undo, redo, and restore goes through the
// session's lock, and collaborators like the auto-saver only ever see
// deep copies taken under that lock.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/leapgrid/internal/codec"
	"github.com/leapstack-labs/leapgrid/internal/history"
	"github.com/leapstack-labs/leapgrid/internal/versions"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Session holds the open document, its undo/redo history, and the
// version store it saves into.
type Session struct {
	mu      sync.Mutex
	doc     *core.Document
	gen     uint64
	history *history.Manager
	store   *versions.Store
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty session over the given version store.
func New(store *versions.Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = history.NewManager(history.WithLogger(s.logger))
	return s
}

// Open loads the document at path, replacing any current document and
// discarding its history.
func (s *Session) Open(path string) error {
	doc, err := codec.ReadDocument(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.gen++
	s.history.Clear()
	s.logger.Info("opened document", "path", path, "rows", len(doc.Rows))
	return nil
}

// NewDocument replaces the current document with a fresh unbound one.
func (s *Session) NewDocument(columns []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = core.NewDocument(columns)
	s.gen++
	s.history.Clear()
}

// Apply runs one labeled mutation. The pre-mutation state is pushed to
// the undo stack first, so a later undo restores exactly what the
// document looked like before this edit. The mutation runs on a copy:
// a failed edit leaves both the document and the history untouched.
func (s *Session) Apply(label string, fn func(doc *core.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return core.ErrNoDocument
	}

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	s.history.SaveState(s.doc, label)
	next.Dirty = true
	s.doc = next
	s.gen++
	return nil
}

// Undo reverts the last mutation. Returns false when there is nothing
// to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	restored, ok := s.history.Undo(s.doc)
	if !ok {
		return false
	}
	restored.Dirty = true
	s.doc = restored
	s.gen++
	return true
}

// Redo re-applies the last undone mutation. Returns false when there
// is nothing to redo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	restored, ok := s.history.Redo(s.doc)
	if !ok {
		return false
	}
	restored.Dirty = true
	s.doc = restored
	s.gen++
	return true
}

// Save writes the document to its bound file and clears the dirty
// flag. The undo history is untouched: saving is not an edit.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return core.ErrNoDocument
	}
	if s.doc.BoundPath == "" {
		return core.ErrNoBoundPath
	}
	if err := codec.WriteDocument(s.doc, s.doc.BoundPath); err != nil {
		return err
	}
	s.doc.Dirty = false
	return nil
}

// SaveAs binds the document to path and writes it there.
func (s *Session) SaveAs(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return core.ErrNoDocument
	}
	if err := codec.WriteDocument(s.doc, path); err != nil {
		return err
	}
	s.doc.BoundPath = path
	s.doc.Dirty = false
	return nil
}

// SaveVersion writes an explicit version of the current document.
func (s *Session) SaveVersion() (core.VersionRecord, error) {
	s.mu.Lock()
	doc := s.doc.Clone()
	s.mu.Unlock()
	if doc == nil {
		return core.VersionRecord{}, core.ErrNoDocument
	}
	return s.store.SaveVersion(doc)
}

// Versions lists the stored versions of the current document, newest
// first.
func (s *Session) Versions() ([]core.VersionRecord, error) {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil {
		return nil, core.ErrNoDocument
	}
	if doc.BoundPath == "" {
		return nil, core.ErrNoBoundPath
	}
	return s.store.GetVersions(doc.BoundPath)
}

// Restore replaces the document's contents with a stored version. The
// pre-restore state goes on the undo stack, so a restore is always
// reversible, and the document stays bound to its current file rather
// than the version file.
func (s *Session) Restore(rec core.VersionRecord) error {
	restored, err := s.store.RestoreVersion(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return core.ErrNoDocument
	}

	s.history.SaveState(s.doc, "restore "+rec.FileName)
	restored.BoundPath = s.doc.BoundPath
	restored.Dirty = true
	s.doc = restored
	s.gen++
	s.logger.Info("restored version", "file", rec.FileName)
	return nil
}

// Snapshot returns a deep copy of the current document, or nil when no
// document is open. Implements the auto-saver's document source.
func (s *Session) Snapshot() *core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Checkpoint returns a deep copy of the current document together with
// the edit generation at capture time, or (nil, 0) when no document is
// open. Implements the auto-saver's document source.
func (s *Session) Checkpoint() (*core.Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, 0
	}
	return s.doc.Clone(), s.gen
}

// MarkClean clears the dirty flag, but only when gen still matches the
// edit generation: an edit that landed after the checkpoint was taken
// is not on disk yet, and clearing the flag would hide it from the
// next auto-save tick.
func (s *Session) MarkClean(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil && s.gen == gen {
		s.doc.Dirty = false
	}
}

// CanUndo reports whether an undo is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryLabels returns the undo and redo stack labels, newest first.
func (s *Session) HistoryLabels() (undo, redo []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.UndoLabels(), s.history.RedoLabels()
}

// Store exposes the underlying version store.
func (s *Session) Store() *versions.Store { return s.store }
