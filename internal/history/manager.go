// Package history provides the snapshot-based undo/redo manager.
// It keeps two bounded stacks of immutable document snapshots; the
// session captures a snapshot before every mutating action and swaps
// whole documents on undo/redo.
package history

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// MaxUndo bounds the undo stack. When a new snapshot would exceed it,
// the oldest entry is evicted first.
const MaxUndo = 50

// Manager holds the undo and redo stacks. It never touches the live
// document itself: callers pass the current state in and install the
// returned copy, keeping a single designated writer for the document.
//
// Manager is not safe for concurrent use; the owning session serializes
// access together with its document mutations.
type Manager struct {
	undo   []core.Snapshot
	redo   []core.Snapshot
	max    int
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLimit overrides the undo stack bound. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.max = n
		}
	}
}

// NewManager creates an empty history manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		max:    MaxUndo,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SaveState captures the pre-image of an edit onto the undo stack and
// clears the redo stack. The caller must invoke it immediately before
// mutating the document. A nil document is a no-op (nothing loaded yet).
//
// Clearing redo on every save is deliberate: redo is a single linear
// future, discarded as soon as a new edit point is recorded -- even
// when the recorded edit later turns out to change nothing.
func (m *Manager) SaveState(doc *core.Document, label string) {
	if doc == nil {
		return
	}

	m.redo = m.redo[:0]
	m.undo = append(m.undo, core.NewSnapshot(uuid.New().String(), label, doc))

	if len(m.undo) > m.max {
		evicted := len(m.undo) - m.max
		m.undo = append(m.undo[:0:0], m.undo[evicted:]...)
		m.logger.Debug("evicted oldest undo entries", "count", evicted, "limit", m.max)
	}

	m.logger.Debug("saved undo state", "label", label, "depth", len(m.undo))
}

// Undo pushes a snapshot of the current (post-edit) state onto the redo
// stack, pops the most recent undo snapshot, and returns the restored
// document. Returns (nil, false) when there is nothing to undo; the
// caller's state is untouched in that case.
func (m *Manager) Undo(current *core.Document) (*core.Document, bool) {
	if len(m.undo) == 0 {
		return nil, false
	}

	m.redo = append(m.redo, core.NewSnapshot(uuid.New().String(), "current state", current))

	top := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]

	m.logger.Debug("undo", "label", top.Label, "undo_depth", len(m.undo), "redo_depth", len(m.redo))
	return top.Document(), true
}

// Redo is the symmetric operation: pop the redo stack, pushing the
// current state onto undo.
func (m *Manager) Redo(current *core.Document) (*core.Document, bool) {
	if len(m.redo) == 0 {
		return nil, false
	}

	m.undo = append(m.undo, core.NewSnapshot(uuid.New().String(), "undone state", current))

	top := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]

	m.logger.Debug("redo", "label", top.Label, "undo_depth", len(m.undo), "redo_depth", len(m.redo))
	return top.Document(), true
}

// CanUndo reports whether an undo step is available.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// UndoDepth returns the number of available undo steps.
func (m *Manager) UndoDepth() int { return len(m.undo) }

// RedoDepth returns the number of available redo steps.
func (m *Manager) RedoDepth() int { return len(m.redo) }

// Clear drops both stacks. Required at new-document and file-load
// boundaries: history spanning unrelated documents is meaningless.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

// UndoLabels returns the undo stack labels, most recent first.
func (m *Manager) UndoLabels() []string {
	labels := make([]string, 0, len(m.undo))
	for i := len(m.undo) - 1; i >= 0; i-- {
		labels = append(labels, m.undo[i].Label)
	}
	return labels
}

// RedoLabels returns the redo stack labels, most recent first.
func (m *Manager) RedoLabels() []string {
	labels := make([]string, 0, len(m.redo))
	for i := len(m.redo) - 1; i >= 0; i-- {
		labels = append(labels, m.redo[i].Label)
	}
	return labels
}
