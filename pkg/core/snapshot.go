package core

import "time"

// Snapshot is an immutable full copy of document state captured at one
// instant, produced only by the history manager's SaveState. The
// document inside a snapshot is never handed out directly; restoring
// clones it again so the stack entry stays pristine.
type Snapshot struct {
	// ID uniquely identifies the snapshot.
	ID string
	// Label describes the edit this snapshot precedes (e.g. "set cell B3").
	Label string
	// TakenAt is when the snapshot was captured.
	TakenAt time.Time

	doc *Document
}

// NewSnapshot captures a deep copy of the document under the given label.
func NewSnapshot(id, label string, doc *Document) Snapshot {
	return Snapshot{
		ID:      id,
		Label:   label,
		TakenAt: time.Now(),
		doc:     doc.Clone(),
	}
}

// Document returns a fresh deep copy of the captured state.
func (s Snapshot) Document() *Document {
	return s.doc.Clone()
}
